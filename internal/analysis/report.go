package analysis

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

// Report bundles every derived value for one date range.
type Report struct {
	Name     string            `json:"name"`
	From     time.Time         `json:"from"`
	To       time.Time         `json:"to"`
	Rows     int               `json:"rows"`
	Total    int               `json:"total"`
	Stats    DescriptiveStats  `json:"stats"`
	Corr     CorrelationMatrix `json:"correlations"`
	Dist     Distribution      `json:"distribution"`
	Warnings []string          `json:"warnings,omitempty"`
}

// BuildReport filters ds to [from, to] and computes statistics, correlations
// and the count distribution over the resulting view.
func BuildReport(ds *dataset.Dataset, from, to time.Time) *Report {
	v := dataset.Filter(ds, from, to)
	rep := &Report{
		Name:  filepath.Base(ds.Source()),
		From:  dataset.Day(from),
		To:    dataset.Day(to),
		Rows:  v.Len(),
		Total: ds.Len(),
		Stats: Describe(v),
		Corr:  Correlate(v),
		Dist:  CountDistribution(v),
	}
	if ds.Sheet() != "" {
		rep.Name = fmt.Sprintf("%s (sheet: %s)", rep.Name, ds.Sheet())
	}
	switch {
	case rep.From.After(rep.To):
		rep.Warnings = append(rep.Warnings, "start date is after end date; the range is empty")
	case rep.Rows == 0:
		rep.Warnings = append(rep.Warnings, "no readings in the selected range")
	case rep.Rows < 2:
		rep.Warnings = append(rep.Warnings, "fewer than 2 readings; std and correlations are undefined")
	}
	if rep.Dist.Unbinned > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d readings fall outside the count bins (0,50]", rep.Dist.Unbinned))
	}
	return rep
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Range: %s to %s\n", r.From.Format(dataset.DateLayout), r.To.Format(dataset.DateLayout)))
	b.WriteString(fmt.Sprintf("Rows: %d of %d\n", r.Rows, r.Total))

	b.WriteString("\n[DESCRIPTIVE STATISTICS]\n")
	b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, c := range r.Stats.Columns {
		b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
			c.Name, c.Count, c.Mean, c.Std, c.Min, c.Q1, c.Q2, c.Q3, c.Max))
	}

	if len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    Stat
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: r.Corr.Values[i][j]})
			}
		}
		// strongest first; undefined pairs last
		sort.SliceStable(pairs, func(i, j int) bool {
			if pairs[i].R.Defined != pairs[j].R.Defined {
				return pairs[i].R.Defined
			}
			return math.Abs(pairs[i].R.Value) > math.Abs(pairs[j].R.Value)
		})
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%s\n", p.A, p.B, p.R.Fmt("%.3f")))
		}
	}

	if r.Dist.Total > 0 {
		b.WriteString("\n[ADULT MALE COUNT DISTRIBUTION]\n")
		for i, bin := range r.Dist.Bins {
			b.WriteString(fmt.Sprintf("- %s: %d (%s)\n", bin.Label, bin.Count, pct(r.Dist.Share(i))))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func pct(s Stat) string {
	if !s.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", s.Value*100)
}
