package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/pestwatch/internal/analysis"
)

// WriteStats writes a column-aligned descriptive statistics table.
func WriteStats(w io.Writer, s analysis.DescriptiveStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(styled, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))
	for _, c := range s.Columns {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, c.Count,
			cell(c.Mean), cell(c.Std), cell(c.Min), cell(c.Q1), cell(c.Q2), cell(c.Q3), cell(c.Max))
	}
	return tw.Flush()
}

// WriteCorrelations writes the correlation matrix as a square table.
func WriteCorrelations(w io.Writer, m analysis.CorrelationMatrix) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := []string{""}
	for _, c := range m.Columns {
		row = append(row, HeaderStyle.Render(c))
	}
	fmt.Fprintln(tw, strings.Join(row, "\t"))
	for i, a := range m.Columns {
		row = []string{HeaderStyle.Render(a)}
		for j := range m.Columns {
			row = append(row, cell(m.Values[i][j]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func cell(s analysis.Stat) string {
	if !s.Defined {
		return SubtleStyle.Render("n/a")
	}
	return s.Fmt("%.3f")
}
