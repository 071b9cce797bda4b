package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

// ColumnStats summarizes one numeric column.
type ColumnStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Mean  Stat   `json:"mean"`
	Std   Stat   `json:"std"`
	Min   Stat   `json:"min"`
	Q1    Stat   `json:"q1"`
	Q2    Stat   `json:"median"`
	Q3    Stat   `json:"q3"`
	Max   Stat   `json:"max"`
}

// DescriptiveStats holds ColumnStats for each of dataset.NumericFields.
type DescriptiveStats struct {
	Rows    int           `json:"rows"`
	Columns []ColumnStats `json:"columns"`
}

// Column looks up the stats of the named field.
func (d DescriptiveStats) Column(name string) (ColumnStats, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for every numeric field. Count always equals v.Len(). On an empty
// view all aggregates are undefined; std needs at least two rows.
func Describe(v dataset.View) DescriptiveStats {
	out := DescriptiveStats{Rows: v.Len(), Columns: make([]ColumnStats, 0, len(dataset.NumericFields))}
	for _, name := range dataset.NumericFields {
		out.Columns = append(out.Columns, describeColumn(name, v.Column(name)))
	}
	return out
}

func describeColumn(name string, vals []float64) ColumnStats {
	cs := ColumnStats{Name: name, Count: len(vals)}
	if len(vals) == 0 {
		return cs
	}
	sorted := sortedCopy(vals)
	cs.Mean = Defined(stat.Mean(vals, nil))
	if len(vals) > 1 {
		cs.Std = Defined(stat.StdDev(vals, nil))
	}
	cs.Min = Defined(sorted[0])
	cs.Q1 = Defined(quantile(sorted, 0.25))
	cs.Q2 = Defined(quantile(sorted, 0.5))
	cs.Q3 = Defined(quantile(sorted, 0.75))
	cs.Max = Defined(sorted[len(sorted)-1])
	return cs
}
