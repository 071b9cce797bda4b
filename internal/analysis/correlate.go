package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

// CorrelationMatrix holds a symmetric Pearson correlation matrix across
// dataset.NumericFields. Values[i][j] is undefined when the view has fewer
// than two rows or either column is constant over the view.
type CorrelationMatrix struct {
	Columns []string `json:"columns"`
	Values  [][]Stat `json:"values"` // row-major, Values[i][j]
}

// At returns the coefficient for a pair of field names.
func (m CorrelationMatrix) At(a, b string) (Stat, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return Undefined, false
	}
	return m.Values[ia][ib], true
}

// Correlate computes pairwise Pearson coefficients for the view.
func Correlate(v dataset.View) CorrelationMatrix {
	names := dataset.NumericFields
	n := len(names)
	cols := make([][]float64, n)
	varies := make([]bool, n)
	for i, name := range names {
		cols[i] = v.Column(name)
		// min == max catches constant columns exactly, without relying on a
		// floating-point variance landing on zero.
		varies[i] = len(cols[i]) >= 2 && floats.Min(cols[i]) != floats.Max(cols[i])
	}
	mat := make([][]Stat, n)
	for i := range mat {
		mat[i] = make([]Stat, n)
	}
	for a := 0; a < n; a++ {
		if !varies[a] {
			continue
		}
		mat[a][a] = Defined(1)
		for b := a + 1; b < n; b++ {
			if !varies[b] {
				continue
			}
			r := stat.Correlation(cols[a], cols[b], nil)
			if r > 1 {
				r = 1
			} else if r < -1 {
				r = -1
			}
			mat[a][b] = Defined(r)
			mat[b][a] = mat[a][b]
		}
	}
	return CorrelationMatrix{Columns: append([]string(nil), names...), Values: mat}
}
