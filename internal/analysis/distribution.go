package analysis

import (
	"fmt"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

// CountBinEdges are the right-closed bin edges used to bucket adult male
// counts: (0,10], (10,20], (20,30], (30,40], (40,50].
var CountBinEdges = []float64{0, 10, 20, 30, 40, 50}

// Bin is one bucket of a distribution.
type Bin struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"` // exclusive
	Upper float64 `json:"upper"` // inclusive
	Count int     `json:"count"`
}

// Distribution buckets adult male counts of a view.
type Distribution struct {
	Bins     []Bin `json:"bins"`
	Unbinned int   `json:"unbinned"` // values outside every bin, including zero
	Total    int   `json:"total"`
}

// Share returns the fraction of binned values that fall in bin i, or
// undefined when nothing was binned.
func (d Distribution) Share(i int) Stat {
	binned := d.Total - d.Unbinned
	if binned == 0 || i < 0 || i >= len(d.Bins) {
		return Undefined
	}
	return Defined(float64(d.Bins[i].Count) / float64(binned))
}

// CountDistribution buckets the view's adult male counts by CountBinEdges.
func CountDistribution(v dataset.View) Distribution {
	return bucketize(v.Column(dataset.FieldAdultMales), CountBinEdges)
}

func bucketize(vals []float64, edges []float64) Distribution {
	d := Distribution{Total: len(vals)}
	for i := 1; i < len(edges); i++ {
		d.Bins = append(d.Bins, Bin{
			Label: fmt.Sprintf("%g-%g", edges[i-1], edges[i]),
			Lower: edges[i-1],
			Upper: edges[i],
		})
	}
	for _, x := range vals {
		placed := false
		for i := range d.Bins {
			if x > d.Bins[i].Lower && x <= d.Bins[i].Upper {
				d.Bins[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			d.Unbinned++
		}
	}
	return d
}
