package dataset

import "time"

// View is a read-only subset of a Dataset. It references the dataset's
// readings by position and must not outlive it.
type View struct {
	ds  *Dataset
	idx []int
}

// Filter returns the readings whose date falls in [start, end], both ends
// inclusive, compared as calendar dates. start after end yields an empty view.
func Filter(ds *Dataset, start, end time.Time) View {
	start, end = Day(start), Day(end)
	v := View{ds: ds}
	if ds == nil || start.After(end) {
		return v
	}
	for i, r := range ds.readings {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		v.idx = append(v.idx, i)
	}
	return v
}

// Len returns the number of readings in the view.
func (v View) Len() int { return len(v.idx) }

// At returns the i-th reading of the view.
func (v View) At(i int) Reading { return v.ds.readings[v.idx[i]] }

// Readings copies the view's readings in dataset order.
func (v View) Readings() []Reading {
	out := make([]Reading, len(v.idx))
	for i, j := range v.idx {
		out[i] = v.ds.readings[j]
	}
	return out
}

// Column extracts the named numeric field for every reading in the view.
// Unknown names yield nil.
func (v View) Column(name string) []float64 {
	if _, ok := (Reading{}).Field(name); !ok {
		return nil
	}
	out := make([]float64, len(v.idx))
	for i, j := range v.idx {
		out[i], _ = v.ds.readings[j].Field(name)
	}
	return out
}

// Dates returns the calendar date of each reading in the view.
func (v View) Dates() []time.Time {
	out := make([]time.Time, len(v.idx))
	for i, j := range v.idx {
		out[i] = v.ds.readings[j].Date
	}
	return out
}

// Every keeps every n-th reading starting with the first. n <= 1 returns v.
func (v View) Every(n int) View {
	if n <= 1 {
		return v
	}
	out := View{ds: v.ds}
	for i := 0; i < len(v.idx); i += n {
		out.idx = append(out.idx, v.idx[i])
	}
	return out
}
