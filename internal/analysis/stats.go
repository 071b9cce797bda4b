// Package analysis computes descriptive statistics, Pearson correlations and
// count distributions over dataset views.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Stat is a statistic that may be undefined, e.g. the mean of an empty view
// or the correlation of a constant column. Undefined is distinct from zero.
type Stat struct {
	Value   float64
	Defined bool
}

// Undefined is the zero Stat.
var Undefined = Stat{}

// Defined wraps v. NaN and infinities are reported as undefined.
func Defined(v float64) Stat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Stat{Value: v, Defined: true}
}

// Get returns the value and whether it is defined.
func (s Stat) Get() (float64, bool) { return s.Value, s.Defined }

// Fmt renders the value with verb, or "n/a" when undefined.
func (s Stat) Fmt(verb string) string {
	if !s.Defined {
		return "n/a"
	}
	return fmt.Sprintf(verb, s.Value)
}

func (s Stat) String() string { return s.Fmt("%.4g") }

// MarshalJSON encodes undefined values as null.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON reads null as Undefined.
func (s *Stat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Defined(v)
	return nil
}

func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// quantile linearly interpolates between the closest ranks of sorted values,
// matching the default of most spreadsheet and dataframe tools.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
