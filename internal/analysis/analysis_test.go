package analysis

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

func day(s string) time.Time {
	t, err := dataset.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	temps  = []float64{21.5, 22.0, 19.25, 23.1, 18.4, 24.9, 20.0}
	humids = []float64{70.2, 68.0, 75.5, 64.3, 80.1, 60.0, 72.2}
	counts = []int{12, 15, 0, 22, 4, 47, 9}
)

func fixture() *dataset.Dataset {
	var rs []dataset.Reading
	start := day("2020-01-01")
	for i := range temps {
		rs = append(rs, dataset.Reading{
			Date:                 start.AddDate(0, 0, i),
			TemperatureMean:      temps[i],
			RelativeHumidityMean: humids[i],
			AdultMaleCount:       counts[i],
		})
	}
	return dataset.New("fixtures/temp_humid_data.xlsx", "Sheet3", rs)
}

func countsAsFloats() []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c)
	}
	return out
}

func TestDescribeMatchesReference(t *testing.T) {
	ds := fixture()
	st := Describe(ds.All())
	if st.Rows != ds.Len() {
		t.Fatalf("rows = %d, want %d", st.Rows, ds.Len())
	}
	want := map[string][]float64{
		dataset.FieldTemperature: temps,
		dataset.FieldHumidity:    humids,
		dataset.FieldAdultMales:  countsAsFloats(),
	}
	for name, vals := range want {
		c, ok := st.Column(name)
		if !ok {
			t.Fatalf("column %q missing", name)
		}
		checkStats(t, c, vals)
	}
}

func TestDescribeCountEqualsViewLength(t *testing.T) {
	ds := fixture()
	for _, rng := range [][2]string{{"2020-01-01", "2020-01-07"}, {"2020-01-02", "2020-01-04"}, {"2020-01-05", "2020-01-05"}, {"2020-02-01", "2020-02-02"}} {
		v := dataset.Filter(ds, day(rng[0]), day(rng[1]))
		for _, c := range Describe(v).Columns {
			if c.Count != v.Len() {
				t.Fatalf("%v %s count = %d, want %d", rng, c.Name, c.Count, v.Len())
			}
		}
	}
}

func TestDescribeEmptyViewIsUndefined(t *testing.T) {
	v := dataset.Filter(fixture(), day("2020-01-05"), day("2020-01-01"))
	st := Describe(v)
	if len(st.Columns) != len(dataset.NumericFields) {
		t.Fatalf("columns = %d", len(st.Columns))
	}
	for _, c := range st.Columns {
		if c.Count != 0 {
			t.Fatalf("%s count = %d, want 0", c.Name, c.Count)
		}
		for label, s := range map[string]Stat{"mean": c.Mean, "std": c.Std, "min": c.Min, "q1": c.Q1, "median": c.Q2, "q3": c.Q3, "max": c.Max} {
			if s.Defined {
				t.Fatalf("%s %s should be undefined, got %v", c.Name, label, s.Value)
			}
		}
	}
}

func TestDescribeSingleRowStdUndefined(t *testing.T) {
	v := dataset.Filter(fixture(), day("2020-01-03"), day("2020-01-03"))
	c, _ := Describe(v).Column(dataset.FieldAdultMales)
	if !c.Mean.Defined || c.Mean.Value != 0 {
		t.Fatalf("mean = %+v, want defined 0", c.Mean)
	}
	if c.Std.Defined {
		t.Fatalf("std should be undefined for one row")
	}
}

func TestCorrelateSymmetricWithUnitDiagonal(t *testing.T) {
	m := Correlate(fixture().All())
	n := len(m.Columns)
	if n != 3 {
		t.Fatalf("columns = %v", m.Columns)
	}
	for i := 0; i < n; i++ {
		if !m.Values[i][i].Defined || m.Values[i][i].Value != 1 {
			t.Fatalf("diag[%d] = %+v", i, m.Values[i][i])
		}
		for j := 0; j < n; j++ {
			if m.Values[i][j] != m.Values[j][i] {
				t.Fatalf("asymmetric at %d,%d: %+v vs %+v", i, j, m.Values[i][j], m.Values[j][i])
			}
			if v := m.Values[i][j].Value; v < -1 || v > 1 {
				t.Fatalf("out of range at %d,%d: %f", i, j, v)
			}
		}
	}
	r, ok := m.At(dataset.FieldTemperature, dataset.FieldHumidity)
	if !ok || !almostEqual(r.Value, correlation(temps, humids), 1e-9) {
		t.Fatalf("temp~humidity = %+v, want %f", r, correlation(temps, humids))
	}
	r, _ = m.At(dataset.FieldHumidity, dataset.FieldAdultMales)
	if !almostEqual(r.Value, correlation(humids, countsAsFloats()), 1e-9) {
		t.Fatalf("humidity~count = %+v", r)
	}
}

func TestCorrelateConstantColumnUndefined(t *testing.T) {
	ds := dataset.New("mem", "", []dataset.Reading{
		{Date: day("2020-01-01"), TemperatureMean: 20, RelativeHumidityMean: 60, AdultMaleCount: 5},
		{Date: day("2020-01-02"), TemperatureMean: 20, RelativeHumidityMean: 65, AdultMaleCount: 7},
		{Date: day("2020-01-03"), TemperatureMean: 20, RelativeHumidityMean: 70, AdultMaleCount: 6},
	})
	m := Correlate(ds.All())
	for _, other := range dataset.NumericFields {
		r, _ := m.At(dataset.FieldTemperature, other)
		if r.Defined {
			t.Fatalf("temperature ~ %s should be undefined, got %f", other, r.Value)
		}
	}
	r, _ := m.At(dataset.FieldHumidity, dataset.FieldAdultMales)
	if !r.Defined {
		t.Fatalf("humidity ~ count should be defined")
	}
	r, _ = m.At(dataset.FieldHumidity, dataset.FieldHumidity)
	if !r.Defined || r.Value != 1 {
		t.Fatalf("humidity diagonal = %+v", r)
	}
}

func TestCorrelateFewerThanTwoRows(t *testing.T) {
	v := dataset.Filter(fixture(), day("2020-01-02"), day("2020-01-02"))
	m := Correlate(v)
	for i := range m.Values {
		for j := range m.Values[i] {
			if m.Values[i][j].Defined {
				t.Fatalf("entry %d,%d should be undefined", i, j)
			}
		}
	}
}

func TestCountDistribution(t *testing.T) {
	d := CountDistribution(fixture().All())
	// counts: 12, 15, 0, 22, 4, 47, 9
	want := []int{2, 2, 1, 0, 1}
	if len(d.Bins) != len(want) {
		t.Fatalf("bins = %d", len(d.Bins))
	}
	for i, w := range want {
		if d.Bins[i].Count != w {
			t.Fatalf("bin %s = %d, want %d", d.Bins[i].Label, d.Bins[i].Count, w)
		}
	}
	if d.Bins[0].Label != "0-10" || d.Bins[4].Label != "40-50" {
		t.Fatalf("labels = %q .. %q", d.Bins[0].Label, d.Bins[4].Label)
	}
	if d.Unbinned != 1 || d.Total != 7 {
		t.Fatalf("unbinned=%d total=%d", d.Unbinned, d.Total)
	}
	if s := d.Share(0); !s.Defined || !almostEqual(s.Value, 2.0/6.0, 1e-12) {
		t.Fatalf("share = %+v", s)
	}
	empty := CountDistribution(dataset.Filter(fixture(), day("2021-01-01"), day("2021-01-02")))
	if empty.Share(0).Defined {
		t.Fatalf("share of empty distribution should be undefined")
	}
}

func TestStatJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Stat `json:"a"`
		B Stat `json:"b"`
	}{A: Defined(1.5), B: Undefined})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":1.5,"b":null}` {
		t.Fatalf("json = %s", b)
	}
	var s Stat
	if err := json.Unmarshal([]byte("null"), &s); err != nil || s.Defined {
		t.Fatalf("unmarshal null = %+v, %v", s, err)
	}
	if Defined(math.NaN()).Defined {
		t.Fatalf("NaN must be undefined")
	}
	if Undefined.String() != "n/a" {
		t.Fatalf("undefined string = %q", Undefined.String())
	}
}

func TestReportMarkdown(t *testing.T) {
	ds := fixture()
	rep := BuildReport(ds, day("2020-01-01"), day("2020-01-07"))
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: temp_humid_data.xlsx (sheet: Sheet3)",
		"Range: 2020-01-01 to 2020-01-07",
		"Rows: 7 of 7",
		"[DESCRIPTIVE STATISTICS]",
		"| adult_male_count | 7 |",
		"[CORRELATIONS]",
		"temperature_mean ~ relativehumidity_mean: r=",
		"[ADULT MALE COUNT DISTRIBUTION]",
		"- 0-10: 2 (33.3%)",
		"1 readings fall outside the count bins",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestReportMarkdownEmptyRange(t *testing.T) {
	rep := BuildReport(fixture(), day("2020-01-07"), day("2020-01-01"))
	md := rep.Markdown()
	if rep.Rows != 0 {
		t.Fatalf("rows = %d", rep.Rows)
	}
	if !strings.Contains(md, "| temperature_mean | 0 | n/a | n/a |") {
		t.Fatalf("expected n/a stats:\n%s", md)
	}
	if !strings.Contains(md, "r=n/a") {
		t.Fatalf("expected undefined correlations:\n%s", md)
	}
	if !strings.Contains(md, "start date is after end date") {
		t.Fatalf("expected range note:\n%s", md)
	}
}

func checkStats(t *testing.T, c ColumnStats, vals []float64) {
	t.Helper()
	if c.Count != len(vals) {
		t.Fatalf("%s count = %d, want %d", c.Name, c.Count, len(vals))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	pairs := []struct {
		label string
		got   Stat
		want  float64
	}{
		{"mean", c.Mean, mean(vals)},
		{"std", c.Std, sampleStd(vals)},
		{"min", c.Min, sorted[0]},
		{"q1", c.Q1, quantileValue(sorted, 0.25)},
		{"median", c.Q2, quantileValue(sorted, 0.5)},
		{"q3", c.Q3, quantileValue(sorted, 0.75)},
		{"max", c.Max, sorted[len(sorted)-1]},
	}
	for _, p := range pairs {
		if !p.got.Defined {
			t.Fatalf("%s %s undefined", c.Name, p.label)
		}
		if !almostEqual(p.got.Value, p.want, 1e-9) {
			t.Fatalf("%s %s = %f, want %f", c.Name, p.label, p.got.Value, p.want)
		}
	}
}

func quantileValue(sortedVals []float64, q float64) float64 {
	pos := q * float64(len(sortedVals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	w := pos - float64(lo)
	return sortedVals[lo]*(1-w) + sortedVals[hi]*w
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func correlation(a, b []float64) float64 {
	ma := mean(a)
	mb := mean(b)
	var num, da2, db2 float64
	for i := range a {
		da := a[i] - ma
		db := b[i] - mb
		num += da * db
		da2 += da * da
		db2 += db * db
	}
	return num / math.Sqrt(da2*db2)
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
