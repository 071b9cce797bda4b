// Package chart renders PNG charts of a dataset view with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/pestwatch/internal/analysis"
	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

// ErrEmpty is returned when there is nothing to plot.
var ErrEmpty = errors.New("no readings to plot")

// Output file names written by All.
const (
	FileTimeSeries = "conditions.png"
	FileCountBars  = "adult_males.png"
	FileHistogram  = "adult_males_hist.png"
	FileHeatmap    = "correlations.png"
	FileBoxPlot    = "conditions_box.png"
	FileScatter    = "temperature_vs_adult_males.png"
)

// HistogramBins is the number of bins used by CountHistogram.
const HistogramBins = 20

// BarStride keeps every n-th reading in CountBars so labels stay legible.
const BarStride = 5

var (
	temperatureColor = color.RGBA{R: 220, G: 80, B: 60, A: 255}
	humidityColor    = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	countColor       = color.RGBA{R: 127, G: 176, B: 105, A: 255}
)

// All writes every chart for v into dir and returns the written paths.
func All(v dataset.View, dir string) ([]string, error) {
	if v.Len() == 0 {
		return nil, ErrEmpty
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	jobs := []struct {
		file string
		fn   func(string) error
	}{
		{FileTimeSeries, func(p string) error { return TimeSeries(v, p) }},
		{FileCountBars, func(p string) error { return CountBars(v, p) }},
		{FileHistogram, func(p string) error { return CountHistogram(v, p) }},
		{FileHeatmap, func(p string) error { return Heatmap(analysis.Correlate(v), p) }},
		{FileBoxPlot, func(p string) error { return BoxPlot(v, p) }},
		{FileScatter, func(p string) error { return Scatter(v, p) }},
	}
	paths := make([]string, 0, len(jobs))
	for _, j := range jobs {
		p := filepath.Join(dir, j.file)
		if err := j.fn(p); err != nil {
			return paths, fmt.Errorf("%s: %w", j.file, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// TimeSeries plots temperature and humidity against date.
func TimeSeries(v dataset.View, path string) error {
	if v.Len() == 0 {
		return ErrEmpty
	}
	p := plot.New()
	p.Title.Text = "Temperature and relative humidity"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: dataset.DateLayout}
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.Add(plotter.NewGrid())

	dates := v.Dates()
	for _, s := range []struct {
		field string
		name  string
		col   color.Color
	}{
		{dataset.FieldTemperature, "temperature_mean", temperatureColor},
		{dataset.FieldHumidity, "relativehumidity_mean", humidityColor},
	} {
		vals := v.Column(s.field)
		pts := make(plotter.XYs, len(vals))
		for i := range vals {
			pts[i].X = float64(dates[i].Unix())
			pts[i].Y = vals[i]
		}
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = s.col
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	return p.Save(12*vg.Inch, 5*vg.Inch, path)
}

// CountBars draws adult male counts as bars for every BarStride-th reading.
func CountBars(v dataset.View, path string) error {
	if v.Len() == 0 {
		return ErrEmpty
	}
	sub := v.Every(BarStride)
	vals := plotter.Values(sub.Column(dataset.FieldAdultMales))
	labels := make([]string, sub.Len())
	for i, d := range sub.Dates() {
		labels[i] = d.Format(dataset.DateLayout)
	}

	p := plot.New()
	p.Title.Text = "Adult males per reading"
	p.Y.Label.Text = "no. of Adult males"
	bars, err := plotter.NewBarChart(vals, vg.Points(10))
	if err != nil {
		return err
	}
	bars.Color = countColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p.Save(14*vg.Inch, 6*vg.Inch, path)
}

// CountHistogram draws the adult male count distribution in HistogramBins bins.
func CountHistogram(v dataset.View, path string) error {
	if v.Len() == 0 {
		return ErrEmpty
	}
	p := plot.New()
	p.Title.Text = "Distribution of adult males"
	p.X.Label.Text = "no. of Adult males"
	p.Y.Label.Text = "Frequency"
	h, err := plotter.NewHist(plotter.Values(v.Column(dataset.FieldAdultMales)), HistogramBins)
	if err != nil {
		return err
	}
	h.FillColor = countColor
	p.Add(h)
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with a fixed
// [-1, 1] range. Undefined cells are NaN.
type corrGrid struct{ m analysis.CorrelationMatrix }

func (g corrGrid) Dims() (c, r int) { return len(g.m.Columns), len(g.m.Columns) }
func (g corrGrid) X(c int) float64  { return float64(c) }
func (g corrGrid) Y(r int) float64  { return float64(r) }
func (g corrGrid) Min() float64     { return -1 }
func (g corrGrid) Max() float64     { return 1 }

func (g corrGrid) Z(c, r int) float64 {
	if s := g.m.Values[r][c]; s.Defined {
		return s.Value
	}
	return math.NaN()
}

// Heatmap draws the correlation matrix on a diverging blue-red scale.
func Heatmap(m analysis.CorrelationMatrix, path string) error {
	if len(m.Columns) == 0 {
		return ErrEmpty
	}
	hm := plotter.NewHeatMap(corrGrid{m}, moreland.SmoothBlueRed().Palette(255))
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = "Correlation matrix"
	p.Add(hm)
	p.NominalX(m.Columns...)
	p.NominalY(m.Columns...)

	labels := plotter.XYLabels{}
	for r := range m.Columns {
		for c := range m.Columns {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, m.Values[r][c].Fmt("%.2f"))
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(l)
	return p.Save(7*vg.Inch, 6*vg.Inch, path)
}

// BoxPlot draws temperature and humidity distributions side by side.
func BoxPlot(v dataset.View, path string) error {
	if v.Len() == 0 {
		return ErrEmpty
	}
	p := plot.New()
	p.Title.Text = "Temperature and relative humidity"
	p.Y.Label.Text = "Value"
	w := vg.Points(40)
	for i, s := range []struct {
		field string
		col   color.Color
	}{
		{dataset.FieldTemperature, temperatureColor},
		{dataset.FieldHumidity, humidityColor},
	} {
		b, err := plotter.NewBoxPlot(w, float64(i), plotter.Values(v.Column(s.field)))
		if err != nil {
			return err
		}
		b.FillColor = s.col
		p.Add(b)
	}
	p.NominalX("temperature_mean", "relativehumidity_mean")
	return p.Save(6*vg.Inch, 5*vg.Inch, path)
}

// Scatter plots adult males against temperature with a least-squares line.
// The line is omitted when temperature is constant.
func Scatter(v dataset.View, path string) error {
	if v.Len() == 0 {
		return ErrEmpty
	}
	xs := v.Column(dataset.FieldTemperature)
	ys := v.Column(dataset.FieldAdultMales)
	pts := make(plotter.XYs, len(xs))
	lo, hi := xs[0], xs[0]
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
		lo, hi = math.Min(lo, xs[i]), math.Max(hi, xs[i])
	}

	p := plot.New()
	p.Title.Text = "Temperature vs adult males"
	p.X.Label.Text = "temperature_mean"
	p.Y.Label.Text = "no. of Adult males"
	p.Add(plotter.NewGrid())
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = countColor
	sc.GlyphStyle.Radius = vg.Points(3)
	p.Add(sc)

	if lo < hi {
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		fit := plotter.NewFunction(func(x float64) float64 { return alpha + beta*x })
		fit.XMin, fit.XMax = lo, hi
		fit.Color = temperatureColor
		fit.Width = vg.Points(2)
		p.Add(fit)
		p.Legend.Add(fmt.Sprintf("y = %.2f + %.2fx", alpha, beta), fit)
		p.Legend.Top = true
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
