// Package export writes a dataset range and its derived statistics to an
// Excel workbook.
package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/pestwatch/internal/analysis"
	"github.com/KaramelBytes/pestwatch/internal/dataset"
	"github.com/KaramelBytes/pestwatch/internal/prediction"
)

// Sheet names.
const (
	SheetReadings     = "Readings"
	SheetStatistics   = "Statistics"
	SheetCorrelations = "Correlations"
	SheetDistribution = "Distribution"
	SheetModel        = "Model"
)

// Summary describes a written workbook.
type Summary struct {
	Path   string
	RunID  string
	Rows   int
	Sheets []string
}

// Workbook writes the readings of ds within [from, to] together with their
// statistics, correlations, count distribution and the prediction model to
// path. The Readings sheet uses the input column headers, so the file can be
// loaded back as a source.
func Workbook(path string, ds *dataset.Dataset, from, to time.Time, svc *prediction.Service) (*Summary, error) {
	rep := analysis.BuildReport(ds, from, to)
	view := dataset.Filter(ds, from, to)
	runID := uuid.NewString()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReadings); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetStatistics, SheetCorrelations, SheetDistribution, SheetModel} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	steps := []func() error{
		func() error { return writeReadings(f, view) },
		func() error { return writeStatistics(f, rep.Stats) },
		func() error { return writeCorrelations(f, rep.Corr) },
		func() error { return writeDistribution(f, rep.Dist) },
		func() error { return writeModel(f, rep, ds, svc, runID) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:     "pestwatch",
		Title:       rep.Name,
		Identifier:  runID,
		Description: fmt.Sprintf("%s to %s", rep.From.Format(dataset.DateLayout), rep.To.Format(dataset.DateLayout)),
	}); err != nil {
		return nil, fmt.Errorf("set doc props: %w", err)
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	return &Summary{
		Path:   path,
		RunID:  runID,
		Rows:   view.Len(),
		Sheets: f.GetSheetList(),
	}, nil
}

func writeHeader(f *excelize.File, sheet string, headers ...string) error {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", last, 22)
}

func writeRow(f *excelize.File, sheet string, n int, vals ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, n, err)
	}
	return nil
}

// statCell leaves undefined values blank.
func statCell(s analysis.Stat) any {
	if !s.Defined {
		return nil
	}
	return s.Value
}

func writeReadings(f *excelize.File, v dataset.View) error {
	if err := writeHeader(f, SheetReadings, dataset.RequiredColumns...); err != nil {
		return err
	}
	layout := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &layout})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		if err := writeRow(f, SheetReadings, i+2, r.Date, r.TemperatureMean, r.RelativeHumidityMean, r.AdultMaleCount); err != nil {
			return err
		}
	}
	if v.Len() > 0 {
		if err := f.SetCellStyle(SheetReadings, "A2", fmt.Sprintf("A%d", v.Len()+1), dateStyle); err != nil {
			return fmt.Errorf("apply date style: %w", err)
		}
	}
	return nil
}

func writeStatistics(f *excelize.File, s analysis.DescriptiveStats) error {
	if err := writeHeader(f, SheetStatistics, "column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"); err != nil {
		return err
	}
	for i, c := range s.Columns {
		if err := writeRow(f, SheetStatistics, i+2, c.Name, c.Count,
			statCell(c.Mean), statCell(c.Std), statCell(c.Min),
			statCell(c.Q1), statCell(c.Q2), statCell(c.Q3), statCell(c.Max)); err != nil {
			return err
		}
	}
	return nil
}

func writeCorrelations(f *excelize.File, m analysis.CorrelationMatrix) error {
	if err := writeHeader(f, SheetCorrelations, append([]string{""}, m.Columns...)...); err != nil {
		return err
	}
	for i, name := range m.Columns {
		vals := []any{name}
		for j := range m.Columns {
			vals = append(vals, statCell(m.Values[i][j]))
		}
		if err := writeRow(f, SheetCorrelations, i+2, vals...); err != nil {
			return err
		}
	}
	return nil
}

func writeDistribution(f *excelize.File, d analysis.Distribution) error {
	if err := writeHeader(f, SheetDistribution, "bin", "count", "share"); err != nil {
		return err
	}
	for i, b := range d.Bins {
		if err := writeRow(f, SheetDistribution, i+2, b.Label, b.Count, statCell(d.Share(i))); err != nil {
			return err
		}
	}
	return writeRow(f, SheetDistribution, len(d.Bins)+2, "unbinned", d.Unbinned, nil)
}

func writeModel(f *excelize.File, rep *analysis.Report, ds *dataset.Dataset, svc *prediction.Service, runID string) error {
	if err := writeHeader(f, SheetModel, "key", "value"); err != nil {
		return err
	}
	rows := [][]any{
		{"run_id", runID},
		{"source", rep.Name},
		{"from", rep.From.Format(dataset.DateLayout)},
		{"to", rep.To.Format(dataset.DateLayout)},
		{"rows", rep.Rows},
	}
	if m := svc.Model(); m != nil {
		rows = append(rows,
			[]any{"status", "fitted"},
			[]any{"intercept", m.Intercept},
			[]any{"coef_temperature", m.CoefTemperature},
			[]any{"coef_humidity", m.CoefHumidity},
			[]any{"n", m.N},
			[]any{"r_squared", statCell(analysis.Defined(m.RSquared(ds)))},
		)
	} else {
		rows = append(rows, []any{"status", fmt.Sprintf("unavailable: %v", svc.Err())})
	}
	for i, r := range rows {
		if err := writeRow(f, SheetModel, i+2, r...); err != nil {
			return err
		}
	}
	return nil
}
