package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Reader turns a tabular source into raw rows, header first.
type Reader interface {
	CanRead(path string) bool
	Rows(path, sheet string) ([][]string, error)
}

var readers []Reader

// RegisterReader adds a source reader. Later registrations take priority.
func RegisterReader(r Reader) {
	readers = append([]Reader{r}, readers...)
}

func init() {
	RegisterReader(xlsxReader{})
	RegisterReader(csvReader{})
}

// Load reads sheet from source and validates every row. It either returns a
// complete Dataset or a *DataLoadError; partial datasets are never exposed.
func Load(source, sheet string) (*Dataset, error) {
	var rd Reader
	for _, r := range readers {
		if r.CanRead(source) {
			rd = r
			break
		}
	}
	if rd == nil {
		// Unknown extensions are tried as workbooks; excelize reports the format error.
		rd = xlsxReader{}
	}
	rows, err := rd.Rows(source, sheet)
	if err != nil {
		return nil, err
	}
	return parseRows(source, sheet, rows)
}

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func (xlsxReader) Rows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Sheet: sheet, Reason: ReasonUnreachable, Err: err}
	}
	defer f.Close()
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &DataLoadError{
			Source: path,
			Sheet:  sheet,
			Reason: ReasonSheetMissing,
			Detail: "available sheets: " + strings.Join(f.GetSheetList(), ", "),
		}
	}
	// Raw values keep date cells as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DataLoadError{Source: path, Sheet: sheet, Reason: ReasonUnreachable, Err: err}
	}
	return rows, nil
}

// csvReader accepts comma or tab separated files. A CSV holds a single
// implicit sheet named after the file.
type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return true
	}
	return false
}

func (csvReader) Rows(path, sheet string) ([][]string, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if sheet != "" && !strings.EqualFold(sheet, base) {
		return nil, &DataLoadError{Source: path, Sheet: sheet, Reason: ReasonSheetMissing, Detail: "available sheets: " + base}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Sheet: sheet, Reason: ReasonUnreachable, Err: err}
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataLoadError{Source: path, Sheet: sheet, Reason: ReasonBadValue, Row: len(rows) + 1, Err: err}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func parseRows(source, sheet string, rows [][]string) (*Dataset, error) {
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	pos := make(map[string]int, len(RequiredColumns))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &DataLoadError{Source: source, Sheet: sheet, Reason: ReasonColumnMissing, Detail: strings.Join(missing, ", ")}
	}

	readings := make([]Reading, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		cell := func(col string) string {
			j := pos[col]
			if j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}
		bad := func(col string, err error) error {
			return &DataLoadError{Source: source, Sheet: sheet, Reason: ReasonBadValue, Row: i + 1, Detail: col, Err: err}
		}
		var (
			r   Reading
			err error
		)
		if r.Date, err = parseDate(cell(ColDate)); err != nil {
			return nil, bad(ColDate, err)
		}
		if r.TemperatureMean, err = parseReal(cell(ColTemperature)); err != nil {
			return nil, bad(ColTemperature, err)
		}
		if r.RelativeHumidityMean, err = parseReal(cell(ColHumidity)); err != nil {
			return nil, bad(ColHumidity, err)
		}
		if r.AdultMaleCount, err = parseCount(cell(ColAdultMales)); err != nil {
			return nil, bad(ColAdultMales, err)
		}
		readings = append(readings, r)
	}
	return New(source, sheet, readings), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var dateLayouts = []string{
	DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04",
	"2006/01/02", "1/2/2006", "1/2/2006 15:04:05",
}

// parseDate accepts Excel serial dates (1900 system) and common text layouts.
// Slash dates are month first, padded or not.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty value")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("serial date %q: %w", s, err)
		}
		return Day(t), nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseReal(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

// parseCount accepts integral non-negative numbers, including "12.0" as
// written by spreadsheets that store counts as floats.
func parseCount(s string) (int, error) {
	f, err := parseReal(s)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("not a non-negative integer: %q", s)
	}
	return int(f), nil
}
