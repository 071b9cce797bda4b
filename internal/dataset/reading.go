// Package dataset loads the temperature/humidity/pest-count readings and
// exposes them as an immutable Dataset with inclusive date-range views.
package dataset

import (
	"time"
)

// Source column headers. Matching is exact and case-sensitive.
const (
	ColDate        = "Date"
	ColTemperature = "temperature_mean"
	ColHumidity    = "relativehumidity_mean"
	ColAdultMales  = "no. of Adult males"
)

// RequiredColumns lists every header the source sheet must carry.
var RequiredColumns = []string{ColDate, ColTemperature, ColHumidity, ColAdultMales}

// Numeric field names used by statistics and presentation.
const (
	FieldTemperature = "temperature_mean"
	FieldHumidity    = "relativehumidity_mean"
	FieldAdultMales  = "adult_male_count"
)

// NumericFields is the fixed column order for statistics and correlations.
var NumericFields = []string{FieldTemperature, FieldHumidity, FieldAdultMales}

// DateLayout is the canonical calendar-date format for flags, JSON and exports.
const DateLayout = "2006-01-02"

// Reading is one dated observation.
type Reading struct {
	Date                 time.Time `json:"date"`
	TemperatureMean      float64   `json:"temperature_mean"`
	RelativeHumidityMean float64   `json:"relativehumidity_mean"`
	AdultMaleCount       int       `json:"adult_male_count"`
}

// Field returns the numeric value of the named field.
func (r Reading) Field(name string) (float64, bool) {
	switch name {
	case FieldTemperature:
		return r.TemperatureMean, true
	case FieldHumidity:
		return r.RelativeHumidityMean, true
	case FieldAdultMales:
		return float64(r.AdultMaleCount), true
	}
	return 0, false
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Dataset is the full, immutable ordered sequence of readings.
type Dataset struct {
	source   string
	sheet    string
	readings []Reading
}

// New builds a Dataset from readings. The slice is copied and every date is
// truncated to its calendar day.
func New(source, sheet string, readings []Reading) *Dataset {
	cp := make([]Reading, len(readings))
	for i, r := range readings {
		r.Date = Day(r.Date)
		cp[i] = r
	}
	return &Dataset{source: source, sheet: sheet, readings: cp}
}

// Source returns the path the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// Sheet returns the sheet name, empty for delimited files.
func (d *Dataset) Sheet() string { return d.sheet }

// Len returns the number of readings.
func (d *Dataset) Len() int { return len(d.readings) }

// At returns the i-th reading in source order.
func (d *Dataset) At(i int) Reading { return d.readings[i] }

// Readings returns a copy of all readings in source order.
func (d *Dataset) Readings() []Reading {
	cp := make([]Reading, len(d.readings))
	copy(cp, d.readings)
	return cp
}

// All returns an unfiltered view over the whole dataset.
func (d *Dataset) All() View {
	idx := make([]int, len(d.readings))
	for i := range idx {
		idx[i] = i
	}
	return View{ds: d, idx: idx}
}

// Bounds returns the earliest and latest dates. ok is false for an empty dataset.
func (d *Dataset) Bounds() (min, max time.Time, ok bool) {
	if len(d.readings) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = d.readings[0].Date, d.readings[0].Date
	for _, r := range d.readings[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, true
}
