// Package prediction serves adult male count predictions from a fitted model.
package prediction

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
	"github.com/KaramelBytes/pestwatch/internal/regression"
)

// Service binds a fitted model, or the error that prevented fitting.
// It is safe for concurrent use.
type Service struct {
	model  *regression.Model
	fitErr error
}

// New binds model. When model is nil, fitErr is reported by Predict; a nil
// fitErr then defaults to regression.ErrInsufficientData.
func New(model *regression.Model, fitErr error) *Service {
	if model == nil && fitErr == nil {
		fitErr = regression.ErrInsufficientData
	}
	if model != nil {
		fitErr = nil
	}
	return &Service{model: model, fitErr: fitErr}
}

// FromDataset fits ds and binds the result.
func FromDataset(ds *dataset.Dataset) *Service {
	m, err := regression.Fit(ds)
	return New(m, err)
}

// Available reports whether a model is bound.
func (s *Service) Available() bool { return s.model != nil }

// Model returns the bound model, or nil.
func (s *Service) Model() *regression.Model { return s.model }

// Err returns the fit error, or nil when a model is bound.
func (s *Service) Err() error { return s.fitErr }

// Predict returns the predicted adult male count for the given conditions.
func (s *Service) Predict(temperature, humidity float64) (float64, error) {
	if s.model == nil {
		return 0, s.fitErr
	}
	return s.model.Predict(temperature, humidity), nil
}

// Format renders a prediction for display.
func Format(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Defaults returns the dataset means of temperature and humidity, used as
// the initial input values. Both are zero for an empty dataset.
func Defaults(ds *dataset.Dataset) (temperature, humidity float64) {
	if ds == nil || ds.Len() == 0 {
		return 0, 0
	}
	v := ds.All()
	return stat.Mean(v.Column(dataset.FieldTemperature), nil),
		stat.Mean(v.Column(dataset.FieldHumidity), nil)
}
