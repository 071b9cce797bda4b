// Package regression fits the fixed linear model
//
//	adult_male_count = intercept + coef_t*temperature_mean + coef_h*relativehumidity_mean
//
// by ordinary least squares over a full dataset.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

// NumParams is the number of free parameters of the model.
const NumParams = 3

// rankTol bounds the normalized determinant of the centered predictor
// cross-product; below it the predictors are treated as collinear.
const rankTol = 1e-10

// ErrInsufficientData is returned when the dataset cannot determine a unique
// fit: fewer rows than parameters or rank-deficient predictors.
var ErrInsufficientData = errors.New("insufficient data for regression")

// Model holds fitted coefficients. It is immutable after Fit.
type Model struct {
	Intercept       float64 `json:"intercept"`
	CoefTemperature float64 `json:"coef_temperature"`
	CoefHumidity    float64 `json:"coef_humidity"`
	N               int     `json:"n"`
}

// Fit solves the normal equations on mean-centered predictors, which keeps
// the 2x2 system well conditioned for typical temperature and humidity
// ranges, then recovers the intercept from the means.
func Fit(ds *dataset.Dataset) (*Model, error) {
	n := 0
	if ds != nil {
		n = ds.Len()
	}
	if n < NumParams {
		return nil, fmt.Errorf("%w: need at least %d readings, have %d", ErrInsufficientData, NumParams, n)
	}
	var mt, mh, my float64
	first := ds.At(0)
	tMin, tMax := first.TemperatureMean, first.TemperatureMean
	hMin, hMax := first.RelativeHumidityMean, first.RelativeHumidityMean
	for i := 0; i < n; i++ {
		r := ds.At(i)
		tMin, tMax = math.Min(tMin, r.TemperatureMean), math.Max(tMax, r.TemperatureMean)
		hMin, hMax = math.Min(hMin, r.RelativeHumidityMean), math.Max(hMax, r.RelativeHumidityMean)
		mt += r.TemperatureMean
		mh += r.RelativeHumidityMean
		my += float64(r.AdultMaleCount)
	}
	// Constant columns are detected by min == max; their centered sums
	// may be tiny but nonzero.
	switch {
	case tMin == tMax:
		return nil, fmt.Errorf("%w: temperature_mean is constant", ErrInsufficientData)
	case hMin == hMax:
		return nil, fmt.Errorf("%w: relativehumidity_mean is constant", ErrInsufficientData)
	}
	fn := float64(n)
	mt, mh, my = mt/fn, mh/fn, my/fn

	var stt, shh, sth, sty, shy float64
	for i := 0; i < n; i++ {
		r := ds.At(i)
		dt := r.TemperatureMean - mt
		dh := r.RelativeHumidityMean - mh
		dy := float64(r.AdultMaleCount) - my
		stt += dt * dt
		shh += dh * dh
		sth += dt * dh
		sty += dt * dy
		shy += dh * dy
	}
	// det/(stt*shh) = 1 - r^2 where r is the predictor correlation.
	if det := stt*shh - sth*sth; det/(stt*shh) < rankTol {
		return nil, fmt.Errorf("%w: temperature_mean and relativehumidity_mean are collinear", ErrInsufficientData)
	}

	xtx := mat.NewSymDense(2, []float64{stt, sth, sth, shh})
	var chol mat.Cholesky
	if ok := chol.Factorize(xtx); !ok {
		return nil, fmt.Errorf("%w: predictor matrix is not positive definite", ErrInsufficientData)
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, mat.NewVecDense(2, []float64{sty, shy})); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	bt, bh := beta.AtVec(0), beta.AtVec(1)
	return &Model{
		Intercept:       my - bt*mt - bh*mh,
		CoefTemperature: bt,
		CoefHumidity:    bh,
		N:               n,
	}, nil
}

// Predict evaluates the model. Inputs outside the training range are
// extrapolated linearly.
func (m *Model) Predict(temperature, humidity float64) float64 {
	return m.Intercept + m.CoefTemperature*temperature + m.CoefHumidity*humidity
}

// RSquared returns the coefficient of determination of m on ds, or NaN when
// the response is constant or ds is empty.
func (m *Model) RSquared(ds *dataset.Dataset) float64 {
	n := ds.Len()
	if n == 0 {
		return math.NaN()
	}
	var my float64
	for i := 0; i < n; i++ {
		my += float64(ds.At(i).AdultMaleCount)
	}
	my /= float64(n)
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		r := ds.At(i)
		y := float64(r.AdultMaleCount)
		e := y - m.Predict(r.TemperatureMean, r.RelativeHumidityMean)
		ssRes += e * e
		ssTot += (y - my) * (y - my)
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

func (m *Model) String() string {
	return fmt.Sprintf("count = %.4f + %.4f*temperature + %.4f*humidity (n=%d)",
		m.Intercept, m.CoefTemperature, m.CoefHumidity, m.N)
}
