package server

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/KaramelBytes/pestwatch/internal/analysis"
	"github.com/KaramelBytes/pestwatch/internal/dataset"
	"github.com/KaramelBytes/pestwatch/internal/prediction"
	"github.com/KaramelBytes/pestwatch/internal/regression"
)

var validate = validator.New()

// Handler serves read-only queries over one dataset and its prediction
// service. Both are immutable, so handlers run concurrently without locks.
type Handler struct {
	ds  *dataset.Dataset
	svc *prediction.Service
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	v1 := app.Group("/api/v1")
	v1.Get("/range", h.dateRange)
	v1.Get("/readings", h.readings)
	v1.Get("/stats", h.stats)
	v1.Get("/correlations", h.correlations)
	v1.Get("/distribution", h.distribution)
	v1.Get("/predict", h.predict)
}

// rangeQuery holds the optional inclusive date bounds.
type rangeQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

type predictQuery struct {
	Temperature string `query:"temperature" validate:"required"`
	Humidity    string `query:"humidity" validate:"required"`
}

type readingJSON struct {
	Date                 string  `json:"date"`
	TemperatureMean      float64 `json:"temperature_mean"`
	RelativeHumidityMean float64 `json:"relativehumidity_mean"`
	AdultMaleCount       int     `json:"adult_male_count"`
}

// bindRange parses from/to, defaulting each to the dataset bounds.
func (h *Handler) bindRange(c *fiber.Ctx) (from, to time.Time, err error) {
	var q rangeQuery
	if err := c.QueryParser(&q); err != nil {
		return from, to, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return from, to, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	from, to, _ = h.ds.Bounds()
	if q.From != "" {
		if from, err = dataset.ParseDay(q.From); err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if q.To != "" {
		if to, err = dataset.ParseDay(q.To); err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	return from, to, nil
}

func (h *Handler) view(c *fiber.Ctx) (dataset.View, fiber.Map, error) {
	from, to, err := h.bindRange(c)
	if err != nil {
		return dataset.View{}, nil, err
	}
	v := dataset.Filter(h.ds, from, to)
	return v, fiber.Map{
		"from": dayString(from),
		"to":   dayString(to),
		"rows": v.Len(),
	}, nil
}

func (h *Handler) dateRange(c *fiber.Ctx) error {
	t, hum := prediction.Defaults(h.ds)
	resp := fiber.Map{
		"rows": h.ds.Len(),
		"min":  nil,
		"max":  nil,
		"defaults": fiber.Map{
			"temperature": t,
			"humidity":    hum,
		},
	}
	if lo, hi, ok := h.ds.Bounds(); ok {
		resp["min"] = lo.Format(dataset.DateLayout)
		resp["max"] = hi.Format(dataset.DateLayout)
	}
	return c.JSON(resp)
}

func (h *Handler) readings(c *fiber.Ctx) error {
	v, resp, err := h.view(c)
	if err != nil {
		return err
	}
	out := make([]readingJSON, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		out = append(out, readingJSON{
			Date:                 r.Date.Format(dataset.DateLayout),
			TemperatureMean:      r.TemperatureMean,
			RelativeHumidityMean: r.RelativeHumidityMean,
			AdultMaleCount:       r.AdultMaleCount,
		})
	}
	resp["readings"] = out
	return c.JSON(resp)
}

func (h *Handler) stats(c *fiber.Ctx) error {
	v, resp, err := h.view(c)
	if err != nil {
		return err
	}
	resp["columns"] = analysis.Describe(v).Columns
	return c.JSON(resp)
}

func (h *Handler) correlations(c *fiber.Ctx) error {
	v, resp, err := h.view(c)
	if err != nil {
		return err
	}
	m := analysis.Correlate(v)
	resp["columns"] = m.Columns
	resp["values"] = m.Values
	return c.JSON(resp)
}

func (h *Handler) distribution(c *fiber.Ctx) error {
	v, resp, err := h.view(c)
	if err != nil {
		return err
	}
	d := analysis.CountDistribution(v)
	resp["bins"] = d.Bins
	resp["unbinned"] = d.Unbinned
	resp["total"] = d.Total
	return c.JSON(resp)
}

func (h *Handler) predict(c *fiber.Ctx) error {
	var q predictQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	t, err := parseFinite(q.Temperature)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid temperature")
	}
	hum, err := parseFinite(q.Humidity)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid humidity")
	}

	val, err := h.svc.Predict(t, hum)
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "prediction unavailable: "+err.Error())
	}
	return c.JSON(fiber.Map{
		"temperature": t,
		"humidity":    hum,
		"value":       val,
		"formatted":   prediction.Format(val),
		"model":       modelJSON(h.svc.Model(), h.ds),
	})
}

// parseFinite parses s the way the CLI float flags do, rejecting NaN and Inf.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func modelJSON(m *regression.Model, ds *dataset.Dataset) fiber.Map {
	return fiber.Map{
		"intercept":        m.Intercept,
		"coef_temperature": m.CoefTemperature,
		"coef_humidity":    m.CoefHumidity,
		"n":                m.N,
		"r_squared":        analysis.Defined(m.RSquared(ds)),
	}
}

func dayString(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dataset.DateLayout)
}
