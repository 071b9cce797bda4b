package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
	"github.com/KaramelBytes/pestwatch/internal/prediction"
)

// fitEntry fits the model for one dataset at most once per process.
type fitEntry struct {
	once sync.Once
	svc  *prediction.Service
}

var fits sync.Map // *dataset.Dataset -> *fitEntry

// loadDataset returns the configured dataset, loading it on first use.
func loadDataset() (*dataset.Dataset, error) {
	if cfg == nil {
		loadConfig()
	}
	sheet := cfg.Sheet
	// delimited files have a single implicit sheet
	switch strings.ToLower(filepath.Ext(cfg.Source)) {
	case ".csv", ".tsv":
		if !rootCmd.PersistentFlags().Changed("sheet") {
			sheet = ""
		}
	}
	start := time.Now()
	ds, err := dataset.Default().Get(cfg.Source, sheet)
	if err != nil {
		return nil, err
	}
	slog.Debug("dataset ready", "source", cfg.Source, "sheet", sheet, "readings", ds.Len(), "elapsed", time.Since(start))
	return ds, nil
}

// predictor returns the prediction service bound to ds. A failed fit is
// logged once and leaves the service unavailable.
func predictor(ds *dataset.Dataset) *prediction.Service {
	v, _ := fits.LoadOrStore(ds, &fitEntry{})
	e := v.(*fitEntry)
	e.once.Do(func() {
		e.svc = prediction.FromDataset(ds)
		if m := e.svc.Model(); m != nil {
			slog.Info("model fitted",
				"intercept", m.Intercept,
				"coef_temperature", m.CoefTemperature,
				"coef_humidity", m.CoefHumidity,
				"n", m.N,
				"r_squared", m.RSquared(ds))
			return
		}
		slog.Warn("prediction unavailable", "error", e.svc.Err())
	})
	return e.svc
}

// dateRange resolves --from/--to, defaulting each side to the dataset bounds.
func dateRange(ds *dataset.Dataset, from, to string) (time.Time, time.Time, error) {
	lo, hi, _ := ds.Bounds()
	if from != "" {
		t, err := dataset.ParseDay(from)
		if err != nil {
			return lo, hi, fmt.Errorf("invalid --from %q: use YYYY-MM-DD", from)
		}
		lo = t
	}
	if to != "" {
		t, err := dataset.ParseDay(to)
		if err != nil {
			return lo, hi, fmt.Errorf("invalid --to %q: use YYYY-MM-DD", to)
		}
		hi = t
	}
	return lo, hi, nil
}
