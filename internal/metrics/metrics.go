// Package metrics exposes Prometheus instrumentation for forecast fetching and classification.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/gowindow/internal/weather"
)

// ForecastMetrics records provider fetches and classification outcomes.
type ForecastMetrics struct {
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	recordsTotal  *prometheus.CounterVec
}

// New creates the forecast metrics and registers them with reg.
func New(reg prometheus.Registerer) (*ForecastMetrics, error) {
	m := &ForecastMetrics{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowindow_provider_fetches_total",
				Help: "Total number of forecast fetches by provider, kind and outcome",
			},
			[]string{"provider", "kind", "status"}, // status: success, error
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "gowindow_provider_fetch_duration_seconds",
				Help: "Time taken to fetch a forecast from the provider",
				// 50ms .. ~25s
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"provider", "kind"},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowindow_classified_records_total",
				Help: "Total number of classified forecast records by activity, kind and quality",
			},
			[]string{"activity", "kind", "quality"},
		),
	}

	for _, c := range []prometheus.Collector{m.fetchesTotal, m.fetchDuration, m.recordsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveFetch records a single provider call.
func (m *ForecastMetrics) ObserveFetch(provider string, kind weather.Kind, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.fetchesTotal.WithLabelValues(provider, string(kind), status).Inc()
	m.fetchDuration.WithLabelValues(provider, string(kind)).Observe(d.Seconds())
}

// CountQuality records one classified record.
func (m *ForecastMetrics) CountQuality(activity weather.Activity, kind weather.Kind, q weather.Quality) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(string(activity), string(kind), string(q)).Inc()
}

var _ weather.Recorder = (*ForecastMetrics)(nil)
