package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	refreshDuration prometheus.Histogram
	universeSize    prometheus.Gauge
	errorsTotal     *prometheus.CounterVec
	alertsTriggered *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "perpscan_refresh_duration_seconds",
				Help:    "Duration of a full snapshot refresh cycle",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
		universeSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "perpscan_universe_size",
				Help: "Number of tradable symbols in the current universe",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		alertsTriggered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpscan_alerts_triggered_total",
				Help: "Total number of alert rules fired",
			},
			[]string{"kind"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "perpscan_last_price",
				Help: "Last observed ticker price for a symbol with alerts",
			},
			[]string{"symbol"},
		),
	}
}

// RecordRefreshDuration records the elapsed time of a refresh cycle.
func (r *Recorder) RecordRefreshDuration(seconds float64) {
	r.refreshDuration.Observe(seconds)
}

// RecordUniverseSize records the size of the tradable universe.
func (r *Recorder) RecordUniverseSize(n int) {
	r.universeSize.Set(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordAlertTriggered records a fired alert rule.
func (r *Recorder) RecordAlertTriggered(kind string) {
	r.alertsTriggered.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
