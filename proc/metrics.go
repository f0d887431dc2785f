package proc

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "jagerbot"

var (
	metricsOnce sync.Once

	alertsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "alerts_delivered_total",
			Help:      "Alert delivery attempts by status.",
		},
		[]string{"status"},
	)

	alertsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "alerts_active",
			Help:      "Number of stored alerts after the last tick.",
		},
	)

	alertTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "alert_tick_duration_seconds",
			Help:      "Time spent in one scheduler tick.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2, 5, 10},
		},
	)

	alertOwnerSkips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "alert_owner_skips_total",
			Help:      "Owners skipped because their DM channel could not be resolved.",
		},
	)
)

// RegisterMetrics adds the scheduler metrics to the default registry. It
// is safe to call more than once.
func RegisterMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(alertsDelivered, alertsActive, alertTickDuration, alertOwnerSkips)
	})
}
