package montecarlo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the simulator's Prometheus collectors.
type Metrics struct {
	runs       *prometheus.CounterVec
	iterations prometheus.Counter
	duration   prometheus.Histogram
	spread     prometheus.Gauge
}

// NewMetrics registers the simulator collectors on reg. A nil reg uses a
// private registry, which keeps tests from colliding on the default one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempo",
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Monte Carlo runs by outcome",
		}, []string{"status"}),
		iterations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tempo",
			Subsystem: "simulation",
			Name:      "iterations_total",
			Help:      "Completed Monte Carlo iterations",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tempo",
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Wall time of a Monte Carlo run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		spread: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tempo",
			Subsystem: "simulation",
			Name:      "p90_minus_p50_units",
			Help:      "Working time between P50 and P90 of the last run",
		}),
	}
}
