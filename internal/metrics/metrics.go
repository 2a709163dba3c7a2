// Package metrics exposes Prometheus instrumentation for solves and stored
// traces. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Solve outcomes used as the "outcome" label.
const (
	OutcomeSolved   = "solved"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics owns a private registry so tests and multiple apps do not collide.
type Metrics struct {
	registry *prometheus.Registry

	solvesTotal   *prometheus.CounterVec
	solveDuration prometheus.Histogram
	stepsEmitted  prometheus.Counter
	storedTraces  prometheus.Gauge
}

// New registers the knapsack collectors plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		solvesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "knapsack_solves_total",
			Help: "Solve requests by outcome",
		}, []string{"outcome"}),
		solveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "knapsack_solve_duration_seconds",
			Help:    "Time spent building and extracting a trace",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		stepsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "knapsack_steps_emitted_total",
			Help: "Trace steps produced across all solves",
		}),
		storedTraces: factory.NewGauge(prometheus.GaugeOpts{
			Name: "knapsack_stored_traces",
			Help: "Traces currently held in memory",
		}),
	}
}

// ObserveSolve records a finished solve attempt.
func (m *Metrics) ObserveSolve(outcome string, elapsed time.Duration, steps int) {
	if m == nil {
		return
	}
	m.solvesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSolved {
		m.solveDuration.Observe(elapsed.Seconds())
		m.stepsEmitted.Add(float64(steps))
	}
}

// SetStoredTraces reports the current size of the trace store.
func (m *Metrics) SetStoredTraces(n int) {
	if m == nil {
		return
	}
	m.storedTraces.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
