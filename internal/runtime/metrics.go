package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so instrumentation stays optional.
type Metrics struct {
	nodeExecutions   *prometheus.CounterVec
	runDuration      prometheus.Histogram
	providerDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_node_executions_total",
				Help: "Total number of node executions by node type",
			},
			[]string{"node_type"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "lattice_run_duration_seconds",
				Help: "Duration of full workflow runs",
			},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "lattice_provider_call_duration_seconds",
				Help: "Duration of language model provider calls",
			},
			[]string{"provider"},
		),
	}
	reg.MustRegister(m.nodeExecutions, m.runDuration, m.providerDuration)
	return m
}

// ObserveNode counts one node execution.
func (m *Metrics) ObserveNode(nodeType string) {
	if m == nil {
		return
	}
	m.nodeExecutions.WithLabelValues(nodeType).Inc()
}

// ObserveRun records the duration of a completed run.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

// ObserveProviderCall records one provider round trip.
func (m *Metrics) ObserveProviderCall(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerDuration.WithLabelValues(provider).Observe(d.Seconds())
}
