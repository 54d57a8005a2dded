package generator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK          = "ok"
	outcomeRemoteError = "remote_error"
	outcomeParseError  = "parse_error"
	outcomeInvalid     = "invalid"
)

// Metrics counts dispatches per operation and outcome.
type Metrics struct {
	dispatches *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewMetrics registers the dispatch collectors on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seo_dispatch_total",
			Help: "Model dispatches by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seo_dispatch_duration_seconds",
			Help:    "Latency of the remote model call per operation.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.dispatches, m.latency)
	}
	return m
}

func (m *Metrics) observeCall(op Operation, took time.Duration) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(string(op)).Observe(took.Seconds())
}

func (m *Metrics) count(op Operation, outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(string(op), outcome).Inc()
}
