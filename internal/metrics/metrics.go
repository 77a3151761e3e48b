package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatrelay/internal/models"
)

// Metrics tracks request outcomes, backend latency and token usage.
//
// Exposed series:
//   - chatrelay_requests_total{outcome}
//   - chatrelay_backend_latency_seconds
//   - chatrelay_tokens_total{type}
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	backendLatency prometheus.Histogram
	tokensTotal    *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chatrelay",
				Name:      "requests_total",
				Help:      "Total number of chat requests processed, by outcome",
			},
			[]string{"outcome"},
		),
		backendLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "chatrelay",
				Name:      "backend_latency_seconds",
				Help:      "Latency of inference backend calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chatrelay",
				Name:      "tokens_total",
				Help:      "Total number of tokens processed, by type",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.backendLatency,
		m.tokensTotal,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished request with its outcome label
// ("ok" or an error kind).
func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveBackendLatency records the duration of one backend call.
func (m *Metrics) ObserveBackendLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.backendLatency.Observe(d.Seconds())
}

// AddUsage records token counts from a successful backend response.
func (m *Metrics) AddUsage(u models.Usage) {
	if m == nil {
		return
	}
	m.tokensTotal.WithLabelValues("input").Add(float64(u.InputTokens))
	m.tokensTotal.WithLabelValues("output").Add(float64(u.OutputTokens))
}
