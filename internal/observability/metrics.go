package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the gateway's forwarding counters to Prometheus.
type Metrics interface {
	// ForwardAttempt records one outbound forwarding attempt for a chain/upstream.
	ForwardAttempt(chain, upstream, outcome string)

	// AttemptsPerRequest records how many attempts one inbound request took.
	AttemptsPerRequest(chain string, attempts int)

	// QuotaExhausted records one occurrence of a fully-drained chain.
	QuotaExhausted(chain string)

	// Registry returns the underlying Prometheus registry for the /metrics handler.
	Registry() *prometheus.Registry
}

type promMetrics struct {
	registry   *prometheus.Registry
	forwarded  *prometheus.CounterVec
	attempts   *prometheus.HistogramVec
	exhausted  *prometheus.CounterVec
}

// NewMetrics builds a fresh Prometheus registry with the gateway's instruments.
func NewMetrics() Metrics {
	registry := prometheus.NewRegistry()

	forwarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_forward_attempts_total",
		Help: "Outbound forwarding attempts by chain, upstream and outcome.",
	}, []string{"chain", "upstream", "outcome"})

	attempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_attempts_per_request",
		Help:    "Number of forwarding attempts per inbound request.",
		Buckets: []float64{1, 2, 3, 4, 5},
	}, []string{"chain"})

	exhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_quota_exhausted_total",
		Help: "Occurrences of a chain having no eligible upstream at pick time.",
	}, []string{"chain"})

	registry.MustRegister(forwarded, attempts, exhausted)

	return &promMetrics{
		registry:  registry,
		forwarded: forwarded,
		attempts:  attempts,
		exhausted: exhausted,
	}
}

func (m *promMetrics) ForwardAttempt(chain, upstream, outcome string) {
	m.forwarded.WithLabelValues(chain, upstream, outcome).Inc()
}

func (m *promMetrics) AttemptsPerRequest(chain string, attempts int) {
	m.attempts.WithLabelValues(chain).Observe(float64(attempts))
}

func (m *promMetrics) QuotaExhausted(chain string) {
	m.exhausted.WithLabelValues(chain).Inc()
}

func (m *promMetrics) Registry() *prometheus.Registry {
	return m.registry
}
