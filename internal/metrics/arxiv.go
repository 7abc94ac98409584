package metrics

import "github.com/prometheus/client_golang/prometheus"

// arXiv client metrics.
var (
	ArxivRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arxiv_requests_total",
			Help:      "Total arXiv API requests",
		},
		[]string{"operation", "status"},
	)

	ArxivRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "arxiv_request_duration_seconds",
			Help:      "arXiv API request duration in seconds, including rate-limit wait",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	ArxivRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arxiv_retries_total",
			Help:      "Total retried arXiv API requests",
		},
		[]string{"operation"},
	)

	ArxivPapersFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arxiv_papers_fetched_total",
			Help:      "Papers returned by the arXiv API per category",
		},
		[]string{"category"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

var arxivMetricsRegistered bool

// RegisterArxivMetrics registers arXiv client metrics. Must be called once from main.
func RegisterArxivMetrics() {
	if arxivMetricsRegistered {
		return
	}
	prometheus.MustRegister(ArxivRequestsTotal)
	prometheus.MustRegister(ArxivRequestDuration)
	prometheus.MustRegister(ArxivRetriesTotal)
	prometheus.MustRegister(ArxivPapersFetched)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerTransitions)
	arxivMetricsRegistered = true
}
