package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "paperdigest"

// Summary (LLM) Prometheus metrics.
var (
	SummaryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_requests_total",
			Help:      "Total number of summary completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	SummaryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_request_duration_seconds",
			Help:      "Summary completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	SummaryTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_tokens_total",
			Help:      "Total summary tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	SummaryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_errors_total",
			Help:      "Total summary errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	SummaryBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summary_budget_tokens_remaining",
			Help:      "Remaining summary token budget",
		},
		[]string{"provider", "period"},
	)

	SummaryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Summary cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var summaryMetricsRegistered bool

// RegisterSummaryMetrics registers Prometheus summary metrics. Must be called once from main.
func RegisterSummaryMetrics() {
	if summaryMetricsRegistered {
		return
	}
	prometheus.MustRegister(SummaryRequestsTotal)
	prometheus.MustRegister(SummaryRequestDuration)
	prometheus.MustRegister(SummaryTokensTotal)
	prometheus.MustRegister(SummaryErrorsTotal)
	prometheus.MustRegister(SummaryBudgetTokensRemaining)
	prometheus.MustRegister(SummaryCacheTotal)
	summaryMetricsRegistered = true
}
