package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fetch, digest and similarity metrics.
var (
	FetchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_runs_total",
			Help:      "Total fetch pipeline runs",
		},
		[]string{"trigger", "status"},
	)

	PapersStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_stored_total",
			Help:      "Papers inserted by the fetch pipeline",
		},
	)

	DigestsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digests_sent_total",
			Help:      "Digest e-mails sent",
		},
		[]string{"status"},
	)

	SimilarRankDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "similar_rank_duration_seconds",
			Help:      "Time spent ranking similar papers",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	SimilarCorpusSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "similar_corpus_size",
			Help:      "Number of papers in the last similarity corpus",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers fetch, digest and similarity metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(FetchRunsTotal)
	prometheus.MustRegister(PapersStoredTotal)
	prometheus.MustRegister(DigestsSentTotal)
	prometheus.MustRegister(SimilarRankDuration)
	prometheus.MustRegister(SimilarCorpusSize)
	pipelineMetricsRegistered = true
}
