package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Ranking pipeline metrics.
var (
	RankRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_runs_total",
			Help:      "Ranking runs by request kind and terminal stage",
		},
		[]string{"kind", "stage"},
	)

	RankStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	RankPoolSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_pool_size",
			Help:      "Candidates scored per run",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		},
	)
)

var registerOnce sync.Once

// Register adds every domain collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
			VectorQueriesTotal,
			VectorQueryRetriesTotal,
			VectorQueryDuration,
			BreakerState,
			RankRunsTotal,
			RankStageDuration,
			RankPoolSize,
		)
	})
}
