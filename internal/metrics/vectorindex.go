package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector index metrics. Labels carry the namespace (technologies, features, job_titles).
var (
	VectorQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_index_queries_total",
			Help:      "Vector index queries by final outcome",
		},
		[]string{"index", "status"}, // ok / error / cancelled
	)

	VectorQueryRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_index_retries_total",
			Help:      "Retried vector index attempts",
		},
		[]string{"index"},
	)

	VectorQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vector_index_query_duration_seconds",
			Help:      "Vector index query duration including retries",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		},
		[]string{"index"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vector_index_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"breaker"},
	)
)
