package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector store and ingestion Prometheus metrics.
var (
	VectorStoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "despme",
			Name:      "vector_store_requests_total",
			Help:      "Total S3 Vectors requests",
		},
		[]string{"operation", "status"}, // operation: "put" / "query"
	)

	VectorStoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "despme",
			Name:      "vector_store_request_duration_seconds",
			Help:      "S3 Vectors request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	DocumentsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "despme",
			Name:      "documents_ingested_total",
			Help:      "Total documents submitted for ingestion",
		},
		[]string{"status"}, // "success" / "failure"
	)
)

var storeMetricsRegistered bool

// RegisterVectorStoreMetrics registers vector store metrics. Must be called once from main.
func RegisterVectorStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(VectorStoreRequestsTotal)
	prometheus.MustRegister(VectorStoreRequestDuration)
	prometheus.MustRegister(DocumentsIngestedTotal)
	storeMetricsRegistered = true
}
