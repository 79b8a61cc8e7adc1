package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipefinder_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Search pipeline metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipefinder_search_requests_total",
			Help: "Total number of recipe searches by outcome",
		},
		[]string{"outcome"}, // "ok", "validation_error", "error"
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipefinder_search_duration_seconds",
			Help:    "Duration of the full search pipeline in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RetrievalPath counts which retrieval tier produced the results
	RetrievalPath = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipefinder_retrieval_path_total",
			Help: "Total number of retrievals by path",
		},
		[]string{"path"}, // "vector", "keyword", "empty"
	)

	RetrievalDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipefinder_retrieval_degradations_total",
			Help: "Total number of times retrieval fell back to keyword search",
		},
		[]string{"reason"}, // "embedding_unavailable", "vector_error", "timeout", "circuit_open"
	)

	PaddedRecipes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipefinder_padded_recipes_total",
			Help: "Total number of fallback recipes added to fill a response",
		},
	)

	// Embedding metrics
	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipefinder_embedding_duration_seconds",
			Help:    "Duration of embedding calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"provider", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipefinder_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipefinder_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordAPIRequest records one served HTTP request
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordSearch records the outcome of one search
func RecordSearch(outcome string, duration time.Duration) {
	SearchRequests.WithLabelValues(outcome).Inc()
	SearchDuration.Observe(duration.Seconds())
}

// RecordEmbedding records one embedding call
func RecordEmbedding(provider string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EmbeddingDuration.WithLabelValues(provider, result).Observe(duration.Seconds())
}
