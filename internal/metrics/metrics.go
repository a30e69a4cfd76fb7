// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for outbound enrichment calls.
const (
	OutcomeOK       = "ok"
	OutcomeAbsent   = "absent"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreviews_http_requests_total",
			Help: "HTTP requests served, by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreviews_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	MetadataFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreviews_metadata_fetches_total",
			Help: "Book metadata lookups by outcome (ok, absent, error)",
		},
		[]string{"outcome"},
	)

	MetadataInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookreviews_metadata_in_flight",
			Help: "Metadata lookups currently waiting on the external service",
		},
	)

	Summaries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreviews_summaries_total",
			Help: "Description summarization calls by outcome",
		},
		[]string{"outcome"},
	)

	PopularBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookreviews_popular_batch_size",
			Help:    "Number of books ranked per popular-books request",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		},
	)

	PopularDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookreviews_popular_duration_seconds",
			Help:    "Wall time of one popular-books ranking batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookreviews_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	ImportedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreviews_import_rows_total",
			Help: "CSV import rows by result (inserted, duplicate, skipped)",
		},
		[]string{"result"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
