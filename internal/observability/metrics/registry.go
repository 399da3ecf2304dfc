// Package metrics holds the Prometheus collectors shared by the API and the worker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"method", "path", "status"},
	)

	// path is the normalized route, never the raw URL.
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of in-flight HTTP requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Feed metrics track per-source fetching
var (
	// FeedItemsFetchedTotal counts canonical items produced per source
	FeedItemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_fetched_total",
			Help: "Total number of canonical news items produced by each feed source",
		},
		[]string{"source"},
	)

	// FeedFetchDuration measures time to fetch and parse one feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// FeedFetchErrorsTotal counts feed failures by type
	FeedFetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of feed fetch failures",
		},
		[]string{"source", "error_type"},
	)

	// ContentRejectedTotal counts items dropped by the content validator
	ContentRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_rejected_total",
			Help: "Total number of feed items rejected by the content validator",
		},
		[]string{"rule"},
	)

	// SourcesTotal tracks the number of sources in the registry
	SourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_total",
			Help: "Number of feed sources in the registry",
		},
	)
)

// Aggregation metrics track searches and sweeps
var (
	// AggregationsTotal counts aggregation calls by mode and outcome
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregations_total",
			Help: "Total number of aggregation calls",
		},
		[]string{"mode", "status"}, // mode: search, category, sweep
	)

	// AggregationDuration measures aggregation call latency
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Time taken by an aggregation call",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 128},
		},
		[]string{"mode"},
	)

	// AggregationResultItems measures the number of items returned
	AggregationResultItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_result_items",
			Help:    "Number of items returned by an aggregation call",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"mode"},
	)

	// SearchEngineRequestsTotal counts search-engine channel calls by result
	SearchEngineRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_engine_requests_total",
			Help: "Total number of search-engine news channel requests",
		},
		[]string{"result"}, // result: success, failure
	)

	// ImageEnrichTotal counts og:image lookups by result
	ImageEnrichTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_enrich_total",
			Help: "Total number of article page image lookups",
		},
		[]string{"result"}, // result: found, missing, failure
	)

	// CircuitBreakerOpen is 1 while the named circuit is open
	CircuitBreakerOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_open",
			Help: "Whether the named circuit breaker is open (1) or not (0)",
		},
		[]string{"name"},
	)

	// CacheRequestsTotal counts search cache lookups by result
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_requests_total",
			Help: "Total number of search cache lookups",
		},
		[]string{"result"}, // result: hit, miss, error
	)
)

// Persistence metrics track the news store
var (
	// NewsUpsertsTotal counts upsert outcomes
	NewsUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_upserts_total",
			Help: "Total number of news upserts by outcome",
		},
		[]string{"result"}, // result: inserted, duplicate, error
	)

	// NewsStoredTotal tracks active news records in the database
	NewsStoredTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "news_stored_total",
			Help: "Number of active news records in the database",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// Pool gauges, refreshed by ReportPoolStats.
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest updates the request counters. A non-positive size is not observed.
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
