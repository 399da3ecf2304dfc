package metrics

import (
	"time"

	"github.com/sony/gobreaker"
)

// RecordFeedFetch records a successful feed fetch and the number of
// canonical items it produced.
func RecordFeedFetch(source string, duration time.Duration, items int) {
	FeedFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if items > 0 {
		FeedItemsFetchedTotal.WithLabelValues(source).Add(float64(items))
	}
}

// RecordFeedFetchError records a failed feed fetch.
// errorType is one of "timeout", "circuit_open", "http", "parse", "canceled", "other".
func RecordFeedFetchError(source, errorType string, duration time.Duration) {
	FeedFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	FeedFetchErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// RecordContentRejected records an item dropped by the content validator.
func RecordContentRejected(rule string) {
	ContentRejectedTotal.WithLabelValues(rule).Inc()
}

// RecordAggregation records one LiveSearch, ScrapeByCategory or ScrapeAll call.
func RecordAggregation(mode string, success bool, duration time.Duration, items int) {
	status := "success"
	if !success {
		status = "failure"
	}
	AggregationsTotal.WithLabelValues(mode, status).Inc()
	AggregationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if success {
		AggregationResultItems.WithLabelValues(mode).Observe(float64(items))
	}
}

// RecordSearchEngineRequest records a search-engine channel call.
func RecordSearchEngineRequest(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	SearchEngineRequestsTotal.WithLabelValues(result).Inc()
}

// RecordImageEnrich records an og:image lookup. result is "found", "missing" or "failure".
func RecordImageEnrich(result string) {
	ImageEnrichTotal.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerState mirrors a breaker transition into CircuitBreakerOpen.
// Its signature matches circuitbreaker.Config.OnStateChange.
func RecordCircuitBreakerState(name string, _ gobreaker.State, to gobreaker.State) {
	v := 0.0
	if to == gobreaker.StateOpen {
		v = 1
	}
	CircuitBreakerOpen.WithLabelValues(name).Set(v)
}

// RecordCacheLookup records a search cache lookup. result is "hit", "miss" or "error".
func RecordCacheLookup(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordUpserts records the outcome counts of an upsert run.
func RecordUpserts(inserted, duplicates, errors int) {
	NewsUpsertsTotal.WithLabelValues("inserted").Add(float64(inserted))
	NewsUpsertsTotal.WithLabelValues("duplicate").Add(float64(duplicates))
	NewsUpsertsTotal.WithLabelValues("error").Add(float64(errors))
}

// UpdateNewsStored sets the number of active stored news records.
func UpdateNewsStored(count int) {
	NewsStoredTotal.Set(float64(count))
}

// UpdateSourcesTotal sets the number of registry sources.
func UpdateSourcesTotal(count int) {
	SourcesTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database operation
// (e.g. "upsert_news", "list_recent_news").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
