// Package metrics holds the Prometheus collectors of the service and small
// Record* helpers around them. Collectors are registered with the default
// registry through promauto and exposed on /metrics.
//
//	start := time.Now()
//	items, err := fetcher.Fetch(ctx, src.FeedURL)
//	if err != nil {
//	    metrics.RecordFeedFetchError(src.Key, "http", time.Since(start))
//	}
//	metrics.RecordFeedFetch(src.Key, time.Since(start), len(items))
package metrics
