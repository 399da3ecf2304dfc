// Package resilience groups the fault tolerance helpers used for outbound
// calls: circuit breakers (per feed host, search engine, article pages and
// database) and retry with exponential backoff and jitter.
//
//	breakers := circuitbreaker.NewGroup(circuitbreaker.FeedFetchConfig)
//	items, err := retry.Do(ctx, retry.FeedFetchConfig(), func() ([]Item, error) {
//	    return circuitbreaker.Run(breakers.Get(host), fetch)
//	})
package resilience
