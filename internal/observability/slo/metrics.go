// Package slo exposes service level indicators for the news pipeline next
// to their targets, so alerts can compare the two on one dashboard.
package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// FeedAvailabilitySLO is the minimum share of sources a sweep must read successfully.
	FeedAvailabilitySLO = 0.90

	// LiveSearchLatencySLO is the target upper bound for one live search.
	LiveSearchLatencySLO = 20 * time.Second
)

var (
	// FeedAvailability is the share of sources read successfully in the last sweep.
	FeedAvailability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_feed_availability_ratio",
			Help: "Share of feed sources fetched successfully in the last sweep, target: 0.90",
		},
	)

	// LiveSearchSlowTotal counts live searches slower than LiveSearchLatencySLO.
	LiveSearchSlowTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slo_live_search_slow_total",
			Help: "Live searches that exceeded the latency target of 20s",
		},
	)
)

// UpdateFeedAvailability records a sweep outcome and reports whether it met the target.
// A sweep over zero sources counts as available.
func UpdateFeedAvailability(succeeded, total int) bool {
	ratio := 1.0
	if total > 0 {
		ratio = float64(succeeded) / float64(total)
	}
	FeedAvailability.Set(ratio)
	return ratio >= FeedAvailabilitySLO
}

// ObserveLiveSearch counts d against the latency target and reports whether it was met.
func ObserveLiveSearch(d time.Duration) bool {
	if d > LiveSearchLatencySLO {
		LiveSearchSlowTotal.Inc()
		return false
	}
	return true
}
