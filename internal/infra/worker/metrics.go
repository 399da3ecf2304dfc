package worker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"haber-radar/internal/pkg/config"
)

// WorkerMetrics groups the sweep job metrics with the worker config metrics.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// SweepRunsTotal counts sweeps by status (success, failure)
	SweepRunsTotal *prometheus.CounterVec

	// SweepDurationSeconds measures sweep duration
	SweepDurationSeconds prometheus.Histogram

	// SweepItemsTotal counts items by outcome (found, inserted, duplicate, error)
	SweepItemsTotal *prometheus.CounterVec

	// SweepFailedSources counts sources that failed during sweeps
	SweepFailedSources prometheus.Counter

	// SweepLastSuccessTimestamp is the Unix time of the last successful sweep
	SweepLastSuccessTimestamp prometheus.Gauge
}

var (
	workerMetricsOnce sync.Once
	workerMetrics     *WorkerMetrics
)

// NewWorkerMetrics returns the process-wide worker metrics, registering
// them with the default registry on first use.
func NewWorkerMetrics() *WorkerMetrics {
	workerMetricsOnce.Do(func() {
		workerMetrics = &WorkerMetrics{
			ConfigMetrics: config.NewConfigMetrics("worker"),

			SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "worker_sweep_runs_total",
				Help: "Total number of sweep runs by status",
			}, []string{"status"}),

			SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "worker_sweep_duration_seconds",
				Help:    "Duration of one sweep in seconds",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
			}),

			SweepItemsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "worker_sweep_items_total",
				Help: "Total number of items handled by sweeps by outcome",
			}, []string{"outcome"}),

			SweepFailedSources: promauto.NewCounter(prometheus.CounterOpts{
				Name: "worker_sweep_failed_sources_total",
				Help: "Total number of sources that failed during sweeps",
			}),

			SweepLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "worker_sweep_last_success_timestamp",
				Help: "Unix timestamp of the last successful sweep",
			}),
		}
	})
	return workerMetrics
}

// RecordSweepRun counts a sweep with the given status.
func (m *WorkerMetrics) RecordSweepRun(status string) {
	m.SweepRunsTotal.WithLabelValues(status).Inc()
}

// RecordSweepDuration observes the duration of a sweep in seconds.
func (m *WorkerMetrics) RecordSweepDuration(seconds float64) {
	m.SweepDurationSeconds.Observe(seconds)
}

// RecordSweepItems counts the items of one sweep.
func (m *WorkerMetrics) RecordSweepItems(found, inserted, duplicates, errors int) {
	m.SweepItemsTotal.WithLabelValues("found").Add(float64(found))
	m.SweepItemsTotal.WithLabelValues("inserted").Add(float64(inserted))
	m.SweepItemsTotal.WithLabelValues("duplicate").Add(float64(duplicates))
	m.SweepItemsTotal.WithLabelValues("error").Add(float64(errors))
}

// RecordFailedSources counts failed sources of one sweep.
func (m *WorkerMetrics) RecordFailedSources(n int) {
	m.SweepFailedSources.Add(float64(n))
}

// RecordLastSuccess sets the last success timestamp to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.SweepLastSuccessTimestamp.SetToCurrentTime()
}
