package config

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks configuration loading of one component
// (metric names are prefixed with the component name).
type ConfigMetrics struct {
	// LoadTimestamp is the Unix time of the last load
	LoadTimestamp prometheus.Gauge

	// ValidationErrorsTotal counts rejected values per field
	ValidationErrorsTotal *prometheus.CounterVec

	// FallbacksTotal counts defaults applied per field
	FallbacksTotal *prometheus.CounterVec

	// FallbackActive is 1 while the current configuration contains a fallback
	FallbackActive prometheus.Gauge
}

var (
	configMetricsMu sync.Mutex
	configMetrics   = map[string]*ConfigMetrics{}
)

// NewConfigMetrics returns the metrics of component, registering them with
// the default registry on first use. Later calls return the same instance.
func NewConfigMetrics(component string) *ConfigMetrics {
	configMetricsMu.Lock()
	defer configMetricsMu.Unlock()
	if m, ok := configMetrics[component]; ok {
		return m
	}
	m := &ConfigMetrics{
		LoadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", component),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", component),
		}),
		ValidationErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", component),
			Help: fmt.Sprintf("Total number of %s configuration validation errors", component),
		}, []string{"field"}),
		FallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", component),
			Help: fmt.Sprintf("Total number of %s configuration fallbacks", component),
		}, []string{"field"}),
		FallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", component),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", component),
		}),
	}
	configMetrics[component] = m
	return m
}

// RecordLoadTimestamp sets the load timestamp to now.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordValidationError counts a rejected value for field.
func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback counts a default applied for field.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive sets the fallback gauge.
func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
