// Package config implements the fail-open configuration loading used by the
// worker and the aggregation engine: every environment value is validated,
// and an invalid value falls back to its default with a warning and a
// metric instead of stopping the process.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Loader reads validated values from the environment. It remembers whether
// any fallback was applied; call Finish once all fields are loaded.
type Loader struct {
	logger   *slog.Logger
	metrics  *ConfigMetrics
	lookup   func(string) string
	fallback bool
	warnings []string
}

// NewLoader returns a Loader that logs to logger and records into metrics.
// metrics may be nil.
func NewLoader(logger *slog.Logger, metrics *ConfigMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, metrics: metrics, lookup: os.Getenv}
}

// String loads key, falling back to def when validate rejects the value.
func (l *Loader) String(key, field, def string, validate func(string) error) string {
	raw, ok := l.raw(key)
	if !ok {
		return def
	}
	if validate != nil {
		if err := validate(raw); err != nil {
			l.reject(key, field, raw, def, err)
			return def
		}
	}
	return raw
}

// Int loads key as an int.
func (l *Loader) Int(key, field string, def int, validate func(int) error) int {
	raw, ok := l.raw(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		l.reject(key, field, raw, strconv.Itoa(def), err)
		return def
	}
	return v
}

// Duration loads key with time.ParseDuration.
func (l *Loader) Duration(key, field string, def time.Duration, validate func(time.Duration) error) time.Duration {
	raw, ok := l.raw(key)
	if !ok {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		l.reject(key, field, raw, def.String(), err)
		return def
	}
	return v
}

// Float loads key as a float64.
func (l *Loader) Float(key, field string, def float64, validate func(float64) error) float64 {
	raw, ok := l.raw(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		l.reject(key, field, raw, strconv.FormatFloat(def, 'g', -1, 64), err)
		return def
	}
	return v
}

// Bool loads key with strconv.ParseBool.
func (l *Loader) Bool(key, field string, def bool) bool {
	raw, ok := l.raw(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.reject(key, field, raw, strconv.FormatBool(def), err)
		return def
	}
	return v
}

// Finish updates the fallback gauge and load timestamp and reports whether
// any fallback was applied.
func (l *Loader) Finish() bool {
	if l.metrics != nil {
		l.metrics.SetFallbackActive(l.fallback)
		l.metrics.RecordLoadTimestamp()
	}
	return l.fallback
}

// Warnings returns the fallback messages collected so far.
func (l *Loader) Warnings() []string {
	return append([]string(nil), l.warnings...)
}

func (l *Loader) raw(key string) (string, bool) {
	v := strings.TrimSpace(l.lookup(key))
	return v, v != ""
}

func (l *Loader) reject(key, field, raw, def string, err error) {
	l.fallback = true
	warning := fmt.Sprintf("invalid %s=%q: %v, falling back to default %q", key, raw, err, def)
	l.warnings = append(l.warnings, warning)
	if l.metrics != nil {
		l.metrics.RecordValidationError(field)
		l.metrics.RecordFallback(field)
	}
	l.logger.Warn("configuration fallback applied",
		slog.String("field", field),
		slog.String("env_key", key),
		slog.String("invalid_value", raw),
		slog.String("default_value", def),
		slog.Any("error", err))
}
