// Package worker holds the runtime pieces of the scheduled sweep binary:
// its fail-open configuration, its Prometheus metrics and its health server.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"haber-radar/internal/pkg/config"
)

// WorkerConfig controls when and how the full sweep runs.
//
// Environment variables:
//   - CRON_SCHEDULE: five-field cron expression (default "*/15 * * * *")
//   - WORKER_TIMEZONE: IANA timezone of the schedule (default "Europe/Istanbul")
//   - SWEEP_TIMEOUT: upper bound of one sweep, 1m-2h (default 20m)
//   - WORKER_HEALTH_PORT: health server port, 1024-65535 (default 9091)
//   - WORKER_METRICS_PORT: metrics server port, 1024-65535 (default 9090)
//   - RUN_ON_START: run one sweep immediately at startup (default true)
type WorkerConfig struct {
	CronSchedule string
	Timezone     string
	SweepTimeout time.Duration
	HealthPort   int
	MetricsPort  int
	RunOnStart   bool
}

// DefaultConfig returns the defaults listed on WorkerConfig.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "*/15 * * * *",
		Timezone:     "Europe/Istanbul",
		SweepTimeout: 20 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
		RunOnStart:   true,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.SweepTimeout, time.Minute, 2*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("sweep timeout: %w", err))
	}
	if err := validatePort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := validatePort(c.MetricsPort); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, errors.New("health port and metrics port must differ"))
	}
	return errors.Join(errs...)
}

// Location returns the schedule timezone, or UTC if it cannot be loaded.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validatePort(p int) error {
	return config.ValidateIntRange(p, 1024, 65535)
}

// LoadConfigFromEnv loads WorkerConfig from the environment. Invalid values
// fall back to their defaults with a warning and a metric; the returned
// configuration is always usable and the error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	l := config.NewLoader(logger, cm)

	cfg.CronSchedule = l.String("CRON_SCHEDULE", "cron_schedule", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.Timezone = l.String("WORKER_TIMEZONE", "timezone", cfg.Timezone, config.ValidateTimezone)
	cfg.SweepTimeout = l.Duration("SWEEP_TIMEOUT", "sweep_timeout", cfg.SweepTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 2*time.Hour)
	})
	cfg.HealthPort = l.Int("WORKER_HEALTH_PORT", "health_port", cfg.HealthPort, validatePort)
	cfg.MetricsPort = l.Int("WORKER_METRICS_PORT", "metrics_port", cfg.MetricsPort, validatePort)
	cfg.RunOnStart = l.Bool("RUN_ON_START", "run_on_start", cfg.RunOnStart)

	if cfg.HealthPort == cfg.MetricsPort {
		def := DefaultConfig()
		logger.Warn("health and metrics ports collide, using defaults",
			slog.Int("port", cfg.HealthPort))
		cfg.HealthPort, cfg.MetricsPort = def.HealthPort, def.MetricsPort
	}

	l.Finish()
	return &cfg, nil
}
