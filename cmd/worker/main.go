package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	pgRepo "haber-radar/internal/infra/adapter/persistence/postgres"
	"haber-radar/internal/infra/db"
	"haber-radar/internal/infra/fetcher"
	"haber-radar/internal/infra/scraper"
	workerPkg "haber-radar/internal/infra/worker"
	"haber-radar/internal/observability/logging"
	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/registry"
	"haber-radar/internal/resilience/circuitbreaker"
	"haber-radar/internal/resilience/retry"
	"haber-radar/internal/usecase/aggregate"
	"haber-radar/internal/usecase/persist"
	"haber-radar/pkg/config"
)

// waitForMigrations polls until the api has created the news table.
func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	policy := retry.Config{
		MaxAttempts:  10,
		InitialDelay: 3 * time.Second,
		MaxDelay:     3 * time.Second,
		Multiplier:   1,
		// "relation does not exist" is expected until the api has migrated.
		Retryable: func(error) bool { return true },
	}
	err := retry.WithBackoff(context.Background(), policy, func() error {
		_, err := database.Exec("SELECT 1 FROM news LIMIT 1")
		return err
	})
	if err != nil {
		logger.Error("migrations did not complete in time", slog.Any("error", err))
		os.Exit(1)
	}
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fail-open: invalid values are replaced by defaults and reported.
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("sweep_timeout", workerConfig.SweepTimeout),
		slog.Bool("run_on_start", workerConfig.RunOnStart))

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server stopped unexpectedly", slog.Any("error", err))
		}
	}()
	startMetricsServer(ctx, logger, workerConfig.MetricsPort)
	go db.ReportPoolStats(ctx, database, 15*time.Second)

	job := setupSweepJob(logger, database, workerConfig, workerMetrics, healthServer)

	c := startCronWorker(ctx, logger, job, workerConfig)
	healthServer.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	healthServer.SetReady(false)
	// Stop waits for a running sweep; cancel aborts it first.
	cancel()
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

func initDatabase(logger *slog.Logger) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, config.GetEnvString("DATABASE_URL", ""), db.PoolConfigFromEnv())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

func setupSweepJob(
	logger *slog.Logger,
	database *sql.DB,
	cfg *workerPkg.WorkerConfig,
	workerMetrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) *workerPkg.SweepJob {
	reg, err := registry.Load(config.GetEnvString("SOURCES_FILE", ""))
	if err != nil {
		logger.Error("failed to load source registry", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.UpdateSourcesTotal(reg.Len())

	aggCfg := aggregate.LoadConfigFromEnv(logger)
	client := &http.Client{Timeout: aggCfg.FeedTimeout}
	rssCfg := scraper.DefaultRSSFetcherConfig()
	rssCfg.Timeout = aggCfg.FeedTimeout

	opts := []aggregate.Option{aggregate.WithConfig(aggCfg), aggregate.WithLogger(logger)}
	if aggCfg.ImageEnrichEnabled {
		imgCfg, err := fetcher.LoadConfigFromEnv()
		if err != nil {
			logger.Warn("invalid image fetch configuration, using defaults", slog.Any("error", err))
		}
		opts = append(opts, aggregate.WithImageEnricher(fetcher.NewOGImageFetcher(imgCfg)))
	}
	aggSvc := aggregate.NewService(reg,
		scraper.NewRSSFetcherWithConfig(client, rssCfg),
		scraper.NewGoogleNewsSearcher(client, aggCfg.SearchEngineRPS),
		opts...)

	repo := pgRepo.NewNewsRepo(circuitbreaker.NewDBCircuitBreaker(database))
	persistSvc := persist.NewService(repo)
	persistSvc.Logger = logger

	return &workerPkg.SweepJob{
		Sweeper:  aggSvc,
		Upserter: persistSvc,
		Counter:  repo,
		Metrics:  workerMetrics,
		Health:   healthServer,
		Timeout:  cfg.SweepTimeout,
		Logger:   logger,
	}
}

func startCronWorker(ctx context.Context, logger *slog.Logger, job *workerPkg.SweepJob, cfg *workerPkg.WorkerConfig) *cron.Cron {
	c := cron.New(cron.WithLocation(cfg.Location()))
	_, err := c.AddFunc(cfg.CronSchedule, func() {
		job.Run(ctx)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("cron worker started", slog.String("schedule", cfg.CronSchedule))

	if cfg.RunOnStart {
		go job.Run(ctx)
	}
	return c
}
