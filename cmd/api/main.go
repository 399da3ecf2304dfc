package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	hhttp "haber-radar/internal/handler/http"
	"haber-radar/internal/handler/http/news"
	"haber-radar/internal/handler/http/requestid"
	pgRepo "haber-radar/internal/infra/adapter/persistence/postgres"
	"haber-radar/internal/infra/cache"
	"haber-radar/internal/infra/db"
	"haber-radar/internal/infra/fetcher"
	"haber-radar/internal/infra/scraper"
	"haber-radar/internal/observability/logging"
	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/observability/tracing"
	"haber-radar/internal/registry"
	"haber-radar/internal/resilience/circuitbreaker"
	"haber-radar/internal/usecase/aggregate"
	"haber-radar/internal/usecase/persist"
	"haber-radar/pkg/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, database, version)

	runServer(logger, database, components, version)
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the pool and, unless RUN_MIGRATIONS=false, applies the schema.
func initDatabase(logger *slog.Logger) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, config.GetEnvString("DATABASE_URL", ""), db.PoolConfigFromEnv())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if config.GetEnvBool("RUN_MIGRATIONS", true) {
		if err := db.MigrateUp(ctx, database); err != nil {
			logger.Error("failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}
	return database
}

func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// ServerComponents holds what the server needs to run and to shut down cleanly.
type ServerComponents struct {
	Handler     http.Handler
	News        *news.Handler
	RateLimiter *hhttp.RateLimiter
}

func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	reg, err := registry.Load(config.GetEnvString("SOURCES_FILE", ""))
	if err != nil {
		logger.Error("failed to load source registry", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.UpdateSourcesTotal(reg.Len())
	logger.Info("source registry loaded",
		slog.Int("sources", reg.Len()),
		slog.Any("categories", reg.Categories()))

	aggSvc := newAggregator(logger, reg)

	repo := pgRepo.NewNewsRepo(circuitbreaker.NewDBCircuitBreaker(database))
	newsHandler := &news.Handler{
		Agg:            aggSvc,
		Store:          repo,
		Logger:         logger,
		PersistTimeout: config.GetEnvDuration("PERSIST_TIMEOUT", 30*time.Second),
	}
	if config.GetEnvBool("PERSIST_SEARCH_RESULTS", true) {
		persistSvc := persist.NewService(repo)
		persistSvc.Logger = logger
		newsHandler.Persister = persistSvc
	}

	var searchCache *cache.SearchCache
	if addr := config.GetEnvString("REDIS_ADDR", ""); addr != "" {
		searchCache = initCache(logger, addr)
		if searchCache != nil {
			newsHandler.Cache = searchCache
		}
	}

	limiter := hhttp.NewRateLimiter(
		config.GetEnvFloat("SEARCH_RATE_LIMIT", 2),
		config.GetEnvInt("SEARCH_RATE_BURST", 5),
		10*time.Minute,
	)

	mux := http.NewServeMux()
	news.Register(mux, newsHandler, limiter.Limit)

	health := &hhttp.HealthHandler{DB: database, Sources: reg.Len(), Version: version}
	if searchCache != nil {
		health.Cache = searchCache
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /health/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /health/live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return &ServerComponents{
		Handler:     applyMiddleware(logger, mux),
		News:        newsHandler,
		RateLimiter: limiter,
	}
}

// newAggregator wires the feed fetcher, the search-engine channel and the
// optional og:image lookup into the engine.
func newAggregator(logger *slog.Logger, reg *registry.Registry) *aggregate.Service {
	aggCfg := aggregate.LoadConfigFromEnv(logger)
	client := &http.Client{Timeout: aggCfg.FeedTimeout}

	rssCfg := scraper.DefaultRSSFetcherConfig()
	rssCfg.Timeout = aggCfg.FeedTimeout
	feeds := scraper.NewRSSFetcherWithConfig(client, rssCfg)
	searcher := scraper.NewGoogleNewsSearcher(client, aggCfg.SearchEngineRPS)

	opts := []aggregate.Option{
		aggregate.WithConfig(aggCfg),
		aggregate.WithLogger(logger),
	}
	if aggCfg.ImageEnrichEnabled {
		imgCfg, err := fetcher.LoadConfigFromEnv()
		if err != nil {
			logger.Warn("invalid image fetch configuration, using defaults", slog.Any("error", err))
		}
		opts = append(opts, aggregate.WithImageEnricher(fetcher.NewOGImageFetcher(imgCfg)))
	}
	return aggregate.NewService(reg, feeds, searcher, opts...)
}

// initCache connects to Redis. A failure leaves the API running uncached.
func initCache(logger *slog.Logger, addr string) *cache.SearchCache {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := cache.Open(ctx, addr,
		config.GetEnvString("REDIS_PASSWORD", ""),
		config.GetEnvInt("REDIS_DB", 0))
	if err != nil {
		logger.Warn("search cache disabled", slog.String("addr", addr), slog.Any("error", err))
		return nil
	}
	ttl := config.GetEnvDuration("SEARCH_CACHE_TTL", cache.DefaultTTL)
	logger.Info("search cache enabled", slog.String("addr", addr), slog.Duration("ttl", ttl))
	return cache.NewSearchCache(rdb, ttl, logger)
}

// applyMiddleware builds the chain, outermost first: the request id must
// exist before the span and the request log line are created.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	return hhttp.Chain(handler,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.MetricsMiddleware,
		hhttp.InputValidation(),
		hhttp.Timeout(config.GetEnvDuration("REQUEST_TIMEOUT", 60*time.Second)),
	)
}

func runServer(logger *slog.Logger, database *sql.DB, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go db.ReportPoolStats(ctx, database, 15*time.Second)
	go cleanupRateLimiter(ctx, logger, components.RateLimiter, 5*time.Minute)

	addr := config.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// Background upserts run on detached contexts; give them a chance to land.
	done := make(chan struct{})
	go func() {
		components.News.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pending search persists abandoned")
	}

	cancel()
	logger.Info("server stopped")
}

func cleanupRateLimiter(ctx context.Context, logger *slog.Logger, rl *hhttp.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := rl.Cleanup()
			logger.Debug("rate limiter cleanup", slog.Int("clients", remaining))
		}
	}
}
