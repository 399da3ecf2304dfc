package aggregate

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"haber-radar/internal/pkg/config"
)

// Config holds the engine tunables.
type Config struct {
	// BatchSize is the number of sources fetched concurrently. Batches run
	// one after another.
	BatchSize int

	// DefaultLimit is the LiveSearch result limit when the caller gives none.
	DefaultLimit int

	// CategoryLimit is the ScrapeByCategory result limit when the caller gives none.
	CategoryLimit int

	// MaxLimit caps caller-supplied limits.
	MaxLimit int

	// MaxSourceSample bounds how many sources a LiveSearch visits.
	MaxSourceSample int

	// IncludeSearchEngine enables the search-engine channel for LiveSearch.
	IncludeSearchEngine bool

	// SearchSynonyms is how many synonyms, besides the keyword itself, are
	// queried on the search-engine channel.
	SearchSynonyms int

	// MinKeywordRunes and MaxKeywordRunes bound the LiveSearch keyword.
	MinKeywordRunes int
	MaxKeywordRunes int

	// FeedTimeout bounds a single feed request.
	FeedTimeout time.Duration

	// SearchEngineRPS limits requests to the search engine.
	SearchEngineRPS float64

	// ImageEnrichEnabled turns on the og:image lookup for items without an image.
	ImageEnrichEnabled bool

	// ImageEnrichParallelism bounds concurrent page fetches of the lookup.
	ImageEnrichParallelism int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:              5,
		DefaultLimit:           100,
		CategoryLimit:          50,
		MaxLimit:               500,
		MaxSourceSample:        25,
		IncludeSearchEngine:    true,
		SearchSynonyms:         2,
		MinKeywordRunes:        2,
		MaxKeywordRunes:        100,
		FeedTimeout:            15 * time.Second,
		SearchEngineRPS:        1,
		ImageEnrichEnabled:     false,
		ImageEnrichParallelism: 4,
	}
}

// Validate reports every out-of-range field.
func (c *Config) Validate() error {
	var errs []error
	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}
	check("batch size", config.ValidateIntRange(c.BatchSize, 1, 20))
	check("max limit", config.ValidateIntRange(c.MaxLimit, 1, 1000))
	check("default limit", config.ValidateIntRange(c.DefaultLimit, 1, c.MaxLimit))
	check("category limit", config.ValidateIntRange(c.CategoryLimit, 1, c.MaxLimit))
	check("max source sample", config.ValidateIntRange(c.MaxSourceSample, 1, 500))
	check("search synonyms", config.ValidateIntRange(c.SearchSynonyms, 0, 5))
	check("min keyword runes", config.ValidateIntRange(c.MinKeywordRunes, 1, 10))
	check("max keyword runes", config.ValidateIntRange(c.MaxKeywordRunes, c.MinKeywordRunes, 500))
	check("feed timeout", config.ValidateDuration(c.FeedTimeout, time.Second, 2*time.Minute))
	check("search engine rps", config.ValidateFloatRange(c.SearchEngineRPS, 0.1, 50))
	check("image enrich parallelism", config.ValidateIntRange(c.ImageEnrichParallelism, 1, 32))
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads the tunables from the environment.
//
// Environment variables:
//   - AGG_BATCH_SIZE (1-20, default 5)
//   - AGG_DEFAULT_LIMIT (default 100), AGG_CATEGORY_LIMIT (default 50), AGG_MAX_LIMIT (default 500)
//   - AGG_MAX_SOURCE_SAMPLE (default 25)
//   - AGG_INCLUDE_SEARCH_ENGINE (default true), AGG_SEARCH_SYNONYMS (0-5, default 2)
//   - FEED_TIMEOUT (1s-2m, default 15s)
//   - SEARCH_ENGINE_RPS (default 1)
//   - IMAGE_ENRICH_ENABLED (default false), IMAGE_ENRICH_PARALLELISM (default 4)
//
// Invalid values fall back to their defaults; the result always validates.
func LoadConfigFromEnv(logger *slog.Logger) Config {
	cfg := DefaultConfig()
	l := config.NewLoader(logger, config.NewConfigMetrics("aggregator"))

	intIn := func(min, max int) func(int) error {
		return func(v int) error { return config.ValidateIntRange(v, min, max) }
	}

	cfg.BatchSize = l.Int("AGG_BATCH_SIZE", "batch_size", cfg.BatchSize, intIn(1, 20))
	cfg.MaxLimit = l.Int("AGG_MAX_LIMIT", "max_limit", cfg.MaxLimit, intIn(1, 1000))
	cfg.DefaultLimit = l.Int("AGG_DEFAULT_LIMIT", "default_limit", cfg.DefaultLimit, intIn(1, cfg.MaxLimit))
	cfg.CategoryLimit = l.Int("AGG_CATEGORY_LIMIT", "category_limit", cfg.CategoryLimit, intIn(1, cfg.MaxLimit))
	cfg.MaxSourceSample = l.Int("AGG_MAX_SOURCE_SAMPLE", "max_source_sample", cfg.MaxSourceSample, intIn(1, 500))
	cfg.IncludeSearchEngine = l.Bool("AGG_INCLUDE_SEARCH_ENGINE", "include_search_engine", cfg.IncludeSearchEngine)
	cfg.SearchSynonyms = l.Int("AGG_SEARCH_SYNONYMS", "search_synonyms", cfg.SearchSynonyms, intIn(0, 5))
	cfg.FeedTimeout = l.Duration("FEED_TIMEOUT", "feed_timeout", cfg.FeedTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 2*time.Minute)
	})
	cfg.SearchEngineRPS = l.Float("SEARCH_ENGINE_RPS", "search_engine_rps", cfg.SearchEngineRPS, func(v float64) error {
		return config.ValidateFloatRange(v, 0.1, 50)
	})
	cfg.ImageEnrichEnabled = l.Bool("IMAGE_ENRICH_ENABLED", "image_enrich_enabled", cfg.ImageEnrichEnabled)
	cfg.ImageEnrichParallelism = l.Int("IMAGE_ENRICH_PARALLELISM", "image_enrich_parallelism", cfg.ImageEnrichParallelism, intIn(1, 32))

	l.Finish()
	return cfg
}
