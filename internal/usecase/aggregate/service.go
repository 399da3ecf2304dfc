package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"haber-radar/internal/domain/category"
	"haber-radar/internal/domain/entity"
	"haber-radar/internal/registry"

	"golang.org/x/sync/errgroup"
)

// Service coordinates feed fetching, the search-engine channel, ranking and
// deduplication. It is safe for concurrent use; every call keeps its own
// state.
type Service struct {
	registry *registry.Registry
	fetcher  FeedFetcher
	searcher NewsSearcher
	enricher ImageEnricher
	cfg      Config
	sample   Sampler
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithSampler replaces the random source sampler, e.g. for deterministic tests.
func WithSampler(fn Sampler) Option {
	return func(s *Service) {
		if fn != nil {
			s.sample = fn
		}
	}
}

// WithClock replaces time.Now for recency scoring and missing publish dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithImageEnricher installs the image lookup used when
// Config.ImageEnrichEnabled is set.
func WithImageEnricher(e ImageEnricher) Option {
	return func(s *Service) { s.enricher = e }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates the aggregation service. searcher may be nil, which
// disables the search-engine channel.
func NewService(reg *registry.Registry, fetcher FeedFetcher, searcher NewsSearcher, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		fetcher:  fetcher,
		searcher: searcher,
		cfg:      DefaultConfig(),
		sample:   RandomSampler,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	// SetLimit(0) would block every lookup.
	s.cfg.BatchSize = max(s.cfg.BatchSize, 1)
	s.cfg.ImageEnrichParallelism = max(s.cfg.ImageEnrichParallelism, 1)
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// RandomSampler returns n sources chosen uniformly at random.
func RandomSampler(candidates []entity.Source, n int) []entity.Source {
	if n >= len(candidates) {
		out := make([]entity.Source, len(candidates))
		copy(out, candidates)
		return out
	}
	out := make([]entity.Source, 0, n)
	for _, i := range rand.Perm(len(candidates))[:n] {
		out = append(out, candidates[i])
	}
	return out
}

func (s *Service) validateKeyword(keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	n := utf8.RuneCountInString(keyword)
	if n < s.cfg.MinKeywordRunes {
		return "", &entity.ValidationError{
			Field:   "keyword",
			Message: fmt.Sprintf("keyword must be at least %d characters", s.cfg.MinKeywordRunes),
		}
	}
	if n > s.cfg.MaxKeywordRunes {
		return "", &entity.ValidationError{
			Field:   "keyword",
			Message: fmt.Sprintf("keyword must not exceed %d characters", s.cfg.MaxKeywordRunes),
		}
	}
	return keyword, nil
}

func (s *Service) validateCategory(name string, required bool) (string, error) {
	if strings.TrimSpace(name) == "" {
		if required {
			return "", &entity.ValidationError{Field: "category", Message: "category is required"}
		}
		return "", nil
	}
	canon := category.Canonical(name)
	if canon == "" {
		return "", &entity.ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("unknown category %q", name),
		}
	}
	return canon, nil
}

func (s *Service) resolveLimit(limit, def int) (int, error) {
	switch {
	case limit < 0:
		return 0, &entity.ValidationError{Field: "limit", Message: "limit must not be negative"}
	case limit == 0:
		return def, nil
	case limit > s.cfg.MaxLimit:
		return s.cfg.MaxLimit, nil
	}
	return limit, nil
}

// sourceResult is the outcome of one source within a batch.
type sourceResult struct {
	src   entity.Source
	items []entity.NewsItem
	err   error
}

// fetchSources fetches sources in sequential batches of Config.BatchSize.
// Sources of one batch run concurrently and the whole batch is awaited
// before the next starts. done, when set, is called for each source from
// the calling goroutine. stop, when set, is consulted after every batch
// with the number of items gathered so far. A source failure never fails
// the call; only ctx cancellation does.
func (s *Service) fetchSources(
	ctx context.Context,
	sources []entity.Source,
	keyword string,
	stop func(collected int) bool,
	done func(sourceResult),
) ([]entity.NewsItem, []SourceFailure, error) {
	var (
		items    []entity.NewsItem
		failures []SourceFailure
	)

	for start := 0; start < len(sources); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return items, failures, err
		}

		end := min(start+s.cfg.BatchSize, len(sources))
		batch := sources[start:end]
		results := make([]sourceResult, len(batch))

		var g errgroup.Group
		for i, src := range batch {
			g.Go(func() error {
				got, err := s.FetchFeed(ctx, src, keyword)
				results[i] = sourceResult{src: src, items: got, err: err}
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return items, failures, err
		}

		for _, r := range results {
			if r.err != nil {
				s.logger.Warn("feed fetch failed",
					slog.String("source", r.src.Key),
					slog.String("feed_url", r.src.FeedURL),
					slog.Any("error", r.err))
				failures = append(failures, SourceFailure{SourceKey: r.src.Key, Err: r.err})
			} else {
				items = append(items, r.items...)
			}
			if done != nil {
				done(r)
			}
		}

		if stop != nil && stop(len(items)) {
			break
		}
	}
	return items, failures, nil
}
