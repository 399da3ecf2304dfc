package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/observability/slo"
	"haber-radar/internal/observability/tracing"
	"haber-radar/internal/utils/text"

	"go.opentelemetry.io/otel/attribute"
)

// searchEngineSource describes the search-engine channel as a pseudo source.
var searchEngineSource = entity.Source{Key: "search-engine", Name: "Google News"}

// LiveSearch searches a sample of the registry, plus the search-engine
// channel, for keyword. Results are scored, sorted by descending score,
// deduplicated by URL and truncated to the limit.
//
// Only invalid input (keyword length, unknown category, negative limit) and
// ctx cancellation fail the call; failing sources are reported in
// Result.Failures.
func (s *Service) LiveSearch(ctx context.Context, keyword string, opts SearchOptions) (res *Result, err error) {
	start := time.Now()

	keyword, err = s.validateKeyword(keyword)
	if err != nil {
		return nil, err
	}
	cat, err := s.validateCategory(opts.Category, false)
	if err != nil {
		return nil, err
	}
	limit, err := s.resolveLimit(opts.Limit, s.cfg.DefaultLimit)
	if err != nil {
		return nil, err
	}
	sampleSize := opts.MaxSourceSample
	if sampleSize <= 0 {
		sampleSize = s.cfg.MaxSourceSample
	}
	includeSE := s.cfg.IncludeSearchEngine
	if opts.IncludeSearchEngineNews != nil {
		includeSE = *opts.IncludeSearchEngineNews
	}
	includeSE = includeSE && s.searcher != nil

	ctx, span := tracing.StartSpan(ctx, "aggregate.LiveSearch",
		attribute.String("keyword", keyword),
		attribute.String("category", cat),
		attribute.Int("limit", limit),
		attribute.Bool("search_engine", includeSE))
	defer func() {
		d := time.Since(start)
		count := 0
		if res != nil {
			count = res.Count
		}
		metrics.RecordAggregation("search", err == nil, d, count)
		slo.ObserveLiveSearch(d)
		tracing.EndSpan(span, err)
	}()

	candidates := s.registry.All()
	if cat != "" {
		candidates = s.registry.ByCategory(cat)
	}
	sources := candidates
	if len(candidates) > sampleSize {
		sources = s.sample(candidates, sampleSize)
	}
	span.SetAttributes(attribute.Int("sources", len(sources)))

	var seDone chan []entity.NewsItem
	if includeSE {
		seDone = make(chan []entity.NewsItem, 1)
		go func() { seDone <- s.searchEngine(ctx, keyword, cat) }()
	}

	items, failures, err := s.fetchSources(ctx, sources, keyword, func(n int) bool { return n >= limit }, nil)
	if seDone != nil {
		items = append(items, <-seDone...)
	}
	if err != nil {
		return nil, fmt.Errorf("live search: %w", err)
	}

	now := s.now()
	for i := range items {
		items[i].RelevanceScore = Score(items[i], keyword, now)
	}
	sortByScore(items)
	items = truncate(Dedup(items), limit)
	s.enrichImages(ctx, items)

	s.logger.Info("live search completed",
		slog.String("keyword", keyword),
		slog.String("category", cat),
		slog.Int("sources", len(sources)),
		slog.Int("failed_sources", len(failures)),
		slog.Int("items", len(items)),
		slog.Duration("duration", time.Since(start)))

	return &Result{
		Success:  true,
		Items:    items,
		Count:    len(items),
		Duration: time.Since(start),
		Failures: failures,
	}, nil
}

// searchEngine queries the search-engine channel for keyword and up to
// Config.SearchSynonyms of its synonyms. Failures are logged and
// contribute nothing. When cat is set only items classified into it are kept.
func (s *Service) searchEngine(ctx context.Context, keyword, cat string) []entity.NewsItem {
	synonyms := text.SynonymsOf(keyword)
	terms := synonyms
	if len(terms) > s.cfg.SearchSynonyms+1 {
		terms = terms[:s.cfg.SearchSynonyms+1]
	}

	var out []entity.NewsItem
	for _, term := range terms {
		if ctx.Err() != nil {
			break
		}
		raw, err := s.searcher.Search(ctx, term)
		metrics.RecordSearchEngineRequest(err == nil)
		if err != nil {
			s.logger.Warn("search engine query failed",
				slog.String("query", term),
				slog.Any("error", err))
			continue
		}
		for _, it := range s.canonicalize(searchEngineSource, raw, keyword, synonyms, true) {
			if cat != "" && it.Category != cat {
				continue
			}
			out = append(out, it)
		}
	}
	return out
}
