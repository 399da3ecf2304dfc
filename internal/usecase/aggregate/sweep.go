package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/observability/slo"
	"haber-radar/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// ScrapeByCategory fetches every source of category without a keyword
// filter and returns the newest items first, deduplicated and truncated to
// limit (0 selects Config.CategoryLimit).
func (s *Service) ScrapeByCategory(ctx context.Context, categoryName string, limit int) (res *Result, err error) {
	start := time.Now()

	cat, err := s.validateCategory(categoryName, true)
	if err != nil {
		return nil, err
	}
	limit, err = s.resolveLimit(limit, s.cfg.CategoryLimit)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "aggregate.ScrapeByCategory",
		attribute.String("category", cat),
		attribute.Int("limit", limit))
	defer func() {
		count := 0
		if res != nil {
			count = res.Count
		}
		metrics.RecordAggregation("category", err == nil, time.Since(start), count)
		tracing.EndSpan(span, err)
	}()

	sources := s.registry.ByCategory(cat)
	items, failures, err := s.fetchSources(ctx, sources, "", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape category %s: %w", cat, err)
	}

	sortByRecency(items)
	items = truncate(Dedup(items), limit)
	s.enrichImages(ctx, items)

	s.logger.Info("category scrape completed",
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

// ScrapeAll fetches every source of the registry. onProgress, when set, is
// called after each source with the running count. The result is
// deduplicated and sorted newest first, without truncation.
func (s *Service) ScrapeAll(ctx context.Context, onProgress ProgressFunc) (res *Result, err error) {
	start := time.Now()
	sources := s.registry.All()
	metrics.UpdateSourcesTotal(len(sources))

	ctx, span := tracing.StartSpan(ctx, "aggregate.ScrapeAll",
		attribute.Int("sources", len(sources)))
	defer func() {
		count := 0
		if res != nil {
			count = res.Count
		}
		metrics.RecordAggregation("sweep", err == nil, time.Since(start), count)
		tracing.EndSpan(span, err)
	}()

	current := 0
	done := func(r sourceResult) {
		current++
		if onProgress != nil {
			onProgress(Progress{
				Current:    current,
				Total:      len(sources),
				SourceKey:  r.src.Key,
				ItemsFound: len(r.items),
			})
		}
	}

	items, failures, err := s.fetchSources(ctx, sources, "", nil, done)
	if err != nil {
		return nil, fmt.Errorf("scrape all sources: %w", err)
	}

	succeeded := len(sources) - len(failures)
	if !slo.UpdateFeedAvailability(succeeded, len(sources)) {
		s.logger.Warn("feed availability below target",
			slog.Int("succeeded", succeeded),
			slog.Int("total", len(sources)))
	}

	sortByRecency(items)
	items = Dedup(items)
	s.enrichImages(ctx, items)

	s.logger.Info("full sweep completed",
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
