package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"haber-radar/internal/domain/category"
	"haber-radar/internal/domain/content"
	"haber-radar/internal/domain/entity"
	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/observability/tracing"
	"haber-radar/internal/resilience/retry"
	"haber-radar/internal/utils/text"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// ErrMalformedFeed is wrapped by fetchers when a response is not a parsable feed.
var ErrMalformedFeed = errors.New("malformed feed")

// FetchFeed fetches one source and returns its canonical items. Items that
// fail content validation are dropped. When keyword is set an item is kept
// only if its title matches the keyword or its description mentions it at
// least twice.
func (s *Service) FetchFeed(ctx context.Context, src entity.Source, keyword string) (items []entity.NewsItem, err error) {
	ctx, span := tracing.StartSpan(ctx, "aggregate.FetchFeed",
		attribute.String("source", src.Key),
		attribute.Bool("keyword_filter", keyword != ""))
	defer func() {
		span.SetAttributes(attribute.Int("items", len(items)))
		tracing.EndSpan(span, err)
	}()

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FeedTimeout)
	raw, err := s.fetcher.Fetch(fetchCtx, src.FeedURL)
	cancel()
	if err != nil {
		metrics.RecordFeedFetchError(src.Key, classifyFetchError(err), time.Since(start))
		return nil, fmt.Errorf("%w: %s: %w", ErrFeedFetchFailed, src.Key, err)
	}

	var synonyms []string
	if keyword != "" {
		synonyms = text.SynonymsOf(keyword)
	}
	items = s.canonicalize(src, raw, keyword, synonyms, false)
	metrics.RecordFeedFetch(src.Key, time.Since(start), len(items))
	return items, nil
}

// canonicalize turns raw entries into canonical items, applying content
// validation, the keyword filter and the URL invariant.
func (s *Service) canonicalize(src entity.Source, raw []RawItem, keyword string, synonyms []string, fromSearch bool) []entity.NewsItem {
	items := make([]entity.NewsItem, 0, len(raw))
	for _, r := range raw {
		title := text.CollapseSpace(r.Title)
		desc := text.CollapseSpace(r.Description)

		if err := content.Validate(title, desc); err != nil {
			var rej *content.RejectionError
			if errors.As(err, &rej) {
				metrics.RecordContentRejected(rej.Rule)
			}
			s.logger.Debug("feed item rejected",
				slog.String("source", src.Key),
				slog.String("title", title),
				slog.Any("reason", err))
			continue
		}

		if keyword != "" && !text.Matches(title, keyword) && text.CountOccurrences(desc, keyword) < 2 {
			continue
		}

		link := strings.TrimSpace(r.Link)
		if !entity.IsAbsoluteHTTPURL(link) {
			continue
		}

		image := strings.TrimSpace(r.ImageURL)
		if image != "" && !entity.IsAbsoluteHTTPURL(image) {
			image = ""
		}

		published := r.PublishedAt
		if published.IsZero() {
			published = s.now()
		}

		cat := src.Category
		if cat == "" || cat == category.Fallback {
			cat = category.Detect(title, desc)
		}

		name := src.Name
		if fromSearch && r.Source != "" {
			name = r.Source
		}

		item := entity.NewsItem{
			Title:            text.Truncate(title, entity.MaxTitleRunes),
			Description:      text.Truncate(desc, entity.MaxDescriptionRunes),
			URL:              link,
			ImageURL:         image,
			PublishedAt:      published,
			Source:           name,
			Category:         cat,
			FeedKey:          src.Key,
			FromSearchEngine: fromSearch,
		}
		if len(synonyms) > 0 {
			item.Keywords = append([]string(nil), synonyms...)
		}
		items = append(items, item)
	}
	return items
}

// classifyFetchError maps a fetch error to the error_type metric label.
func classifyFetchError(err error) string {
	var netErr net.Error
	var httpErr *retry.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.As(err, &httpErr):
		return "http"
	case errors.Is(err, ErrMalformedFeed):
		return "parse"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	}
	return "other"
}
