package aggregate

import (
	"context"
	"log/slog"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/observability/metrics"

	"golang.org/x/sync/errgroup"
)

// enrichImages looks up images for items that have none. It is a no-op
// unless enabled and an enricher is installed. Lookup failures leave the
// item unchanged.
func (s *Service) enrichImages(ctx context.Context, items []entity.NewsItem) {
	if !s.cfg.ImageEnrichEnabled || s.enricher == nil {
		return
	}
	missing := itemsWithoutImage(items)
	if len(missing) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ImageEnrichParallelism)
	for _, i := range missing {
		g.Go(func() error {
			img, err := s.enricher.FetchImage(gctx, items[i].URL)
			switch {
			case err != nil:
				metrics.RecordImageEnrich("error")
				s.logger.Debug("image lookup failed",
					slog.String("url", items[i].URL),
					slog.Any("error", err))
			case img == "" || !entity.IsAbsoluteHTTPURL(img):
				metrics.RecordImageEnrich("not_found")
			default:
				metrics.RecordImageEnrich("found")
				items[i].ImageURL = img
			}
			return nil
		})
	}
	_ = g.Wait()
}

// itemsWithoutImage returns the indexes of items that have no image.
func itemsWithoutImage(items []entity.NewsItem) []int {
	var idx []int
	for i := range items {
		if items[i].ImageURL == "" {
			idx = append(idx, i)
		}
	}
	return idx
}
