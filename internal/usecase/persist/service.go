// Package persist writes canonical news items to storage with URL-keyed
// upserts.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/repository"
)

// ItemError describes one item that could not be stored.
type ItemError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// UpsertResult summarises an UpsertAll call.
type UpsertResult struct {
	Inserted   int
	Duplicates int
	Errors     []ItemError
}

// MarshalJSON renders the upsert statistics envelope.
func (r UpsertResult) MarshalJSON() ([]byte, error) {
	errs := r.Errors
	if errs == nil {
		errs = []ItemError{}
	}
	return json.Marshal(struct {
		InsertedCount  int         `json:"insertedCount"`
		DuplicateCount int         `json:"duplicateCount"`
		Errors         []ItemError `json:"errors"`
	}{r.Inserted, r.Duplicates, errs})
}

// Service writes aggregated items to the news repository, stamping each
// with the scrape time. Now and Logger can be replaced in tests.
type Service struct {
	Repo   repository.NewsRepository
	Now    func() time.Time
	Logger *slog.Logger
}

// NewService creates a Service using the wall clock.
func NewService(repo repository.NewsRepository) *Service {
	return &Service{Repo: repo, Now: time.Now, Logger: slog.Default()}
}

// UpsertAll stores items one by one. An item whose URL already exists
// counts as a duplicate; any other failure is recorded and the loop
// continues. When ctx is done the remaining items are recorded as errors.
func (s *Service) UpsertAll(ctx context.Context, items []entity.NewsItem) UpsertResult {
	var res UpsertResult
	scrapedAt := s.Now()

	for i := range items {
		item := &items[i]
		if err := ctx.Err(); err != nil {
			for _, rest := range items[i:] {
				res.Errors = append(res.Errors, ItemError{URL: rest.URL, Message: err.Error()})
			}
			break
		}

		inserted, err := s.Repo.Upsert(ctx, item.ToStored(scrapedAt))
		switch {
		case err == nil && inserted:
			res.Inserted++
		case err == nil, errors.Is(err, entity.ErrDuplicate):
			res.Duplicates++
		default:
			s.Logger.Warn("upsert failed",
				slog.String("url", item.URL),
				slog.Any("error", err))
			res.Errors = append(res.Errors, ItemError{URL: item.URL, Message: err.Error()})
		}
	}

	metrics.RecordUpserts(res.Inserted, res.Duplicates, len(res.Errors))
	return res
}
