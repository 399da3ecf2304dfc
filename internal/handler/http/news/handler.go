// Package news serves the live search, category and stored-news endpoints.
package news

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/usecase/aggregate"
	"haber-radar/internal/usecase/persist"
)

// Aggregator runs live aggregations.
type Aggregator interface {
	LiveSearch(ctx context.Context, keyword string, opts aggregate.SearchOptions) (*aggregate.Result, error)
	ScrapeByCategory(ctx context.Context, category string, limit int) (*aggregate.Result, error)
}

// Store lists persisted news.
type Store interface {
	ListRecent(ctx context.Context, category string, limit int) ([]*entity.StoredNews, error)
}

// Persister stores live results.
type Persister interface {
	UpsertAll(ctx context.Context, items []entity.NewsItem) persist.UpsertResult
}

// Cache holds encoded search responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Handler groups the news endpoints. Store, Persister and Cache are
// optional.
type Handler struct {
	Agg       Aggregator
	Store     Store
	Persister Persister
	Cache     Cache
	Logger    *slog.Logger

	// PersistTimeout bounds the background upsert of search results.
	PersistTimeout time.Duration

	wg sync.WaitGroup
}

// Register mounts the endpoints on mux. limiter, when non-nil, wraps the
// live aggregation routes.
func Register(mux *http.ServeMux, h *Handler, limiter func(http.Handler) http.Handler) {
	live := func(fn http.HandlerFunc) http.Handler {
		if limiter == nil {
			return fn
		}
		return limiter(fn)
	}
	mux.Handle("GET /news/search", live(h.Search))
	mux.Handle("GET /news/category/{category}", live(h.Category))
	mux.HandleFunc("GET /news/recent", h.Recent)
	mux.HandleFunc("GET /categories", h.Categories)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// parseLimit returns 0 when the parameter is absent, letting the use case
// pick its default.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &entity.ValidationError{Field: "limit", Message: "limit must be an integer"}
	}
	return n, nil
}

func parseOptionalBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &entity.ValidationError{Field: name, Message: name + " must be true or false"}
	}
	return &b, nil
}
