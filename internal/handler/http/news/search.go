package news

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/handler/http/respond"
	"haber-radar/internal/infra/cache"
	"haber-radar/internal/observability/logging"
	"haber-radar/internal/usecase/aggregate"
)

// Search handles GET /news/search?q=&category=&limit=&searchEngine=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	searchEngine, err := parseOptionalBool(r, "searchEngine")
	if err != nil {
		respond.Error(w, err)
		return
	}
	opts := aggregate.SearchOptions{
		Category:                q.Get("category"),
		Limit:                   limit,
		IncludeSearchEngineNews: searchEngine,
	}
	keyword := q.Get("q")

	var key string
	if h.Cache != nil {
		key = cache.SearchKey(keyword, opts.Category, opts.Limit, opts.IncludeSearchEngineNews)
		if body, ok := h.Cache.Get(r.Context(), key); ok {
			w.Header().Set("X-Cache", "HIT")
			respond.Raw(w, http.StatusOK, body)
			return
		}
	}

	res, err := h.Agg.LiveSearch(r.Context(), keyword, opts)
	if err != nil {
		respond.Error(w, err)
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if h.Cache != nil {
		h.Cache.Set(r.Context(), key, body)
		w.Header().Set("X-Cache", "MISS")
	}
	h.persistAsync(r.Context(), res.Items)
	respond.Raw(w, http.StatusOK, body)
}

// Category handles GET /news/category/{category}?limit=.
func (h *Handler) Category(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	res, err := h.Agg.ScrapeByCategory(r.Context(), r.PathValue("category"), limit)
	if err != nil {
		respond.Error(w, err)
		return
	}
	h.persistAsync(r.Context(), res.Items)
	respond.JSON(w, http.StatusOK, res)
}

// persistAsync upserts items in the background when a Persister is set.
// The request context is detached so the upsert outlives the response.
func (h *Handler) persistAsync(ctx context.Context, items []entity.NewsItem) {
	if h.Persister == nil || len(items) == 0 {
		return
	}
	timeout := h.PersistTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	batch := make([]entity.NewsItem, len(items))
	copy(batch, items)
	logger := logging.FromContext(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		res := h.Persister.UpsertAll(bg, batch)
		logger.Debug("search results persisted",
			slog.Int("inserted", res.Inserted),
			slog.Int("duplicates", res.Duplicates),
			slog.Int("errors", len(res.Errors)))
	}()
}

// Wait blocks until background upserts finish. It is called on shutdown.
func (h *Handler) Wait() {
	h.wg.Wait()
}
