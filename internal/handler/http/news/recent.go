package news

import (
	"errors"
	"net/http"
	"time"

	"haber-radar/internal/domain/category"
	"haber-radar/internal/domain/entity"
	"haber-radar/internal/handler/http/respond"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// StoredDTO is a persisted news record as served by /news/recent.
type StoredDTO struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	Keywords    []string  `json:"keywords,omitempty"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// Recent handles GET /news/recent?category=&limit=.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		respond.SafeError(w, http.StatusServiceUnavailable, errors.New("storage not configured"))
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	switch {
	case limit < 0:
		respond.Error(w, &entity.ValidationError{Field: "limit", Message: "limit must not be negative"})
		return
	case limit == 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}

	cat := r.URL.Query().Get("category")
	if cat != "" {
		canonical := category.Canonical(cat)
		if canonical == "" {
			respond.Error(w, &entity.ValidationError{Field: "category", Message: "unknown category: " + cat})
			return
		}
		cat = canonical
	}

	rows, err := h.Store.ListRecent(r.Context(), cat, limit)
	if err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]StoredDTO, 0, len(rows))
	for _, n := range rows {
		out = append(out, StoredDTO{
			Title:       n.Title,
			Description: n.Description,
			URL:         n.URL,
			ImageURL:    n.ImageURL,
			PublishedAt: n.PublishedAt,
			Source:      n.Source,
			Category:    n.Category,
			Keywords:    n.Keywords,
			ScrapedAt:   n.ScrapedAt,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   out,
		"count":   len(out),
	})
}

// Categories handles GET /categories.
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{"categories": category.Categories()})
}
