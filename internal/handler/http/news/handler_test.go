package news_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/handler/http/news"
	"haber-radar/internal/usecase/aggregate"
	"haber-radar/internal/usecase/persist"
)

var published = time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

type fakeAgg struct {
	mu        sync.Mutex
	searches  int
	lastKW    string
	lastOpts  aggregate.SearchOptions
	lastCat   string
	lastLimit int
	result    *aggregate.Result
	err       error
}

func (f *fakeAgg) LiveSearch(ctx context.Context, kw string, opts aggregate.SearchOptions) (*aggregate.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	f.lastKW, f.lastOpts = kw, opts
	return f.result, f.err
}

func (f *fakeAgg) ScrapeByCategory(_ context.Context, cat string, limit int) (*aggregate.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCat, f.lastLimit = cat, limit
	return f.result, f.err
}

type fakePersister struct {
	mu    sync.Mutex
	items []entity.NewsItem
	ctxOK bool
}

func (p *fakePersister) UpsertAll(ctx context.Context, items []entity.NewsItem) persist.UpsertResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, items...)
	p.ctxOK = ctx.Err() == nil
	return persist.UpsertResult{Inserted: len(items)}
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = body
}

type fakeStore struct {
	gotCat   string
	gotLimit int
	rows     []*entity.StoredNews
	err      error
}

func (s *fakeStore) ListRecent(_ context.Context, cat string, limit int) ([]*entity.StoredNews, error) {
	s.gotCat, s.gotLimit = cat, limit
	return s.rows, s.err
}

func okResult() *aggregate.Result {
	items := []entity.NewsItem{{
		Title: "Dolar rekor kırdı", URL: "https://example.com/1", PublishedAt: published,
		Source: "Örnek", Category: "Ekonomi", FeedKey: "ornek", Keywords: []string{"dolar", "usd"},
		RelevanceScore: 30,
	}}
	return &aggregate.Result{Success: true, Items: items, Count: 1, Duration: 1500 * time.Millisecond}
}

func newMux(h *news.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	news.Register(mux, h, nil)
	return mux
}

func get(t *testing.T, mux http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return rr, body
}

func TestSearch_OK(t *testing.T) {
	agg := &fakeAgg{result: okResult()}
	rr, body := get(t, newMux(&news.Handler{Agg: agg}), "/news/search?q=dolar&category=Ekonomi&limit=20&searchEngine=false")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(1500), body["durationMs"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(30), items[0].(map[string]any)["relevanceScore"])

	assert.Equal(t, "dolar", agg.lastKW)
	assert.Equal(t, "Ekonomi", agg.lastOpts.Category)
	assert.Equal(t, 20, agg.lastOpts.Limit)
	require.NotNil(t, agg.lastOpts.IncludeSearchEngineNews)
	assert.False(t, *agg.lastOpts.IncludeSearchEngineNews)
}

func TestSearch_BadParams(t *testing.T) {
	mux := newMux(&news.Handler{Agg: &fakeAgg{result: okResult()}})

	rr, body := get(t, mux, "/news/search?q=dolar&limit=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "limit must be an integer", body["error"])

	rr, _ = get(t, mux, "/news/search?q=dolar&searchEngine=maybe")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearch_ValidationErrorIs400(t *testing.T) {
	agg := &fakeAgg{err: fmt.Errorf("live search: %w", &entity.ValidationError{Field: "keyword", Message: "keyword must be at least 2 characters"})}
	rr, body := get(t, newMux(&news.Handler{Agg: agg}), "/news/search?q=a")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "keyword must be at least 2 characters", body["error"])
}

func TestSearch_InternalErrorMasked(t *testing.T) {
	agg := &fakeAgg{err: errors.New("registry corrupted")}
	rr, body := get(t, newMux(&news.Handler{Agg: agg}), "/news/search?q=dolar")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", body["error"])
}

func TestSearch_Cache(t *testing.T) {
	agg := &fakeAgg{result: okResult()}
	c := &memCache{data: map[string][]byte{}}
	mux := newMux(&news.Handler{Agg: agg, Cache: c})

	rr, _ := get(t, mux, "/news/search?q=Dolar")
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	rr, body := get(t, mux, "/news/search?q=dolar")
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1, agg.searches)
}

func TestSearch_PersistsInBackground(t *testing.T) {
	p := &fakePersister{}
	h := &news.Handler{Agg: &fakeAgg{result: okResult()}, Persister: p, PersistTimeout: time.Second}

	rr, _ := get(t, newMux(h), "/news/search?q=dolar")
	require.Equal(t, http.StatusOK, rr.Code)

	h.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.items, 1)
	assert.Equal(t, "https://example.com/1", p.items[0].URL)
	assert.True(t, p.ctxOK, "background upsert must not inherit request cancellation")
}

func TestCategory(t *testing.T) {
	agg := &fakeAgg{result: okResult()}
	rr, body := get(t, newMux(&news.Handler{Agg: agg}), "/news/category/ekonomi?limit=5")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ekonomi", agg.lastCat)
	assert.Equal(t, 5, agg.lastLimit)
}

func TestCategory_Invalid(t *testing.T) {
	agg := &fakeAgg{err: fmt.Errorf("scrape category: %w", &entity.ValidationError{Field: "category", Message: "unknown category: Uzay"})}
	rr, body := get(t, newMux(&news.Handler{Agg: agg}), "/news/category/Uzay")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "unknown category: Uzay", body["error"])
}

func TestRecent(t *testing.T) {
	store := &fakeStore{rows: []*entity.StoredNews{{
		ID: 1, Title: "Maç sonucu", URL: "https://example.com/spor/1", PublishedAt: published,
		Source: "Spor", Category: "Spor", IsActive: true, ScrapedAt: published, CreatedAt: published,
	}}}
	mux := newMux(&news.Handler{Store: store})

	rr, body := get(t, mux, "/news/recent?category=spor")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "Spor", store.gotCat)
	assert.Equal(t, 50, store.gotLimit)

	_, _ = get(t, mux, "/news/recent?limit=1000")
	assert.Equal(t, 200, store.gotLimit)

	rr, _ = get(t, mux, "/news/recent?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, body = get(t, mux, "/news/recent?category=uzay")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "unknown category: uzay", body["error"])
}

func TestRecent_NoStore(t *testing.T) {
	rr, body := get(t, newMux(&news.Handler{}), "/news/recent")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "internal server error", body["error"])
}

func TestCategories(t *testing.T) {
	rr, body := get(t, newMux(&news.Handler{}), "/categories")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, body["categories"], "Ekonomi")
}

func TestRegister_WithLimiter(t *testing.T) {
	calls := 0
	limiter := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			next.ServeHTTP(w, r)
		})
	}
	mux := http.NewServeMux()
	news.Register(mux, &news.Handler{Agg: &fakeAgg{result: okResult()}, Store: &fakeStore{}}, limiter)

	_, _ = get(t, mux, "/news/search?q=dolar")
	_, _ = get(t, mux, "/news/category/Spor")
	_, _ = get(t, mux, "/news/recent")
	assert.Equal(t, 2, calls)
}
