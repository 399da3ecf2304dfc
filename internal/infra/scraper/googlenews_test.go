package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haber-radar/internal/infra/scraper"
)

const googleNewsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>"dolar" - Google Haberler</title>
  <item>
    <title>Dolar/TL güne yükselişle başladı - Dünya Gazetesi</title>
    <link>https://news.google.com/rss/articles/CBMi1?oc=5</link>
    <pubDate>Tue, 10 Mar 2026 07:00:00 GMT</pubDate>
    <description>&lt;a href="https://news.google.com/rss/articles/CBMi1"&gt;Dolar/TL güne yükselişle başladı&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Dünya Gazetesi&lt;/font&gt;</description>
    <source url="https://www.dunya.com">Dünya Gazetesi</source>
  </item>
  <item>
    <title>Piyasalarda son durum - dolar - euro - NTV</title>
    <link>https://news.google.com/rss/articles/CBMi2?oc=5</link>
  </item>
</channel></rss>`

func TestGoogleNewsSearcher_Search(t *testing.T) {
	var mu sync.Mutex
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.URL.Query()
		mu.Unlock()
		_, _ = w.Write([]byte(googleNewsFixture))
	}))
	defer srv.Close()

	s := scraper.NewGoogleNewsSearcher(srv.Client(), 50, scraper.WithSearchURL(srv.URL+"/rss/search"))
	items, err := s.Search(context.Background(), "  dolar ")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Dolar/TL güne yükselişle başladı", items[0].Title)
	assert.Equal(t, "Dünya Gazetesi", items[0].Source)
	assert.Equal(t, "https://news.google.com/rss/articles/CBMi1?oc=5", items[0].Link)
	assert.Equal(t, "Piyasalarda son durum - dolar - euro", items[1].Title, "split at the last separator")
	assert.Equal(t, "NTV", items[1].Source)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "dolar when:2d", got.Get("q"))
	assert.Equal(t, "tr", got.Get("hl"))
	assert.Equal(t, "TR", got.Get("gl"))
	assert.Equal(t, "TR:tr", got.Get("ceid"))
}

func TestGoogleNewsSearcher_Options(t *testing.T) {
	var q url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		_, _ = w.Write([]byte(`<rss version="2.0"><channel><title>t</title></channel></rss>`))
	}))
	defer srv.Close()

	s := scraper.NewGoogleNewsSearcher(srv.Client(), 50,
		scraper.WithSearchURL(srv.URL),
		scraper.WithLocale("en-US", "US", "US:en"),
		scraper.WithTimeWindow(""))
	items, err := s.Search(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "bitcoin", q.Get("q"))
	assert.Equal(t, "US:en", q.Get("ceid"))
}

func TestGoogleNewsSearcher_EmptyQuery(t *testing.T) {
	s := scraper.NewGoogleNewsSearcher(nil, 1, scraper.WithSearchURL("http://127.0.0.1:1"))
	items, err := s.Search(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, items)
}

func TestGoogleNewsSearcher_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<rss version="2.0"><channel><title>t</title></channel></rss>`))
	}))
	defer srv.Close()

	s := scraper.NewGoogleNewsSearcher(srv.Client(), 5, scraper.WithSearchURL(srv.URL))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := s.Search(context.Background(), "faiz")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 350*time.Millisecond, "5 rps with burst 1 spaces requests 200ms apart")
}

func TestGoogleNewsSearcher_CanceledContext(t *testing.T) {
	s := scraper.NewGoogleNewsSearcher(nil, 0.1, scraper.WithSearchURL("http://127.0.0.1:1"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// The first token is free; the second wait exceeds the deadline.
	_, _ = s.Search(ctx, "enflasyon")
	_, err := s.Search(ctx, "enflasyon")
	assert.Error(t, err)
}
