package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/resilience/circuitbreaker"
	"haber-radar/internal/resilience/retry"
	"haber-radar/internal/usecase/aggregate"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// GoogleNewsSearchURL is the Google News RSS search endpoint.
const GoogleNewsSearchURL = "https://news.google.com/rss/search"

// GoogleNewsSearcher implements aggregate.NewsSearcher over the Google News
// RSS search feed. Requests are rate limited and share one circuit breaker.
type GoogleNewsSearcher struct {
	feeds   *RSSFetcher
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	baseURL string
	hl      string
	gl      string
	ceid    string
	window  string
}

// SearcherOption configures a GoogleNewsSearcher.
type SearcherOption func(*GoogleNewsSearcher)

// WithSearchURL overrides the search endpoint.
func WithSearchURL(u string) SearcherOption {
	return func(s *GoogleNewsSearcher) { s.baseURL = u }
}

// WithLocale sets the hl, gl and ceid parameters. The default is Turkish.
func WithLocale(hl, gl, ceid string) SearcherOption {
	return func(s *GoogleNewsSearcher) { s.hl, s.gl, s.ceid = hl, gl, ceid }
}

// WithTimeWindow restricts results with the "when:" operator, e.g. "1d".
// An empty window disables the restriction.
func WithTimeWindow(w string) SearcherOption {
	return func(s *GoogleNewsSearcher) { s.window = w }
}

// WithSearchRetry replaces the retry configuration.
func WithSearchRetry(cfg retry.Config) SearcherOption {
	return func(s *GoogleNewsSearcher) { s.retry = cfg }
}

// NewGoogleNewsSearcher creates a searcher that issues at most rps requests
// per second.
func NewGoogleNewsSearcher(client *http.Client, rps float64, opts ...SearcherOption) *GoogleNewsSearcher {
	if rps <= 0 {
		rps = 1
	}
	cbCfg := circuitbreaker.SearchEngineConfig()
	cbCfg.OnStateChange = metrics.RecordCircuitBreakerState

	s := &GoogleNewsSearcher{
		feeds:   NewRSSFetcher(client),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: circuitbreaker.New(cbCfg),
		retry:   retry.SearchEngineConfig(),
		baseURL: GoogleNewsSearchURL,
		hl:      "tr",
		gl:      "TR",
		ceid:    "TR:tr",
		window:  "2d",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the news entries for query. Titles of the form
// "Headline - Publisher" are split into Title and Source.
func (s *GoogleNewsSearcher) Search(ctx context.Context, query string) ([]aggregate.RawItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	u, err := s.searchURL(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.feeds.timeout)
	defer cancel()

	return retry.Do(ctx, s.retry, func() ([]aggregate.RawItem, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search rate limiter: %w", err)
		}
		items, err := circuitbreaker.Run(s.breaker, func() ([]aggregate.RawItem, error) {
			return s.feeds.fetchItems(ctx, u)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("search engine circuit breaker open, request rejected",
					slog.String("query", query))
			}
			return nil, err
		}
		for i := range items {
			items[i].Title, items[i].Source = splitPublisher(items[i].Title)
		}
		return items, nil
	})
}

func (s *GoogleNewsSearcher) searchURL(query string) (*url.URL, error) {
	u, err := parseFeedURL(s.baseURL)
	if err != nil {
		return nil, err
	}
	q := query
	if s.window != "" {
		q += " when:" + s.window
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("hl", s.hl)
	v.Set("gl", s.gl)
	v.Set("ceid", s.ceid)
	u.RawQuery = v.Encode()
	return u, nil
}

// splitPublisher splits "Headline - Publisher" at the last " - ".
func splitPublisher(title string) (headline, publisher string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}
