// Package scraper fetches RSS/Atom feeds and the search-engine news feed
// and turns their entries into aggregate.RawItem values. Requests go through
// retry with backoff and a circuit breaker per feed host.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/resilience/circuitbreaker"
	"haber-radar/internal/resilience/retry"
	"haber-radar/internal/usecase/aggregate"
	"haber-radar/internal/utils/text"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

const (
	// DefaultUserAgent is a desktop browser identity; several Turkish
	// publishers reject bot user agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// DefaultFeedTimeout bounds one feed request, retries included.
	DefaultFeedTimeout = 15 * time.Second

	maxFeedBodySize = 10 * 1024 * 1024 // 10MB

	feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

// RSSFetcherConfig tunes an RSSFetcher.
type RSSFetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
	Retry     retry.Config
	// Breaker returns the circuit breaker configuration for a feed host.
	Breaker func(host string) circuitbreaker.Config
}

// DefaultRSSFetcherConfig returns the production configuration. Breaker
// state changes are exported as metrics.
func DefaultRSSFetcherConfig() RSSFetcherConfig {
	return RSSFetcherConfig{
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultFeedTimeout,
		Retry:     retry.FeedFetchConfig(),
		Breaker: func(host string) circuitbreaker.Config {
			cfg := circuitbreaker.FeedFetchConfig(host)
			cfg.OnStateChange = metrics.RecordCircuitBreakerState
			return cfg
		},
	}
}

// RSSFetcher implements aggregate.FeedFetcher using gofeed.
type RSSFetcher struct {
	client    *http.Client
	breakers  *circuitbreaker.Group
	retry     retry.Config
	userAgent string
	timeout   time.Duration
}

// NewRSSFetcher creates an RSSFetcher with the default configuration.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return NewRSSFetcherWithConfig(client, DefaultRSSFetcherConfig())
}

// NewRSSFetcherWithConfig creates an RSSFetcher with cfg. Zero fields take
// their defaults.
func NewRSSFetcherWithConfig(client *http.Client, cfg RSSFetcherConfig) *RSSFetcher {
	def := DefaultRSSFetcherConfig()
	if client == nil {
		client = &http.Client{}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = def.Retry
	}
	if cfg.Breaker == nil {
		cfg.Breaker = def.Breaker
	}
	return &RSSFetcher{
		client:    client,
		breakers:  circuitbreaker.NewGroup(cfg.Breaker),
		retry:     cfg.Retry,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
}

// Fetch retrieves and parses the feed at feedURL. Item links and images are
// resolved against the origin of the (possibly redirected) feed URL.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]aggregate.RawItem, error) {
	u, err := parseFeedURL(feedURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	return retry.Do(ctx, f.retry, func() ([]aggregate.RawItem, error) {
		items, err := circuitbreaker.Run(f.breakers.Get(u.Host), func() ([]aggregate.RawItem, error) {
			return f.fetchItems(ctx, u)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("host", u.Host),
					slog.String("url", feedURL))
			}
			return nil, err
		}
		return items, nil
	})
}

// OpenHosts returns the feed hosts whose circuit is currently open.
func (f *RSSFetcher) OpenHosts() []string {
	return f.breakers.OpenKeys()
}

func (f *RSSFetcher) fetchItems(ctx context.Context, u *url.URL) ([]aggregate.RawItem, error) {
	feed, origin, err := f.fetchFeed(ctx, u)
	if err != nil {
		return nil, err
	}
	return toRawItems(feed, origin), nil
}

// fetchFeed downloads and parses one feed. It returns the parsed feed and
// the origin of the final response URL.
func (f *RSSFetcher) fetchFeed(ctx context.Context, u *url.URL) (*gofeed.Feed, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", aggregate.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", feedAccept)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.6")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodySize+1))
	if err != nil {
		return nil, nil, err
	}
	if len(body) > maxFeedBodySize {
		return nil, nil, fmt.Errorf("%w: feed exceeds %d bytes", aggregate.ErrBodyTooLarge, maxFeedBodySize)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", aggregate.ErrMalformedFeed, err)
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return feed, &url.URL{Scheme: final.Scheme, Host: final.Host, Path: "/"}, nil
}

func parseFeedURL(feedURL string) (*url.URL, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aggregate.ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", aggregate.ErrInvalidURL, feedURL)
	}
	return u, nil
}

// toRawItems converts parsed entries. The description falls back to the
// full content, and both title and description are reduced to plain text.
func toRawItems(feed *gofeed.Feed, origin *url.URL) []aggregate.RawItem {
	items := make([]aggregate.RawItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		desc := it.Description
		if desc == "" {
			desc = it.Content
		}

		var published time.Time
		switch {
		case it.PublishedParsed != nil:
			published = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			published = *it.UpdatedParsed
		}

		items = append(items, aggregate.RawItem{
			Title:       text.StripHTML(it.Title),
			Description: text.StripHTML(desc),
			Link:        resolveURL(origin, itemLink(it)),
			PublishedAt: published,
			ImageURL:    resolveURL(origin, itemImage(it)),
		})
	}
	return items
}

func itemLink(it *gofeed.Item) string {
	if it.Link != "" {
		return it.Link
	}
	for _, l := range it.Links {
		if l != "" {
			return l
		}
	}
	return ""
}

// resolveURL resolves ref against base. Absolute references are returned
// unchanged; unparsable ones yield "".
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return r.String()
	}
	if base == nil {
		return ref
	}
	return base.ResolveReference(r).String()
}
