package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/resilience/circuitbreaker"
	"haber-radar/internal/resilience/retry"
	"haber-radar/internal/usecase/aggregate"
)

// imageSelectors are tried in order; the first non-empty value wins.
var imageSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="og:image:secure_url"]`, "content"},
	{`meta[property="og:image"]`, "content"},
	{`meta[name="og:image"]`, "content"},
	{`meta[name="twitter:image"]`, "content"},
	{`meta[name="twitter:image:src"]`, "content"},
	{`meta[property="twitter:image"]`, "content"},
	{`link[rel="image_src"]`, "href"},
}

// OGImageFetcher finds the representative image of an article page from
// its Open Graph or Twitter card meta tags.
type OGImageFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	config  ImageFetchConfig
}

var _ aggregate.ImageEnricher = (*OGImageFetcher)(nil)

// NewOGImageFetcher creates a fetcher. Redirects are followed up to
// cfg.MaxRedirects and every redirect target is validated like the
// original URL.
func NewOGImageFetcher(cfg ImageFetchConfig) *OGImageFetcher {
	f := &OGImageFetcher{
		config: cfg,
		retry:  retry.PageFetchConfig(),
	}

	f.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConnsPerHost: 4,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: stopped after %d redirects", aggregate.ErrTooManyRedirects, cfg.MaxRedirects)
			}
			return validateURL(req.Context(), req.URL.String(), cfg.DenyPrivateIPs)
		},
	}

	cbCfg := circuitbreaker.PageFetchConfig()
	cbCfg.OnStateChange = metrics.RecordCircuitBreakerState
	f.breaker = circuitbreaker.New(cbCfg)

	return f
}

// FetchImage returns the absolute image URL advertised by pageURL, or ""
// when the page has none.
func (f *OGImageFetcher) FetchImage(ctx context.Context, pageURL string) (string, error) {
	if err := validateURL(ctx, pageURL, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	image, err := retry.Do(ctx, f.retry, func() (string, error) {
		return circuitbreaker.Run(f.breaker, func() (string, error) {
			return f.fetch(ctx, pageURL)
		})
	})
	if err != nil {
		if f.breaker.IsOpen() {
			slog.Debug("page fetch circuit open", slog.String("url", pageURL))
		}
		return "", fmt.Errorf("fetch image %s: %w", pageURL, err)
	}
	return image, nil
}

func (f *OGImageFetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", aggregate.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.6")

	resp, err := f.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && (errors.Is(err, aggregate.ErrPrivateIP) ||
			errors.Is(err, aggregate.ErrTooManyRedirects) || errors.Is(err, aggregate.ErrInvalidURL)) {
			return "", urlErr.Err
		}
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return "", nil
	}

	// Meta tags sit in <head>; the rest of an oversized page is ignored.
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.config.MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	raw := findImage(doc)
	if raw == "" {
		return "", nil
	}
	return resolveImage(resp.Request.URL, raw), nil
}

func findImage(doc *goquery.Document) string {
	for _, s := range imageSelectors {
		var found string
		doc.Find(s.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			v := strings.TrimSpace(sel.AttrOr(s.attr, ""))
			if v == "" || strings.HasPrefix(v, "data:") {
				return true
			}
			found = v
			return false
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// resolveImage makes raw absolute against base. Protocol-relative and
// root-relative values are common in Turkish news sites.
func resolveImage(base *url.URL, raw string) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
