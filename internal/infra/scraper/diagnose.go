package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"haber-radar/internal/domain/entity"
)

// Diagnosis statuses. OK and REDIRECT count as working.
const (
	StatusOK           = "OK"
	StatusRedirect     = "REDIRECT"
	StatusHTTPError    = "HTTP_ERROR"
	StatusTimeout      = "TIMEOUT"
	StatusReadError    = "READ_ERROR"
	StatusParseError   = "PARSE_ERROR"
	StatusEmpty        = "EMPTY"
	StatusRequestError = "REQUEST_ERROR"
)

// FeedDiagnostic is the outcome of probing one registry source. It uses a
// single plain request, without the retry and breaker of RSSFetcher, so
// that the first failure is what gets reported.
type FeedDiagnostic struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	HTTPCode     int    `json:"httpCode,omitempty"`
	FeedType     string `json:"feedType,omitempty"`
	ItemCount    int    `json:"itemCount"`
	LatestDate   string `json:"latestDate,omitempty"`
	RedirectURL  string `json:"redirectUrl,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
	ResponseMs   int64  `json:"responseMs"`
}

// Working reports whether the feed can be used.
func (d FeedDiagnostic) Working() bool {
	return d.Status == StatusOK || d.Status == StatusRedirect
}

// DiagnoseFeed probes src with one GET bounded by timeout.
func DiagnoseFeed(ctx context.Context, client *http.Client, src entity.Source, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{Key: src.Key, Name: src.Name, Category: src.Category, URL: src.FeedURL}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.FeedURL, nil)
	if err != nil {
		diag.Status, diag.ErrorMessage = StatusRequestError, err.Error()
		return diag
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", feedAccept)

	resp, err := client.Do(req)
	diag.ResponseMs = time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			diag.Status, diag.ErrorMessage = StatusTimeout, fmt.Sprintf("no response within %v", timeout)
		} else {
			diag.Status, diag.ErrorMessage = StatusHTTPError, err.Error()
		}
		return diag
	}
	defer func() { _ = resp.Body.Close() }()

	diag.HTTPCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		diag.Status, diag.ErrorMessage = StatusHTTPError, resp.Status
		return diag
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		diag.Status, diag.ErrorMessage = StatusReadError, err.Error()
		return diag
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		diag.Status, diag.ErrorMessage = StatusParseError, fmt.Sprintf("%v (preview: %s)", err, preview(body, 200))
		return diag
	}
	diag.FeedType = feed.FeedType
	diag.ItemCount = len(feed.Items)
	if latest := latestPublished(feed); !latest.IsZero() {
		diag.LatestDate = latest.Format(time.RFC3339)
	}
	if diag.ItemCount == 0 {
		diag.Status, diag.ErrorMessage = StatusEmpty, "feed has no items"
		return diag
	}

	diag.Status = StatusOK
	if final := resp.Request.URL.String(); final != src.FeedURL {
		diag.Status, diag.RedirectURL = StatusRedirect, final
	}
	return diag
}

// DiagnoseAll probes every source with at most parallelism requests in
// flight. Results keep the order of sources.
func DiagnoseAll(ctx context.Context, client *http.Client, sources []entity.Source, parallelism int, timeout time.Duration) []FeedDiagnostic {
	if parallelism < 1 {
		parallelism = 1
	}
	out := make([]FeedDiagnostic, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, src := range sources {
		g.Go(func() error {
			out[i] = DiagnoseFeed(gctx, client, src, timeout)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func latestPublished(feed *gofeed.Feed) time.Time {
	var latest time.Time
	for _, it := range feed.Items {
		t := it.PublishedParsed
		if t == nil {
			t = it.UpdatedParsed
		}
		if t != nil && t.After(latest) {
			latest = *t
		}
	}
	return latest
}

func preview(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
