// Package aggregate implements the live news aggregation engine: concurrent
// multi-source fetch, keyword filtering, relevance scoring, cross-source
// deduplication and the full sweep used by the scheduled worker.
package aggregate

import (
	"context"
	"errors"
	"time"

	"haber-radar/internal/domain/entity"
)

// RawItem is one parsed feed entry before validation.
// Fetchers resolve Link and ImageURL against the feed origin; either may
// still be empty or relative when the feed gave nothing usable.
type RawItem struct {
	Title       string
	Description string
	Link        string
	PublishedAt time.Time
	ImageURL    string
	// Source is the publisher name when the feed carries one per item
	// (search-engine results); empty for ordinary feeds.
	Source string
}

// FeedFetcher fetches and parses one syndication feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]RawItem, error)
}

// NewsSearcher queries a general search-engine news feed for a term.
type NewsSearcher interface {
	Search(ctx context.Context, query string) ([]RawItem, error)
}

// ImageEnricher looks up a representative image for an article page.
// Implementations must refuse private addresses, bound the response size
// and honour ctx. An empty string with a nil error means no image was found.
type ImageEnricher interface {
	FetchImage(ctx context.Context, pageURL string) (string, error)
}

// Sampler picks at most n sources out of candidates. Implementations must
// not modify candidates.
type Sampler func(candidates []entity.Source, n int) []entity.Source

// Sentinel errors for aggregation and its collaborators.
var (
	// ErrFeedFetchFailed indicates that a feed could not be fetched or parsed.
	ErrFeedFetchFailed = errors.New("failed to fetch feed")

	// ErrInvalidURL indicates a URL that is malformed or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates a URL that resolves to a private, loopback or link-local address.
	ErrPrivateIP = errors.New("private IP address not allowed")

	// ErrBodyTooLarge indicates a response body above the configured limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTooManyRedirects indicates a redirect chain above the configured limit.
	ErrTooManyRedirects = errors.New("too many redirects")
)
