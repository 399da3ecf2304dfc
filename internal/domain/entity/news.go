// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as NewsItem and Source, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Length limits applied to canonical items before they enter the pipeline.
const (
	MaxTitleRunes       = 300
	MaxDescriptionRunes = 500
)

// NewsItem is the canonical news record flowing through the aggregation pipeline.
// URL is always an absolute http(s) URL and acts as the unique key.
// RelevanceScore and FromSearchEngine are transient and never persisted.
type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	FeedKey     string    `json:"feedKey"`
	Keywords    []string  `json:"keywords,omitempty"`

	RelevanceScore   float64 `json:"relevanceScore,omitempty"`
	FromSearchEngine bool    `json:"-"`
}

// StoredNews is the persisted form of a NewsItem.
// CreatedAt is written on insert only; every other field is overwritten on re-fetch.
type StoredNews struct {
	ID          int64
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	Source      string
	Category    string
	FeedKey     string
	Keywords    []string
	IsActive    bool
	ScrapedAt   time.Time
	CreatedAt   time.Time
}

// ToStored maps a canonical item to its stored record, dropping transient fields.
func (n *NewsItem) ToStored(scrapedAt time.Time) *StoredNews {
	keywords := make([]string, len(n.Keywords))
	copy(keywords, n.Keywords)
	return &StoredNews{
		Title:       n.Title,
		Description: n.Description,
		URL:         n.URL,
		ImageURL:    n.ImageURL,
		PublishedAt: n.PublishedAt,
		Source:      n.Source,
		Category:    n.Category,
		FeedKey:     n.FeedKey,
		Keywords:    keywords,
		IsActive:    true,
		ScrapedAt:   scrapedAt,
		CreatedAt:   scrapedAt,
	}
}
