package aggregate

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/utils/text"
)

const (
	titleOccurrenceWeight       = 10
	descriptionOccurrenceWeight = 2
	searchEngineBonus           = 5
)

// Score computes the relevance of item for keyword at time now:
// 10 per title occurrence, 2 per description occurrence, 5 for
// search-engine results, plus a recency bonus.
func Score(item entity.NewsItem, keyword string, now time.Time) float64 {
	score := titleOccurrenceWeight*text.CountOccurrences(item.Title, keyword) +
		descriptionOccurrenceWeight*text.CountOccurrences(item.Description, keyword)
	if item.FromSearchEngine {
		score += searchEngineBonus
	}
	return float64(score + RecencyBonus(now.Sub(item.PublishedAt)))
}

// RecencyBonus is 20 for items younger than an hour, 10 under six hours,
// 5 under a day and 0 otherwise. Future dates count as fresh.
func RecencyBonus(age time.Duration) int {
	switch {
	case age < time.Hour:
		return 20
	case age < 6*time.Hour:
		return 10
	case age < 24*time.Hour:
		return 5
	}
	return 0
}

// sortByScore orders items by descending relevance, keeping insertion
// order on ties.
func sortByScore(items []entity.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
}

// sortByRecency orders items newest first, keeping insertion order on ties.
func sortByRecency(items []entity.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

// Dedup keeps the first item of every canonical URL. Run it after sorting
// so the best ranked duplicate survives.
func Dedup(items []entity.NewsItem) []entity.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		key := CanonicalURL(it.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// CanonicalURL returns the deduplication key of u: scheme and host
// lowercased, fragment and trailing slash removed.
func CanonicalURL(u string) string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return u
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	if len(parsed.Path) > 1 {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = ""
	}
	return parsed.String()
}

func truncate(items []entity.NewsItem, limit int) []entity.NewsItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
