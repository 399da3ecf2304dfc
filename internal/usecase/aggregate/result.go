package aggregate

import (
	"encoding/json"
	"time"

	"haber-radar/internal/domain/entity"
)

// Result is the outcome of one aggregation call. Per-source failures never
// fail the call; they are listed in Failures.
type Result struct {
	Success  bool
	Items    []entity.NewsItem
	Count    int
	Duration time.Duration
	Failures []SourceFailure
}

type resultJSON struct {
	Success    bool              `json:"success"`
	Items      []entity.NewsItem `json:"items"`
	Count      int               `json:"count"`
	DurationMs int64             `json:"durationMs"`
	Failures   []SourceFailure   `json:"failures,omitempty"`
}

// MarshalJSON renders Duration as durationMs.
func (r Result) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = []entity.NewsItem{}
	}
	return json.Marshal(resultJSON{
		Success:    r.Success,
		Items:      items,
		Count:      r.Count,
		DurationMs: r.Duration.Milliseconds(),
		Failures:   r.Failures,
	})
}

// SourceFailure records a source that contributed no items because its
// fetch failed.
type SourceFailure struct {
	SourceKey string
	Err       error
}

func (f SourceFailure) Error() string {
	return f.SourceKey + ": " + f.Err.Error()
}

func (f SourceFailure) Unwrap() error { return f.Err }

// MarshalJSON renders the failure as {"source": ..., "error": ...}.
func (f SourceFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Source string `json:"source"`
		Error  string `json:"error"`
	}{f.SourceKey, msg})
}

// Progress is reported by ScrapeAll after each source completes.
type Progress struct {
	Current    int
	Total      int
	SourceKey  string
	ItemsFound int
}

// ProgressFunc receives ScrapeAll progress. It is called from a single
// goroutine, never concurrently.
type ProgressFunc func(Progress)

// SearchOptions tunes LiveSearch. Zero values select the configured defaults.
type SearchOptions struct {
	Category        string
	Limit           int
	MaxSourceSample int
	// IncludeSearchEngineNews overrides Config.IncludeSearchEngine when set.
	IncludeSearchEngineNews *bool
}
