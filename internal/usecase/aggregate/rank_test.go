package aggregate_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/usecase/aggregate"
)

func TestRecencyBonus(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want int
	}{
		{-time.Hour, 20},
		{0, 20},
		{59 * time.Minute, 20},
		{time.Hour, 10},
		{5*time.Hour + 59*time.Minute, 10},
		{6 * time.Hour, 5},
		{23 * time.Hour, 5},
		{24 * time.Hour, 0},
		{72 * time.Hour, 0},
	}
	for _, tt := range tests {
		if got := aggregate.RecencyBonus(tt.age); got != tt.want {
			t.Errorf("RecencyBonus(%v) = %d, want %d", tt.age, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		item entity.NewsItem
		want float64
	}{
		{
			name: "title and description occurrences",
			item: entity.NewsItem{
				Title:       "Enflasyon rakamları açıklandı",
				Description: "Yıllık enflasyon beklentilerin altında kaldı, enflasyonla mücadele sürüyor.",
				PublishedAt: now.Add(-30 * time.Hour),
			},
			want: 10 + 2*2,
		},
		{
			name: "search engine bonus and recency",
			item: entity.NewsItem{
				Title:            "TÜFE verisi piyasaları hareketlendirdi",
				PublishedAt:      now.Add(-10 * time.Minute),
				FromSearchEngine: true,
			},
			want: 10 + 5 + 20,
		},
		{
			name: "no occurrences",
			item: entity.NewsItem{Title: "Hava durumu raporu yayımlandı", PublishedAt: now.Add(-2 * time.Hour)},
			want: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aggregate.Score(tt.item, "enflasyon", now); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://haber.example/a/b", "https://haber.example/a/b"},
		{"HTTPS://Haber.Example/a/b/", "https://haber.example/a/b"},
		{"https://haber.example/a/b#yorumlar", "https://haber.example/a/b"},
		{"https://haber.example/", "https://haber.example/"},
		{"https://haber.example/a?id=1", "https://haber.example/a?id=1"},
	}
	for _, tt := range tests {
		if got := aggregate.CanonicalURL(tt.in); got != tt.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedup_KeepsFirst(t *testing.T) {
	items := []entity.NewsItem{
		{Title: "first", URL: "https://x.example/1", RelevanceScore: 30},
		{Title: "other", URL: "https://x.example/2", RelevanceScore: 25},
		{Title: "second", URL: "https://x.example/1/", RelevanceScore: 10},
	}
	got := aggregate.Dedup(items)

	want := []entity.NewsItem{items[0], items[1]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedup() mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, aggregate.Dedup(nil))
}

func TestResult_MarshalJSON(t *testing.T) {
	res := aggregate.Result{
		Success:  true,
		Duration: 1500 * time.Millisecond,
		Failures: []aggregate.SourceFailure{{SourceKey: "ntv", Err: errors.New("timeout")}},
	}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"items": [],
		"count": 0,
		"durationMs": 1500,
		"failures": [{"source": "ntv", "error": "timeout"}]
	}`, string(b))
}

func TestSourceFailure_Unwrap(t *testing.T) {
	f := aggregate.SourceFailure{SourceKey: "trt", Err: aggregate.ErrMalformedFeed}
	assert.True(t, errors.Is(f, aggregate.ErrMalformedFeed))
	assert.Equal(t, "trt: malformed feed", f.Error())
}

func TestRandomSampler(t *testing.T) {
	candidates := []entity.Source{src("a", ""), src("b", ""), src("c", ""), src("d", "")}

	got := aggregate.RandomSampler(candidates, 2)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].Key, got[1].Key)
	for _, s := range got {
		assert.Contains(t, []string{"a", "b", "c", "d"}, s.Key)
	}

	all := aggregate.RandomSampler(candidates, 10)
	assert.Equal(t, candidates, all)
	assert.Equal(t, "a", candidates[0].Key, "input untouched")
}
