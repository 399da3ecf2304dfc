package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/infra/scraper"
)

func TestFixedSources(t *testing.T) {
	sources := []entity.Source{
		{Key: "a", FeedURL: "https://a.example/rss", Category: "Ekonomi", Name: "A"},
		{Key: "b", FeedURL: "https://b.example/rss", Category: "Spor", Name: "B"},
		{Key: "c", FeedURL: "http://c.example/rss", Category: "Gündem", Name: "C"},
	}
	diags := []scraper.FeedDiagnostic{
		{Key: "a", Status: scraper.StatusOK},
		{Key: "b", Status: scraper.StatusHTTPError, HTTPCode: 404},
		{Key: "c", Status: scraper.StatusRedirect, RedirectURL: "https://c.example/feed"},
	}

	got := fixedSources(sources, diags)
	assert.Equal(t, []entity.Source{
		sources[0],
		{Key: "c", FeedURL: "https://c.example/feed", Category: "Gündem", Name: "C"},
	}, got)
	assert.Equal(t, "http://c.example/rss", sources[2].FeedURL, "input must not be modified")
}

func TestWriteReport(t *testing.T) {
	diags := []scraper.FeedDiagnostic{
		{Key: "a", Category: "Ekonomi", URL: "https://a.example/rss", Status: scraper.StatusOK, FeedType: "rss", ItemCount: 20},
		{Key: "b", Category: "Spor", URL: "https://b.example/rss", Status: scraper.StatusTimeout, ErrorMessage: "no response within 30s"},
	}

	var sb strings.Builder
	writeReport(&sb, diags, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	out := sb.String()

	assert.Contains(t, out, "Sources: 2")
	assert.Contains(t, out, "working: 1 (50.0%)")
	assert.Contains(t, out, "TIMEOUT")
	working, broken, ok := strings.Cut(out, "\nBROKEN")
	assert.True(t, ok)
	assert.Contains(t, working, "a [Ekonomi]")
	assert.Contains(t, broken, "b [Spor]")
	assert.NotContains(t, broken, "a [Ekonomi]")
}
