// Package main probes every registry feed once and reports which ones work.
// Usage: haber-diagnose [--parallel N] [--timeout D] [--json FILE] [--fixed FILE]
//
// --fixed writes a sources file that keeps only working feeds, with
// redirected URLs replaced by their final location.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/infra/scraper"
	"haber-radar/internal/observability/logging"
	"haber-radar/internal/registry"
	"haber-radar/pkg/config"
)

func main() {
	var (
		parallel  int
		timeout   time.Duration
		jsonPath  string
		fixedPath string
	)
	flag.IntVar(&parallel, "parallel", 4, "Concurrent feed requests")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Per-feed request timeout")
	flag.StringVar(&jsonPath, "json", "", "Also write the results as JSON to this file")
	flag.StringVar(&fixedPath, "fixed", "", "Write a sources file without broken feeds to this file")
	flag.Parse()

	logger := logging.New(os.Stderr, config.GetEnvString("LOG_LEVEL", "info"), "text")
	slog.SetDefault(logger)

	reg, err := registry.Load(config.GetEnvString("SOURCES_FILE", ""))
	if err != nil {
		logger.Error("failed to load sources", slog.Any("error", err))
		os.Exit(1)
	}

	sources := reg.All()
	logger.Info("diagnosing feed sources", slog.Int("count", len(sources)))

	client := &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
	}
	diags := scraper.DiagnoseAll(context.Background(), client, sources, parallel, timeout)

	writeReport(os.Stdout, diags, time.Now())

	if jsonPath != "" {
		if err := writeJSON(jsonPath, diags); err != nil {
			logger.Error("failed to write JSON report", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("JSON report written", slog.String("path", jsonPath))
	}
	if fixedPath != "" {
		if err := writeFixed(fixedPath, sources, diags); err != nil {
			logger.Error("failed to write fixed sources", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("fixed sources written", slog.String("path", fixedPath))
	}
}

func writeReport(w io.Writer, diags []scraper.FeedDiagnostic, now time.Time) {
	working := 0
	byStatus := make(map[string]int)
	for _, d := range diags {
		byStatus[d.Status]++
		if d.Working() {
			working++
		}
	}
	pct := func(n int) float64 {
		if len(diags) == 0 {
			return 0
		}
		return float64(n) / float64(len(diags)) * 100
	}

	fmt.Fprintf(w, "Feed diagnostic report, %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(w, "Sources: %d\n", len(diags))
	fmt.Fprintf(w, "  working: %d (%.1f%%)\n", working, pct(working))
	fmt.Fprintf(w, "  broken:  %d (%.1f%%)\n\n", len(diags)-working, pct(len(diags)-working))

	statuses := make([]string, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-14s %d\n", s, byStatus[s])
	}

	fmt.Fprintln(w, "\nWORKING")
	for _, d := range diags {
		if !d.Working() {
			continue
		}
		fmt.Fprintf(w, "%s [%s] %s\n", d.Key, d.Category, d.URL)
		fmt.Fprintf(w, "  %s, %d items, latest %s, %dms\n", d.FeedType, d.ItemCount, d.LatestDate, d.ResponseMs)
		if d.RedirectURL != "" {
			fmt.Fprintf(w, "  redirected to %s\n", d.RedirectURL)
		}
	}

	fmt.Fprintln(w, "\nBROKEN")
	for _, d := range diags {
		if d.Working() {
			continue
		}
		fmt.Fprintf(w, "%s [%s] %s\n", d.Key, d.Category, d.URL)
		fmt.Fprintf(w, "  %s (HTTP %d): %s\n", d.Status, d.HTTPCode, d.ErrorMessage)
	}
}

func writeJSON(path string, diags []scraper.FeedDiagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

func writeFixed(path string, sources []entity.Source, diags []scraper.FeedDiagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return registry.Encode(f, fixedSources(sources, diags))
}

// fixedSources keeps the working sources, in order, and points redirected
// ones at their final URL. diags must be parallel to sources.
func fixedSources(sources []entity.Source, diags []scraper.FeedDiagnostic) []entity.Source {
	out := make([]entity.Source, 0, len(sources))
	for i, src := range sources {
		d := diags[i]
		if !d.Working() {
			continue
		}
		if d.RedirectURL != "" {
			src.FeedURL = d.RedirectURL
		}
		out = append(out, src)
	}
	return out
}
