// Package main runs one live news search from the terminal.
// Usage: haber-search "keyword" [--category NAME] [--limit N] [--search-engine=false] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"haber-radar/internal/infra/scraper"
	"haber-radar/internal/observability/logging"
	"haber-radar/internal/registry"
	"haber-radar/internal/usecase/aggregate"
	"haber-radar/pkg/config"
)

func main() {
	var (
		category     string
		limit        int
		sample       int
		searchEngine bool
		outputFormat string
		timeout      time.Duration
	)

	flag.StringVar(&category, "category", "", "Restrict sources and results to one category")
	flag.IntVar(&limit, "limit", 20, "Maximum number of results")
	flag.IntVar(&sample, "sample", 0, "Maximum number of sources to visit (0 uses AGG_MAX_SOURCE_SAMPLE)")
	flag.BoolVar(&searchEngine, "search-engine", true, "Also query the search-engine news feed")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Upper bound of the whole search")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: keyword is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: haber-search \"keyword\" [--category NAME] [--limit N] [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  haber-search dolar")
		fmt.Fprintln(os.Stderr, "  haber-search \"altın fiyatı\" --category Ekonomi --limit 10")
		fmt.Fprintln(os.Stderr, "  haber-search deprem --search-engine=false --output json")
		os.Exit(1)
	}
	keyword := args[0]

	logger := initLogger()

	reg, err := registry.Load(config.GetEnvString("SOURCES_FILE", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load sources: %v\n", err)
		os.Exit(1)
	}

	aggCfg := aggregate.LoadConfigFromEnv(logger)
	client := &http.Client{Timeout: aggCfg.FeedTimeout}
	svc := aggregate.NewService(reg,
		scraper.NewRSSFetcher(client),
		scraper.NewGoogleNewsSearcher(client, aggCfg.SearchEngineRPS),
		aggregate.WithConfig(aggCfg),
		aggregate.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := svc.LiveSearch(ctx, keyword, aggregate.SearchOptions{
		Category:                category,
		Limit:                   limit,
		MaxSourceSample:         sample,
		IncludeSearchEngineNews: &searchEngine,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: search failed: %v\n", err)
		os.Exit(1)
	}

	if outputFormat == "json" {
		outputJSON(res)
	} else {
		outputText(keyword, res)
	}
}

func outputText(keyword string, res *aggregate.Result) {
	fmt.Printf("Results for %q: %d in %v\n", keyword, res.Count, res.Duration.Round(time.Millisecond))
	if n := len(res.Failures); n > 0 {
		fmt.Printf("Failed sources: %d\n", n)
	}
	fmt.Println()

	if res.Count == 0 {
		fmt.Println("No news found.")
		return
	}

	for i, it := range res.Items {
		fmt.Printf("%d. %s\n", i+1, it.Title)
		fmt.Printf("   %s | %s | %s\n", it.Source, it.Category, it.PublishedAt.Format("2006-01-02 15:04"))
		fmt.Printf("   Score: %.1f\n", it.RelevanceScore)
		fmt.Printf("   URL: %s\n", it.URL)
		fmt.Println()
	}
}

func outputJSON(res *aggregate.Result) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

// initLogger logs to stderr so that stdout carries only results.
func initLogger() *slog.Logger {
	logger := logging.New(os.Stderr, config.GetEnvString("LOG_LEVEL", "warn"), "text")
	slog.SetDefault(logger)
	return logger
}
