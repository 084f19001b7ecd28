// Package main provides a CLI command that lists trending headlines or
// searches recent news.
// Usage: truthlens-search ["query"] [--category C] [--limit N] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"truthlens/internal/app"
	"truthlens/internal/config"
	"truthlens/internal/handler/http/respond"
	"truthlens/internal/infra/cache"
	"truthlens/internal/observability/logging"
	"truthlens/internal/usecase/agent"
)

func main() {
	var (
		category     string
		limit        int
		outputFormat string
	)

	flag.StringVar(&category, "category", "general", "Headline category when no query is given")
	flag.IntVar(&limit, "limit", 10, "Maximum number of articles (1 to 100)")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	// flag.CommandLine exits on a parse error, so err is always nil here.
	args, _ := app.ParseArgs(flag.CommandLine, os.Args[1:])

	req := agent.NewsRequest{Mode: agent.ModeTrending, Category: category, Limit: limit}
	if len(args) > 0 {
		req = agent.NewsRequest{Mode: agent.ModeSearch, Query: args[0], Limit: limit}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	slog.SetDefault(logger)

	agents := app.NewAgents(app.NewLLM(logger, cfg), app.NewCollaborators(cfg.APIs), cache.Disabled(), cfg.Cache.TTL)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := agents.News.Fetch(ctx, req)
	if err != nil {
		logger.Error("news fetch failed", slog.String("error", respond.SanitizeError(err)))
		fmt.Fprintf(os.Stderr, "Error: %s\n", respond.SanitizeError(err))
		os.Exit(1)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}
	outputText(os.Stdout, resp)
}

// outputText prints the articles in human-readable format.
func outputText(w io.Writer, resp *agent.NewsResponse) {
	switch resp.Mode {
	case agent.ModeSearch:
		fmt.Fprintf(w, "Search: %s\n", resp.Query)
	default:
		fmt.Fprintf(w, "Trending: %s\n", resp.Category)
	}
	fmt.Fprintf(w, "Source: %s, %d articles", resp.Source, resp.Total)
	if resp.Mock {
		fmt.Fprint(w, " (sample data)")
	}
	fmt.Fprint(w, "\n\n")

	for i, a := range resp.Articles {
		fmt.Fprintf(w, "%d. %s\n", i+1, a.Title)
		if a.SourceName != "" {
			fmt.Fprintf(w, "   %s\n", a.SourceName)
		}
		if a.URL != "" {
			fmt.Fprintf(w, "   URL: %s\n", a.URL)
		}
	}
}
