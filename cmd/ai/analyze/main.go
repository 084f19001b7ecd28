// Package main provides a CLI command that runs the deep credibility
// analysis on one headline.
// Usage: truthlens-analyze "headline" [--config file.yaml] [--output json]
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
	"truthlens/internal/domain/entity"
	"truthlens/internal/observability/logging"
	"truthlens/internal/usecase/analysis"
)

func main() {
	var (
		configFile   string
		outputFormat string
		timeout      time.Duration
	)

	flag.StringVar(&configFile, "config", "", "Analysis tuning YAML (overrides ANALYSIS_CONFIG_FILE)")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Maximum time for the whole analysis")
	// flag.CommandLine exits on a parse error, so err is always nil here.
	args, _ := app.ParseArgs(flag.CommandLine, os.Args[1:])
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: Headline is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: truthlens-analyze \"headline\" [--config file.yaml] [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  truthlens-analyze \"NASA confirms water on Mars\"")
		fmt.Fprintln(os.Stderr, "  truthlens-analyze \"Central bank raises rates\" --output json")
		os.Exit(1)
	}
	headline := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	slog.SetDefault(logger)

	if configFile == "" {
		configFile = cfg.AnalysisFile
	}
	analysisCfg, err := config.LoadAnalysisConfig(configFile)
	if err != nil {
		logger.Error("failed to load analysis config", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clients := app.NewCollaborators(cfg.APIs)
	pipeline := analysis.NewPipeline(app.NewLLM(logger, cfg), clients.Feed, analysisCfg)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("analyzing headline", slog.String("headline", headline))
	result := pipeline.Analyze(ctx, headline)

	if outputFormat == "json" {
		err = outputJSON(os.Stdout, result)
	} else {
		outputText(os.Stdout, result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
	if result.Failed() {
		os.Exit(1)
	}
}

// outputText prints the result in human-readable format.
func outputText(w io.Writer, r entity.AnalysisResult) {
	fmt.Fprintf(w, "Headline: %s\n", r.Headline)
	fmt.Fprintf(w, "Verdict:  %s (score %d, outcome %s)\n\n", r.Verdict, r.VerificationScore, r.Outcome)

	if r.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", r.Error)
		return
	}
	if r.AbsurdityDetected {
		fmt.Fprintf(w, "Absurdity: %s\n\n", r.AbsurdityReason)
	}
	if r.Summary != "" {
		fmt.Fprintf(w, "Summary:\n%s\n\n", r.Summary)
	}
	if len(r.KeyPoints) > 0 {
		fmt.Fprintln(w, "Key points:")
		for _, p := range r.KeyPoints {
			fmt.Fprintf(w, "  - %s\n", p)
		}
		fmt.Fprintln(w)
	}

	s := r.SourceAnalysis
	fmt.Fprintf(w, "Sources: %d (%d high quality, %d medium)\n", s.SourceCount, s.HighQualityCount, s.MediumQualityCount)
	for i, a := range r.RelatedArticles {
		fmt.Fprintf(w, "%d. %s (%s, relevance %.2f)\n", i+1, a.Title, a.SourceName, a.RelevanceScore)
		fmt.Fprintf(w, "   URL: %s\n", a.URL)
	}
	if len(r.KeywordsUsed) > 0 {
		fmt.Fprintf(w, "\nKeywords: %v\n", r.KeywordsUsed)
	}
}

// outputJSON prints the result as indented JSON.
func outputJSON(w io.Writer, r entity.AnalysisResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
