// Package main provides a CLI command that routes a free-text question to
// the matching agent.
// Usage: truthlens-ask "question" [--lat X --lon Y] [--image URL] [--output json]
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
		lat, lon     float64
		imageURL     string
		outputFormat string
	)

	flag.Float64Var(&lat, "lat", 0, "Latitude for location questions")
	flag.Float64Var(&lon, "lon", 0, "Longitude for location questions")
	flag.StringVar(&imageURL, "image", "", "Image URL for media questions")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	// flag.CommandLine exits on a parse error, so err is always nil here.
	args, _ := app.ParseArgs(flag.CommandLine, os.Args[1:])
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: Question is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: truthlens-ask \"question\" [--lat X --lon Y] [--image URL] [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  truthlens-ask \"Is it true that the Eiffel Tower is moving to Rome?\"")
		fmt.Fprintln(os.Stderr, "  truthlens-ask \"What is happening near me?\" --lat 48.85 --lon 2.35")
		fmt.Fprintln(os.Stderr, "  truthlens-ask \"Is this photo real?\" --image https://example.com/a.jpg --output json")
		os.Exit(1)
	}
	req := agent.AskRequest{Query: args[0], ImageURL: imageURL}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			req.Latitude = &lat
		case "lon":
			req.Longitude = &lon
		}
	})

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	slog.SetDefault(logger)

	agents := app.NewAgents(app.NewLLM(logger, cfg), app.NewCollaborators(cfg.APIs), cache.Disabled(), cfg.Cache.TTL)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	resp, err := agents.Router.Ask(ctx, req)
	if err != nil {
		logger.Error("ask failed", slog.String("error", respond.SanitizeError(err)))
		fmt.Fprintf(os.Stderr, "Error: Ask failed: %s\n", respond.SanitizeError(err))
		os.Exit(1)
	}

	if outputFormat == "json" {
		err = outputJSON(os.Stdout, resp)
	} else {
		err = outputText(os.Stdout, resp)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode output: %v\n", err)
		os.Exit(1)
	}
}

// outputText prints which agent answered followed by its result.
func outputText(w io.Writer, resp *agent.AskResponse) error {
	fmt.Fprintf(w, "Question: %s\n", resp.Query)
	fmt.Fprintf(w, "Routed to: %s (%s)\n\n", resp.Agent, resp.QueryType)

	body, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", body)
	return nil
}

// outputJSON prints the full response as indented JSON.
func outputJSON(w io.Writer, resp *agent.AskResponse) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}
