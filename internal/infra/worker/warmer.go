package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"truthlens/internal/handler/http/respond"
)

// maxParallelWarms bounds concurrent upstream calls in one run.
const maxParallelWarms = 4

// MetalWarmer refreshes the cached metal prices.
type MetalWarmer interface {
	Warm(ctx context.Context) error
}

// TrendingWarmer refreshes one cached trending page.
type TrendingWarmer interface {
	WarmTrending(ctx context.Context, category string, limit int) error
}

// RunStats summarizes one warming run.
type RunStats struct {
	Warmed   int
	Failed   int
	Duration time.Duration
}

// Status is "success" when every key was refreshed, "failure" when none
// was and "partial" otherwise.
func (s RunStats) Status() string {
	switch {
	case s.Failed == 0:
		return "success"
	case s.Warmed == 0:
		return "failure"
	default:
		return "partial"
	}
}

// Warmer refreshes the metal prices and the trending page of each category.
type Warmer struct {
	metals     MetalWarmer
	news       TrendingWarmer
	categories []string
	limit      int
	timeout    time.Duration
	metrics    *Metrics
	logger     *slog.Logger
}

// WarmerOptions configures NewWarmer. A nil Metals or News skips that data.
type WarmerOptions struct {
	Metals     MetalWarmer
	News       TrendingWarmer
	Categories []string
	Limit      int
	Timeout    time.Duration
	Metrics    *Metrics
	Logger     *slog.Logger
}

// NewWarmer creates a Warmer.
func NewWarmer(opts WarmerOptions) *Warmer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Warmer{
		metals:     opts.Metals,
		news:       opts.News,
		categories: opts.Categories,
		limit:      opts.Limit,
		timeout:    opts.Timeout,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Run refreshes every key once. A failing key is logged and counted; the
// others are still refreshed.
func (w *Warmer) Run(ctx context.Context) RunStats {
	start := time.Now()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	var warmed, failed atomic.Int64
	attempt := func(name string, fn func(context.Context) error) func() error {
		return func() error {
			if err := fn(ctx); err != nil {
				failed.Add(1)
				w.logger.Warn("cache warm failed",
					slog.String("key", name),
					slog.String("error", respond.SanitizeError(err)))
				return nil
			}
			warmed.Add(1)
			return nil
		}
	}

	var g errgroup.Group
	g.SetLimit(maxParallelWarms)
	if w.metals != nil {
		g.Go(attempt("metal_prices", w.metals.Warm))
	}
	if w.news != nil {
		for _, category := range w.categories {
			g.Go(attempt("trending_"+category, func(ctx context.Context) error {
				return w.news.WarmTrending(ctx, category, w.limit)
			}))
		}
	}
	_ = g.Wait()

	stats := RunStats{
		Warmed:   int(warmed.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}
	if w.metrics != nil {
		w.metrics.RecordRun(stats)
	}
	w.logger.Info("cache warm completed",
		slog.String("status", stats.Status()),
		slog.Int("warmed", stats.Warmed),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	return stats
}
