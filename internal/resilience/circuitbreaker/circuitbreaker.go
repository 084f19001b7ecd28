// Package circuitbreaker guards the external collaborators (LLM providers,
// news feeds, search, fact-check, geocoding, price feeds) with
// sony/gobreaker so a failing upstream is not hammered.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned by Call when the breaker rejects the request.
var ErrOpen = errors.New("circuit breaker open")

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string
	// MaxRequests is the number of probes let through while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts; zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that trips the breaker.
	FailureThreshold float64
	// MinRequests is the sample size needed before the ratio counts.
	MinRequests uint32
}

// shouldTrip reports whether counts cross the configured failure ratio.
func (c Config) shouldTrip(counts gobreaker.Counts) bool {
	if counts.Requests == 0 || counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureThreshold
}

// DefaultConfig returns a default configuration for circuit breakers.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// LLMConfig returns configuration for LLM provider calls.
// provider is used as the breaker name suffix ("llm-claude", "llm-openai").
func LLMConfig(provider string) Config {
	return DefaultConfig("llm-" + provider)
}

// NewsFeedConfig returns configuration for RSS news search.
// The feed is cheap and usually healthy, so the breaker is more tolerant.
func NewsFeedConfig() Config {
	return Config{
		Name:             "news-feed",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          120 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      10,
	}
}

// LookupAPIConfig returns configuration for keyed JSON lookup APIs
// (web search, fact-check, trending headlines, metals prices).
func LookupAPIConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          5 * time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      4,
	}
}

// GeocodeConfig returns configuration for the reverse geocoding service.
func GeocodeConfig() Config {
	return Config{
		Name:             "geocode",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          2 * time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

// ArticleFetchConfig returns configuration for fetching arbitrary article pages.
// Pages fail for site-specific reasons, so the ratio is high.
func ArticleFetchConfig() Config {
	return Config{
		Name:             "article-fetch",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          10 * time.Minute,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker is a named gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg. State changes are logged at warn level.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: cfg.shouldTrip,
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Call runs fn through cb. Rejections while open or half-open are reported
// as ErrOpen; errors from fn pass through unchanged.
func Call[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		slog.Warn("circuit breaker rejected request",
			slog.String("circuit", cb.name),
			slog.String("state", cb.State().String()))
		var zero T
		return zero, ErrOpen
	case err != nil:
		var zero T
		return zero, err
	}
	return out.(T), nil
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

// IsOpen reports whether requests are currently being rejected outright.
func (cb *CircuitBreaker) IsOpen() bool { return cb.State() == gobreaker.StateOpen }

// Counts returns the request tallies for the current generation.
func (cb *CircuitBreaker) Counts() gobreaker.Counts { return cb.breaker.Counts() }
