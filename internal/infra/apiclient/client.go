// Package apiclient is the shared outbound HTTP transport for the third-party
// lookup APIs (search, fact-check, geocode, metals, news). Each Client owns a
// token-bucket limiter, a circuit breaker and a retry policy, and records
// external call metrics.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/resilience/circuitbreaker"
	"truthlens/internal/resilience/retry"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 5 << 20

// ErrNotConfigured is returned by clients whose API key is missing.
var ErrNotConfigured = errors.New("api client not configured")

// Options configures a Client. Zero RequestsPerSecond disables rate limiting.
type Options struct {
	Name              string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	Breaker           circuitbreaker.Config
	Retry             retry.Config

	// HTTPClient overrides the default client; Timeout is ignored then.
	HTTPClient *http.Client
}

// Client performs GET requests with rate limiting, retry and circuit breaking.
type Client struct {
	name           string
	userAgent      string
	httpClient     *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// New creates a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	breaker := opts.Breaker
	if breaker.Name == "" {
		breaker = circuitbreaker.LookupAPIConfig(opts.Name)
	}
	retryCfg := opts.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.LookupAPIConfig()
	}

	return &Client{
		name:           opts.Name,
		userAgent:      opts.UserAgent,
		httpClient:     httpClient,
		limiter:        limiter,
		circuitBreaker: circuitbreaker.New(breaker),
		retryConfig:    retryCfg,
	}
}

// Name returns the service label used for metrics and logs.
func (c *Client) Name() string {
	return c.name
}

// CircuitOpen reports whether the breaker is currently rejecting calls.
func (c *Client) CircuitOpen() bool {
	return c.circuitBreaker.IsOpen()
}

// Get fetches rawURL and returns the response body. Non-2xx responses are
// returned as *retry.HTTPError so 5xx, 408 and 429 are retried.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := retry.Do(ctx, c.retryConfig, func() ([]byte, error) {
		return circuitbreaker.Call(c.circuitBreaker, func() ([]byte, error) {
			return c.doGet(ctx, rawURL)
		})
	})
	metrics.RecordExternalCall(c.name, err == nil, time.Since(start))

	if err != nil {
		logging.FromContext(ctx).Warn("external call failed",
			"service", c.name,
			"duration", time.Since(start),
			"error", err)
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json, application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, retry.NewHTTPError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
