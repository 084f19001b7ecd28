// Package fetcher downloads article pages and extracts their readable text.
package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/resilience/circuitbreaker"
)

// Sentinel errors. Callers map ErrInvalidURL, ErrSuspiciousDomain and
// ErrPrivateIP to a client error; the rest are upstream failures.
var (
	ErrInvalidURL        = errors.New("invalid url")
	ErrSuspiciousDomain  = errors.New("url points to a test or reserved domain")
	ErrPrivateIP         = errors.New("url resolves to a private address")
	ErrTooManyRedirects  = errors.New("too many redirects")
	ErrBodyTooLarge      = errors.New("response body too large")
	ErrTimeout           = errors.New("fetch timed out")
	ErrReadabilityFailed = errors.New("no readable content")
)

// IsClientError reports whether err was caused by the URL itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrSuspiciousDomain) || errors.Is(err, ErrPrivateIP)
}

// Article is the readable part of a page.
type Article struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Byline    string    `json:"byline,omitempty"`
	SiteName  string    `json:"site_name,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Content   string    `json:"content"`
	Truncated bool      `json:"truncated"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ReadabilityFetcher fetches pages and runs the Readability algorithm over
// them. It is safe for concurrent use.
type ReadabilityFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	config  Config
}

// NewReadabilityFetcher builds a fetcher whose client validates every
// redirect hop the same way as the initial URL.
func NewReadabilityFetcher(cfg Config) *ReadabilityFetcher {
	f := &ReadabilityFetcher{
		breaker: circuitbreaker.New(circuitbreaker.ArticleFetchConfig()),
		config:  cfg,
	}

	f.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target rejected: %w", err)
			}
			return nil
		},
	}

	return f
}

// FetchArticle downloads rawURL and returns its readable text. URL problems
// are reported before any request is made and do not count against the
// circuit breaker.
func (f *ReadabilityFetcher) FetchArticle(ctx context.Context, rawURL string) (*Article, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	start := time.Now()
	article, err := circuitbreaker.Call(f.breaker, func() (*Article, error) {
		return f.doFetch(ctx, rawURL)
	})
	metrics.RecordExternalCall("article-fetch", err == nil, time.Since(start))
	if err != nil {
		logging.FromContext(ctx).Warn("article fetch failed",
			"url", rawURL,
			"error", err)
		return nil, err
	}
	return article, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, rawURL string) (*Article, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: exceeded %v", ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	// redirects may have moved us; relative links resolve against the final URL
	pageURL := resp.Request.URL
	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}

	text := strings.TrimSpace(parsed.TextContent)
	if text == "" {
		return nil, ErrReadabilityFailed
	}

	content, truncated := truncateRunes(text, f.config.MaxContentChars)
	return &Article{
		URL:       pageURL.String(),
		Title:     strings.TrimSpace(parsed.Title),
		Byline:    parsed.Byline,
		SiteName:  parsed.SiteName,
		Excerpt:   parsed.Excerpt,
		Content:   content,
		Truncated: truncated,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func truncateRunes(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	return string([]rune(s)[:limit]), true
}
