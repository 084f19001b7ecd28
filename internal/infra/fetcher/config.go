package fetcher

import (
	"fmt"
	"time"

	pkgconfig "truthlens/pkg/config"
)

// Config controls article fetching.
type Config struct {
	// Timeout bounds a single page request including redirects.
	Timeout time.Duration

	// MaxBodySize is enforced while reading, not from Content-Length.
	MaxBodySize int64

	// MaxRedirects is the number of hops followed. Every hop is validated.
	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to loopback, private or
	// link-local addresses. Only tests turn it off.
	DenyPrivateIPs bool

	// MaxContentChars truncates the extracted text. Zero keeps everything.
	MaxContentChars int

	UserAgent string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		MaxBodySize:     5 * 1024 * 1024,
		MaxRedirects:    5,
		DenyPrivateIPs:  true,
		MaxContentChars: 5000,
		UserAgent:       "TruthLensBot/1.0",
	}
}

// Validate rejects settings that would disable the safety limits.
func (c Config) Validate() error {
	if err := pkgconfig.ValidateDurationRange(c.Timeout, time.Second, 2*time.Minute); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}

	const minBody, maxBody = int64(1024), int64(50 * 1024 * 1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.MaxContentChars < 0 {
		return fmt.Errorf("max content chars must be non-negative, got %d", c.MaxContentChars)
	}

	return nil
}

// LoadConfigFromEnv overlays ARTICLE_FETCH_* variables on DefaultConfig.
// An invalid combination falls back to the defaults as a whole.
//
// Environment variables:
//   - ARTICLE_FETCH_TIMEOUT (duration)
//   - ARTICLE_FETCH_MAX_BODY_SIZE (bytes)
//   - ARTICLE_FETCH_MAX_REDIRECTS
//   - ARTICLE_FETCH_MAX_CONTENT_CHARS
//   - ARTICLE_FETCH_DENY_PRIVATE_IPS (bool)
//   - HTTP_USER_AGENT
func LoadConfigFromEnv() Config {
	def := DefaultConfig()

	cfg := Config{
		Timeout:         pkgconfig.GetEnvDuration("ARTICLE_FETCH_TIMEOUT", def.Timeout),
		MaxBodySize:     int64(pkgconfig.GetEnvInt("ARTICLE_FETCH_MAX_BODY_SIZE", int(def.MaxBodySize))),
		MaxRedirects:    pkgconfig.GetEnvInt("ARTICLE_FETCH_MAX_REDIRECTS", def.MaxRedirects),
		DenyPrivateIPs:  pkgconfig.GetEnvBool("ARTICLE_FETCH_DENY_PRIVATE_IPS", def.DenyPrivateIPs),
		MaxContentChars: pkgconfig.GetEnvInt("ARTICLE_FETCH_MAX_CONTENT_CHARS", def.MaxContentChars),
		UserAgent:       pkgconfig.GetEnvString("HTTP_USER_AGENT", def.UserAgent),
	}
	if err := cfg.Validate(); err != nil {
		return def
	}
	return cfg
}
