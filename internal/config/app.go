// Package config assembles process configuration from the environment, an
// optional .env file and the optional analysis tuning YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "truthlens/pkg/config"
)

// AppConfig is everything cmd/api and cmd/worker need at startup.
type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Cache  CacheConfig
	APIs   APIConfig
	Worker WorkerConfig
	AI     *AIConfig

	// AnalysisFile is the optional YAML tuning file for the deep pipeline.
	AnalysisFile string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	// MaxBodyBytes caps request bodies. Default: 1 MiB
	MaxBodyBytes       int64
	// RequestTimeout bounds one handler invocation. Default: 90s
	RequestTimeout     time.Duration
	// RateLimitRequests per RateLimitWindow per client IP on the agent
	// routes. Zero disables the limiter. Default: 30 per minute
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// Default: *
	CORSAllowedOrigins []string
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig configures the TTL cache. An empty RedisAddr selects the
// in-process store.
type CacheConfig struct {
	Enabled       bool
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
}

// APIConfig holds third-party credentials and endpoints. Empty keys disable
// the corresponding client.
type APIConfig struct {
	NewsAPIKey      string
	GoogleSearchKey string
	GoogleSearchCX  string
	FactCheckKey    string
	MetalPriceKey   string

	NewsFeedURL  string
	NominatimURL string
	UserAgent    string
	HTTPTimeout  time.Duration
}

// WorkerConfig lists what the cache-warming worker refreshes. The schedule
// itself is loaded by the worker package.
type WorkerConfig struct {
	TrendingCategories []string
	TrendingLimit      int
}

// Load reads .env (if present) and the environment. Invalid typed values
// fall back to defaults with a warning; structurally invalid settings fail.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	ai, err := LoadAIConfig()
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Addr:            pkgconfig.GetEnvString("HTTP_ADDR", ":8080"),
			ReadTimeout:     pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: pkgconfig.GetEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
			MaxBodyBytes:    int64(pkgconfig.GetEnvInt("HTTP_MAX_BODY_BYTES", 1<<20)),
			RequestTimeout:  pkgconfig.GetEnvDuration("HTTP_REQUEST_TIMEOUT", 90*time.Second),

			RateLimitRequests:  pkgconfig.GetEnvInt("RATE_LIMIT_REQUESTS", 30),
			RateLimitWindow:    pkgconfig.GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			CORSAllowedOrigins: pkgconfig.GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  pkgconfig.GetEnvString("LOG_LEVEL", "info"),
			Format: pkgconfig.GetEnvString("LOG_FORMAT", "json"),
		},
		Cache: CacheConfig{
			Enabled:       pkgconfig.GetEnvBool("ENABLE_CACHE", true),
			TTL:           pkgconfig.GetEnvDuration("CACHE_TTL", 300*time.Second),
			RedisAddr:     pkgconfig.GetEnvString("REDIS_ADDR", ""),
			RedisPassword: pkgconfig.GetEnvString("REDIS_PASSWORD", ""),
			RedisDB:       pkgconfig.GetEnvInt("REDIS_DB", 0),
			Prefix:        pkgconfig.GetEnvString("CACHE_PREFIX", "truthlens:"),
		},
		APIs: APIConfig{
			NewsAPIKey:      pkgconfig.GetEnvString("NEWS_API_KEY", ""),
			GoogleSearchKey: pkgconfig.GetEnvString("GOOGLE_SEARCH_API_KEY", ""),
			GoogleSearchCX:  pkgconfig.GetEnvString("GOOGLE_SEARCH_ENGINE_ID", ""),
			FactCheckKey:    pkgconfig.GetEnvString("GOOGLE_FACT_CHECK_API_KEY", ""),
			MetalPriceKey:   pkgconfig.GetEnvString("METAL_PRICE_API_KEY", ""),
			NewsFeedURL:     pkgconfig.GetEnvString("NEWS_RSS_ENDPOINT", "https://news.google.com/rss/search"),
			NominatimURL:    pkgconfig.GetEnvString("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:       pkgconfig.GetEnvString("HTTP_USER_AGENT", "truthlens/1.0"),
			HTTPTimeout:     pkgconfig.GetEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		},
		Worker: WorkerConfig{
			TrendingCategories: pkgconfig.GetEnvStringList("WORKER_TRENDING_CATEGORIES", []string{"general", "technology", "business"}),
			TrendingLimit:      pkgconfig.GetEnvInt("WORKER_TRENDING_LIMIT", 10),
		},
		AI:           ai,
		AnalysisFile: pkgconfig.GetEnvString("ANALYSIS_CONFIG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges that have no safe default.
func (c *AppConfig) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR cannot be empty")
	}
	for name, d := range map[string]time.Duration{
		"HTTP_READ_TIMEOUT":     c.Server.ReadTimeout,
		"HTTP_WRITE_TIMEOUT":    c.Server.WriteTimeout,
		"HTTP_SHUTDOWN_TIMEOUT": c.Server.ShutdownTimeout,
		"HTTP_REQUEST_TIMEOUT":  c.Server.RequestTimeout,
		"RATE_LIMIT_WINDOW":     c.Server.RateLimitWindow,
		"HTTP_CLIENT_TIMEOUT":   c.APIs.HTTPTimeout,
	} {
		if err := pkgconfig.ValidatePositiveDuration(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive")
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}
	if c.Cache.Enabled {
		if err := pkgconfig.ValidateDurationRange(c.Cache.TTL, time.Second, 24*time.Hour); err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
	}
	if c.Cache.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}
	if err := pkgconfig.ValidateIntRange(c.Worker.TrendingLimit, 1, 100); err != nil {
		return fmt.Errorf("WORKER_TRENDING_LIMIT: %w", err)
	}
	if c.AI == nil {
		return fmt.Errorf("AI configuration missing")
	}
	return c.AI.Validate()
}

// LLMEnabled reports whether the LLM stages should be wired.
func (c *AppConfig) LLMEnabled() bool {
	return c.AI.Enabled && c.AI.Provider != ProviderNone
}
