// Package config reads typed values from environment variables. A value
// that fails to parse never stops the process: it is logged and the
// caller's default is used instead.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the parsed value of key, or def when key is unset, blank
// or unparseable.
func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("invalid value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", fmt.Sprint(def)),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// GetEnvString returns the trimmed value of key, or def when it is blank.
func GetEnvString(key, def string) string {
	return lookup(key, def, func(s string) (string, error) { return s, nil })
}

func GetEnvInt(key string, def int) int {
	return lookup(key, def, strconv.Atoi)
}

// GetEnvFloat parses key as a float64, e.g. ANALYSIS_MIN_RELEVANCE=0.45.
func GetEnvFloat(key string, def float64) float64 {
	return lookup(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// GetEnvBool accepts the forms strconv.ParseBool does ("1", "t", "true",
// "0", "f", "false" and upper-case variants).
func GetEnvBool(key string, def bool) bool {
	return lookup(key, def, strconv.ParseBool)
}

// GetEnvDuration parses key with time.ParseDuration ("10s", "5m").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return lookup(key, def, time.ParseDuration)
}

// GetEnvStringList splits a comma-separated value, trimming entries and
// dropping empty ones:
//
//	TRENDING_CATEGORIES="general, technology ,science"  ->  [general technology science]
func GetEnvStringList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
