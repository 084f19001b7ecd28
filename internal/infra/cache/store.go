// Package cache provides the time-boxed memoization layer used for idempotent
// external calls (metals prices, trending headlines). Entries are served only
// while they are fresh; expired entries behave as misses and are overwritten
// on the next refresh.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTTL is returned when a non-positive TTL is supplied.
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// Store is a key/value store with per-entry expiry.
type Store interface {
	// Get returns the payload for key and whether a fresh entry existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key until ttl elapses, replacing any previous entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
