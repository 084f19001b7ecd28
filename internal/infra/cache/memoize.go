package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"truthlens/internal/observability/metrics"
)

// Memoizer serves cached payloads and loads missing ones at most once per key
// at a time. A nil store disables caching: every call loads.
type Memoizer struct {
	store       Store
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
}

// DefaultLoadTimeout bounds a shared load once it is detached from the
// caller that started it.
const DefaultLoadTimeout = time.Minute

// NewMemoizer creates a Memoizer with a default TTL.
func NewMemoizer(store Store, ttl time.Duration) *Memoizer {
	return &Memoizer{store: store, ttl: ttl, loadTimeout: DefaultLoadTimeout}
}

// Disabled returns a Memoizer that never caches.
func Disabled() *Memoizer {
	return &Memoizer{}
}

// Enabled reports whether a backing store is configured.
func (m *Memoizer) Enabled() bool {
	return m != nil && m.store != nil
}

// GetOrLoad returns the fresh payload for key, or runs load and stores its
// result for ttl (the default TTL when ttl is zero). Store failures are logged
// and bypassed; load errors are returned and nothing is cached.
func (m *Memoizer) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if !m.Enabled() {
		return load(ctx)
	}
	if ttl <= 0 {
		ttl = m.ttl
	}

	if payload, ok := m.lookup(ctx, key); ok {
		return payload, nil
	}

	// The load is detached from the caller that starts it; every caller
	// still stops waiting when its own ctx ends.
	ch := m.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.loadTimeout)
		defer cancel()

		// a concurrent caller may have filled the entry while we waited
		if payload, ok := m.lookup(lctx, key); ok {
			return payload, nil
		}

		payload, err := load(lctx)
		if err != nil {
			return nil, err
		}

		if err := m.store.Set(lctx, key, payload, ttl); err != nil {
			slog.WarnContext(lctx, "cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return payload, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Refresh loads unconditionally and overwrites key with the new payload.
func (m *Memoizer) Refresh(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	payload, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if !m.Enabled() {
		return payload, nil
	}
	if ttl <= 0 {
		ttl = m.ttl
	}
	if err := m.store.Set(ctx, key, payload, ttl); err != nil {
		return payload, fmt.Errorf("store %s: %w", key, err)
	}
	return payload, nil
}

func (m *Memoizer) lookup(ctx context.Context, key string) ([]byte, bool) {
	payload, ok, err := m.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		slog.WarnContext(ctx, "cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	case ok:
		metrics.RecordCacheLookup("hit")
		return payload, true
	default:
		metrics.RecordCacheLookup("miss")
		return nil, false
	}
}

// Memoize is the typed form of GetOrLoad. Values are stored as JSON, so every
// hit within the TTL decodes the same bytes.
func Memoize[T any](ctx context.Context, m *Memoizer, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	payload, err := m.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}

// Warm is the typed form of Refresh, used by the cache-warming worker.
func Warm[T any](ctx context.Context, m *Memoizer, key string, ttl time.Duration, load func(context.Context) (T, error)) error {
	_, err := m.Refresh(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	return err
}
