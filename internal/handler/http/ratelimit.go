package http

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"truthlens/internal/handler/http/respond"
)

const sweepEvery = 10 * time.Minute

// RateLimiter allows limit requests per client IP in any sliding window of
// the given length. It guards the agent routes, which fan out to paid
// upstream APIs.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		window:    window,
		now:       time.Now,
		hits:      make(map[string][]time.Time),
		lastSweep: time.Now(),
	}
}

// Limit answers 429 with Retry-After once the caller's IP is over the limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(rl.window.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", retryAfter)
			respond.SafeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepEvery {
		rl.sweep(now)
	}

	recent := pruned(rl.hits[ip], now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.hits[ip] = recent
		return false
	}
	rl.hits[ip] = append(recent, now)
	return true
}

// sweep forgets clients with no hit inside the window. rl.mu must be held.
func (rl *RateLimiter) sweep(now time.Time) {
	rl.lastSweep = now
	cutoff := now.Add(-rl.window)
	for ip, ts := range rl.hits {
		if len(pruned(ts, cutoff)) == 0 {
			delete(rl.hits, ip)
		}
	}
}

// pruned drops timestamps at or before cutoff, reusing ts's backing array.
func pruned(ts []time.Time, cutoff time.Time) []time.Time {
	keep := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	return keep
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote address.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); first != "" {
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
