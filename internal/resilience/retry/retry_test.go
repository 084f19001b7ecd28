package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

var errUnavailable = &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "unavailable"}

func TestWithBackoff(t *testing.T) {
	permanent := errors.New("article not found")

	tests := []struct {
		name         string
		attempts     int
		failures     int
		failWith     error
		wantCalls    int
		wantErr      error
		wantExceeded bool
	}{
		{name: "first call succeeds", attempts: 3, wantCalls: 1},
		{name: "succeeds after transient failures", attempts: 3, failures: 2, failWith: errUnavailable, wantCalls: 3},
		{name: "gives up after max attempts", attempts: 3, failures: 10, failWith: errUnavailable, wantCalls: 3, wantErr: errUnavailable, wantExceeded: true},
		{name: "permanent error is not retried", attempts: 3, failures: 10, failWith: permanent, wantCalls: 1, wantErr: permanent},
		{name: "zero attempts still calls once", attempts: 0, failures: 10, failWith: errUnavailable, wantCalls: 1, wantErr: errUnavailable, wantExceeded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithBackoff(context.Background(), fastConfig(tt.attempts), func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantExceeded, strings.Contains(err.Error(), "max retry attempts"))
		})
	}
}

func TestWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Minute, MaxDelay: time.Minute, Multiplier: 1}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- WithBackoff(ctx, cfg, func() error {
			calls++
			return errUnavailable
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "retry aborted")
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("WithBackoff did not return after cancellation")
	}
}

func TestWithBackoff_HonoursRetryAfter(t *testing.T) {
	cfg := Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 40 * time.Millisecond, Multiplier: 1}
	limited := &HTTPError{StatusCode: http.StatusTooManyRequests, Message: "slow down", RetryAfter: time.Hour}

	calls := 0
	start := time.Now()
	err := WithBackoff(context.Background(), cfg, func() error {
		calls++
		if calls == 1 {
			return limited
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond, "Retry-After should stretch the wait to MaxDelay")
	assert.Less(t, elapsed, time.Second)
}

func TestNextWait(t *testing.T) {
	tests := []struct {
		name     string
		delay    time.Duration
		maxDelay time.Duration
		err      error
		want     time.Duration
	}{
		{name: "plain error keeps delay", delay: time.Second, maxDelay: 10 * time.Second, err: errors.New("boom"), want: time.Second},
		{name: "no hint keeps delay", delay: time.Second, maxDelay: 10 * time.Second, err: errUnavailable, want: time.Second},
		{name: "shorter hint ignored", delay: 2 * time.Second, maxDelay: 10 * time.Second, err: &HTTPError{StatusCode: 429, RetryAfter: time.Second}, want: 2 * time.Second},
		{name: "longer hint used", delay: time.Second, maxDelay: 10 * time.Second, err: &HTTPError{StatusCode: 429, RetryAfter: 5 * time.Second}, want: 5 * time.Second},
		{name: "hint capped at max", delay: time.Second, maxDelay: 10 * time.Second, err: &HTTPError{StatusCode: 429, RetryAfter: time.Minute}, want: 10 * time.Second},
		{name: "no cap without max", delay: time.Second, err: &HTTPError{StatusCode: 429, RetryAfter: time.Minute}, want: time.Minute},
		{name: "wrapped hint", delay: time.Second, maxDelay: 10 * time.Second, err: fmt.Errorf("newsapi: %w", &HTTPError{StatusCode: 503, RetryAfter: 3 * time.Second}), want: 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextWait(tt.delay, tt.maxDelay, tt.err))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{" 120 ", 2 * time.Minute},
		{"-3", 0},
		{"soon", 0},
		{now.Add(30 * time.Second).Format(http.TimeFormat), 30 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRetryAfter(tt.value, now))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil},
		{name: "context canceled", err: context.Canceled},
		{name: "deadline exceeded", err: context.DeadlineExceeded},
		{name: "wrapped deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded)},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "wrapped timeout", err: fmt.Errorf("dial: %w", syscall.ETIMEDOUT), want: true},
		{name: "network unreachable", err: syscall.ENETUNREACH, want: true},
		{name: "500", err: &HTTPError{StatusCode: 500}, want: true},
		{name: "502", err: &HTTPError{StatusCode: 502}, want: true},
		{name: "429", err: &HTTPError{StatusCode: 429}, want: true},
		{name: "408", err: &HTTPError{StatusCode: 408}, want: true},
		{name: "400", err: &HTTPError{StatusCode: 400}},
		{name: "401", err: &HTTPError{StatusCode: 401}},
		{name: "404", err: &HTTPError{StatusCode: 404}},
		{name: "plain error", err: errors.New("parse failure")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestConfigs(t *testing.T) {
	def := DefaultConfig()
	assert.Equal(t, 3, def.MaxAttempts)
	assert.Equal(t, time.Second, def.InitialDelay)
	assert.Equal(t, 30*time.Second, def.MaxDelay)
	assert.InDelta(t, 2.0, def.Multiplier, 0.001)
	assert.InDelta(t, 0.1, def.JitterFraction, 0.001)

	for name, cfg := range map[string]Config{
		"news feed": NewsFeedConfig(),
		"llm":       LLMConfig(),
		"lookup":    LookupAPIConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.GreaterOrEqual(t, cfg.MaxAttempts, 1)
			assert.LessOrEqual(t, cfg.InitialDelay, cfg.MaxDelay)
		})
	}
}

func TestDo(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errUnavailable
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)

	n, err := Do(context.Background(), fastConfig(2), func() (int, error) {
		return 7, errors.New("bad request")
	})
	require.Error(t, err)
	assert.Zero(t, n, "a failed call returns the zero value")
}

func TestNewHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		retryAfter string
		wantMsg    string
		wantAfter  time.Duration
	}{
		{name: "body trimmed", status: http.StatusTooManyRequests, body: "  quota exceeded \n", retryAfter: "7", wantMsg: "quota exceeded", wantAfter: 7 * time.Second},
		{name: "empty body uses status text", status: http.StatusBadGateway, wantMsg: "Bad Gateway"},
		{name: "long body truncated", status: http.StatusInternalServerError, body: strings.Repeat("x", 2048), wantMsg: strings.Repeat("x", 512)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tt.status,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader(tt.body)),
			}
			if tt.retryAfter != "" {
				resp.Header.Set("Retry-After", tt.retryAfter)
			}

			err := NewHTTPError(resp)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantAfter, err.RetryAfter)
			assert.Equal(t, fmt.Sprintf("HTTP %d: %s", tt.status, tt.wantMsg), err.Error())
		})
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, base, addJitter(base, 0))
	assert.Equal(t, base, addJitter(base, -1))

	seen := make(map[time.Duration]struct{})
	for range 20 {
		got := addJitter(base, 0.2)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+20*time.Millisecond)
		seen[got] = struct{}{}
	}
	assert.Greater(t, len(seen), 1, "jitter should vary")

	for range 20 {
		assert.LessOrEqual(t, addJitter(base, 5), 2*base, "fraction is clamped to 1")
	}
}
