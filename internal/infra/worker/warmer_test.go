package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetals struct {
	err   error
	calls int
}

func (f *fakeMetals) Warm(ctx context.Context) error {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("run without deadline")
	}
	return f.err
}

type fakeTrending struct {
	mu     sync.Mutex
	fail   map[string]bool
	limits []int
	warmed []string
}

func (f *fakeTrending) WarmTrending(_ context.Context, category string, limit int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if f.fail[category] {
		return errors.New("newsapi: 429 for apiKey=secret")
	}
	f.warmed = append(f.warmed, category)
	return nil
}

func TestWarmer_Run(t *testing.T) {
	tests := []struct {
		name       string
		metalsErr  error
		fail       map[string]bool
		wantWarmed int
		wantFailed int
		wantStatus string
	}{
		{name: "all refreshed", wantWarmed: 4, wantStatus: "success"},
		{name: "one category fails", fail: map[string]bool{"business": true}, wantWarmed: 3, wantFailed: 1, wantStatus: "partial"},
		{
			name:       "everything fails",
			metalsErr:  errors.New("metal price api reported failure"),
			fail:       map[string]bool{"general": true, "technology": true, "business": true},
			wantFailed: 4,
			wantStatus: "failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metals := &fakeMetals{err: tt.metalsErr}
			news := &fakeTrending{fail: tt.fail}
			m := NewMetrics(prometheus.NewRegistry())

			w := NewWarmer(WarmerOptions{
				Metals:     metals,
				News:       news,
				Categories: []string{"general", "technology", "business"},
				Limit:      10,
				Timeout:    time.Minute,
				Metrics:    m,
				Logger:     discardLogger(),
			})
			stats := w.Run(context.Background())

			assert.Equal(t, tt.wantWarmed, stats.Warmed)
			assert.Equal(t, tt.wantFailed, stats.Failed)
			assert.Equal(t, tt.wantStatus, stats.Status())
			assert.Equal(t, 1, metals.calls)
			assert.Equal(t, []int{10, 10, 10}, news.limits)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(tt.wantStatus)))
			assert.Equal(t, float64(tt.wantWarmed), testutil.ToFloat64(m.KeysWarmedTotal.WithLabelValues("success")))
			assert.Equal(t, float64(tt.wantFailed), testutil.ToFloat64(m.KeysWarmedTotal.WithLabelValues("failure")))
			if tt.wantFailed == 0 {
				assert.Positive(t, testutil.ToFloat64(m.LastSuccessTime))
			} else {
				assert.Zero(t, testutil.ToFloat64(m.LastSuccessTime))
			}
		})
	}
}

func TestWarmer_SkipsMissingSources(t *testing.T) {
	news := &fakeTrending{}
	stats := NewWarmer(WarmerOptions{
		News:       news,
		Categories: []string{"science", "health"},
		Limit:      5,
	}).Run(context.Background())

	require.Equal(t, 2, stats.Warmed)
	sort.Strings(news.warmed)
	assert.Equal(t, []string{"health", "science"}, news.warmed)

	stats = NewWarmer(WarmerOptions{}).Run(context.Background())
	assert.Equal(t, RunStats{Duration: stats.Duration}, stats)
	assert.Equal(t, "success", stats.Status())
}
