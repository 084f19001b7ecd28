package agent

import (
	"context"
	"fmt"
	"math"
	"time"

	"truthlens/internal/infra/cache"
	"truthlens/internal/infra/metals"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
)

// MetalPricesKey is the cache key of the latest metal prices.
const MetalPricesKey = "metal_prices_latest"

// MetalPricesTTL is how long prices are served from cache.
const MetalPricesTTL = 10 * time.Minute

// Sources reported in MetalPrices.Source.
const (
	SourceMetalPriceAPI = "metalpriceapi.com"
	SourceMockData      = "mock_data"
)

// MetalQuote is the price of one troy ounce.
type MetalQuote struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// MetalPrices is the metal prices agent's answer.
type MetalPrices struct {
	Gold      MetalQuote `json:"gold"`
	Silver    MetalQuote `json:"silver"`
	Timestamp time.Time  `json:"timestamp"`
	Source    string     `json:"source"`
}

// MetalPricesAgent serves gold and silver prices, cached for ten minutes,
// with fixed demo prices when the API is unavailable.
type MetalPricesAgent struct {
	quoter MetalQuoter
	memo   *cache.Memoizer
	base   string
	now    func() time.Time
}

// NewMetalPricesAgent creates the agent. base is the quote currency and
// defaults to USD.
func NewMetalPricesAgent(quoter MetalQuoter, memo *cache.Memoizer, base string) *MetalPricesAgent {
	if memo == nil {
		memo = cache.Disabled()
	}
	if base == "" {
		base = "USD"
	}
	return &MetalPricesAgent{quoter: quoter, memo: memo, base: base, now: time.Now}
}

// Prices returns the latest prices. It never fails.
func (a *MetalPricesAgent) Prices(ctx context.Context) (*MetalPrices, error) {
	ctx, span := tracing.StartSpan(ctx, "agent.metal_prices")
	defer span.End()
	defer metrics.RecordAgentRequest("metal_prices", true)

	logger := logging.FromContext(ctx)

	if a.quoter == nil || !a.quoter.Configured() {
		logger.Warn("metal price api key not configured, serving mock prices")
		return a.mockPrices(), nil
	}

	prices, err := cache.Memoize(ctx, a.memo, MetalPricesKey, MetalPricesTTL, a.load)
	if err != nil {
		logger.Warn("metal prices unavailable, serving mock prices", "error", err)
		return a.mockPrices(), nil
	}
	return &prices, nil
}

// Warm refreshes the cached prices.
func (a *MetalPricesAgent) Warm(ctx context.Context) error {
	if a.quoter == nil || !a.quoter.Configured() {
		return fmt.Errorf("warm %s: metal price api not configured", MetalPricesKey)
	}
	return cache.Warm(ctx, a.memo, MetalPricesKey, MetalPricesTTL, a.load)
}

func (a *MetalPricesAgent) load(ctx context.Context) (MetalPrices, error) {
	rates, err := a.quoter.Latest(ctx, a.base, metals.Gold, metals.Silver)
	if err != nil {
		return MetalPrices{}, fmt.Errorf("latest rates: %w", err)
	}

	gold, okGold := perOunce(rates.Rates[metals.Gold])
	silver, okSilver := perOunce(rates.Rates[metals.Silver])
	if !okGold || !okSilver {
		return MetalPrices{}, fmt.Errorf("latest rates: missing gold or silver in %v", rates.Rates)
	}

	currency := rates.Base
	if currency == "" {
		currency = a.base
	}
	ts := a.now().UTC()
	if rates.Timestamp > 0 {
		ts = time.Unix(rates.Timestamp, 0).UTC()
	}

	return MetalPrices{
		Gold:      MetalQuote{Price: gold, Currency: currency},
		Silver:    MetalQuote{Price: silver, Currency: currency},
		Timestamp: ts,
		Source:    SourceMetalPriceAPI,
	}, nil
}

// perOunce converts a rate quoted as ounces per currency unit into the price
// of one ounce, rounded to cents.
func perOunce(rate float64) (float64, bool) {
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0, false
	}
	return math.Round(100/rate) / 100, true
}

func (a *MetalPricesAgent) mockPrices() *MetalPrices {
	return &MetalPrices{
		Gold:      MetalQuote{Price: 1950.00, Currency: "USD"},
		Silver:    MetalQuote{Price: 23.50, Currency: "USD"},
		Timestamp: a.now().UTC(),
		Source:    SourceMockData,
	}
}
