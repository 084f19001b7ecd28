// Package metals fetches precious metal rates from metalpriceapi.com.
package metals

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"truthlens/internal/infra/apiclient"
)

// DefaultBaseURL is the metalpriceapi v1 root.
const DefaultBaseURL = "https://api.metalpriceapi.com/v1"

// Symbols for gold and silver.
const (
	Gold   = "XAU"
	Silver = "XAG"
)

// ErrUnsuccessful is returned when the API answers success=false.
var ErrUnsuccessful = errors.New("metal price api reported failure")

// Rates is the latest quote for the requested symbols.
type Rates struct {
	Base      string             `json:"base"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

// Client is a metalpriceapi client.
type Client struct {
	client  *apiclient.Client
	apiKey  string
	baseURL string
}

// NewClient creates a client. An empty apiKey makes Latest return
// apiclient.ErrNotConfigured.
func NewClient(apiKey, baseURL string, opts apiclient.Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Name == "" {
		opts.Name = "metal-prices"
	}
	return &Client{client: apiclient.New(opts), apiKey: apiKey, baseURL: baseURL}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Latest returns the rates of symbols against base.
func (c *Client) Latest(ctx context.Context, base string, symbols ...string) (Rates, error) {
	if !c.Configured() {
		return Rates{}, apiclient.ErrNotConfigured
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("base", base)
	q.Set("currencies", strings.Join(symbols, ","))

	var resp struct {
		Rates
		Success bool `json:"success"`
	}
	if err := c.client.GetJSON(ctx, c.baseURL+"/latest?"+q.Encode(), &resp); err != nil {
		return Rates{}, err
	}
	if !resp.Success {
		return Rates{}, ErrUnsuccessful
	}
	return resp.Rates, nil
}
