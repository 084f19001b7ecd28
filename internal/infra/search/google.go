// Package search queries the Google Custom Search JSON API.
package search

import (
	"context"
	"net/url"
	"strconv"

	"truthlens/internal/infra/apiclient"
)

// DefaultBaseURL is the Custom Search endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// maxResults is the API's per-request ceiling.
const maxResults = 10

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Google is a Custom Search client.
type Google struct {
	client   *apiclient.Client
	apiKey   string
	engineID string
	baseURL  string
}

// NewGoogle creates a client. Missing apiKey or engineID makes Search return
// apiclient.ErrNotConfigured.
func NewGoogle(apiKey, engineID, baseURL string, opts apiclient.Options) *Google {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Name == "" {
		opts.Name = "google-search"
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond, opts.Burst = 5, 5
	}
	return &Google{client: apiclient.New(opts), apiKey: apiKey, engineID: engineID, baseURL: baseURL}
}

// Configured reports whether credentials are present.
func (g *Google) Configured() bool {
	return g != nil && g.apiKey != "" && g.engineID != ""
}

// Search returns up to num results (clamped to 1..10).
func (g *Google) Search(ctx context.Context, query string, num int) ([]Result, error) {
	if !g.Configured() {
		return nil, apiclient.ErrNotConfigured
	}
	num = max(1, min(num, maxResults))

	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("cx", g.engineID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))

	var resp struct {
		Items []Result `json:"items"`
	}
	if err := g.client.GetJSON(ctx, g.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) > num {
		resp.Items = resp.Items[:num]
	}
	return resp.Items, nil
}
