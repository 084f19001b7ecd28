// Package factcheck queries the Google Fact Check Tools claims:search API.
package factcheck

import (
	"context"
	"net/url"

	"truthlens/internal/infra/apiclient"
)

// DefaultBaseURL is the Fact Check Tools v1alpha1 root.
const DefaultBaseURL = "https://factchecktools.googleapis.com/v1alpha1"

// MaxClaims is how many reviewed claims Search returns.
const MaxClaims = 3

// Claim is one published fact-check of a claim.
type Claim struct {
	Text      string `json:"text"`
	Claimant  string `json:"claimant"`
	Rating    string `json:"rating"`
	Publisher string `json:"publisher"`
	URL       string `json:"url"`
}

// Client is a Fact Check Tools client.
type Client struct {
	client  *apiclient.Client
	apiKey  string
	baseURL string
}

// NewClient creates a client. An empty apiKey makes Search return
// apiclient.ErrNotConfigured.
func NewClient(apiKey, baseURL string, opts apiclient.Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Name == "" {
		opts.Name = "fact-check"
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond, opts.Burst = 5, 5
	}
	return &Client{client: apiclient.New(opts), apiKey: apiKey, baseURL: baseURL}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type claimsResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search returns the first MaxClaims claims that carry at least one review.
// The first review of each claim supplies rating and publisher.
func (c *Client) Search(ctx context.Context, query string) ([]Claim, error) {
	if !c.Configured() {
		return nil, apiclient.ErrNotConfigured
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.apiKey)

	var resp claimsResponse
	if err := c.client.GetJSON(ctx, c.baseURL+"/claims:search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	claims := make([]Claim, 0, MaxClaims)
	for _, cl := range resp.Claims {
		if len(claims) == MaxClaims {
			break
		}
		if len(cl.ClaimReview) == 0 {
			continue
		}
		review := cl.ClaimReview[0]
		publisher := review.Publisher.Name
		if publisher == "" {
			publisher = review.Publisher.Site
		}
		claims = append(claims, Claim{
			Text:      cl.Text,
			Claimant:  cl.Claimant,
			Rating:    review.TextualRating,
			Publisher: publisher,
			URL:       review.URL,
		})
	}
	return claims, nil
}
