package newsfeed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/apiclient"
)

// DefaultNewsAPIBaseURL is the NewsAPI v2 root.
const DefaultNewsAPIBaseURL = "https://newsapi.org/v2"

// CategoryAll requests headlines across every category.
const CategoryAll = "all"

// Headlines is a page of top headlines.
type Headlines struct {
	Articles []entity.Article
	Total    int
}

// NewsAPI fetches top headlines from newsapi.org.
type NewsAPI struct {
	client  *apiclient.Client
	apiKey  string
	baseURL string
}

// NewNewsAPI creates a client. An empty apiKey makes every call return
// apiclient.ErrNotConfigured.
func NewNewsAPI(apiKey, baseURL string, opts apiclient.Options) *NewsAPI {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}
	if opts.Name == "" {
		opts.Name = "newsapi"
	}
	return &NewsAPI{client: apiclient.New(opts), apiKey: apiKey, baseURL: baseURL}
}

// Configured reports whether an API key is set.
func (n *NewsAPI) Configured() bool {
	return n != nil && n.apiKey != ""
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// TopHeadlines returns US English headlines. category "all" or "" omits the
// category filter.
func (n *NewsAPI) TopHeadlines(ctx context.Context, category string, limit int) (Headlines, error) {
	if !n.Configured() {
		return Headlines{}, apiclient.ErrNotConfigured
	}

	q := url.Values{}
	q.Set("apiKey", n.apiKey)
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("language", "en")
	q.Set("country", "us")
	if category != "" && category != CategoryAll {
		q.Set("category", category)
	}

	var resp newsAPIResponse
	if err := n.client.GetJSON(ctx, n.baseURL+"/top-headlines?"+q.Encode(), &resp); err != nil {
		return Headlines{}, err
	}
	if resp.Status != "ok" {
		return Headlines{}, fmt.Errorf("newsapi: %s: %s", resp.Code, resp.Message)
	}

	articles := make([]entity.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		art := entity.Article{
			Title:       a.Title,
			Description: entity.TruncateDescription(a.Description),
			URL:         a.URL,
			SourceName:  a.Source.Name,
		}
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			art.PublishedAt = &ts
		}
		if art.Validate() != nil {
			continue
		}
		articles = append(articles, art)
	}
	return Headlines{Articles: articles, Total: resp.TotalResults}, nil
}
