// Package newsfeed retrieves news articles: Google News RSS search (no key
// required) and NewsAPI top headlines.
package newsfeed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/apiclient"
	"truthlens/internal/resilience/circuitbreaker"
	"truthlens/internal/resilience/retry"
)

// DefaultGoogleNewsEndpoint is the Google News RSS search URL.
const DefaultGoogleNewsEndpoint = "https://news.google.com/rss/search"

// defaultSource is used when a title carries no " - Source" suffix.
const defaultSource = "Google News"

// GoogleNews searches the Google News RSS feed. It satisfies
// analysis.NewsSearcher.
type GoogleNews struct {
	client   *apiclient.Client
	endpoint string
}

// NewGoogleNews creates a feed searcher. An empty endpoint uses
// DefaultGoogleNewsEndpoint. opts.Name, Breaker and Retry default to the
// news-feed policies.
func NewGoogleNews(endpoint string, opts apiclient.Options) *GoogleNews {
	if endpoint == "" {
		endpoint = DefaultGoogleNewsEndpoint
	}
	if opts.Name == "" {
		opts.Name = "news-feed"
	}
	if opts.Breaker.Name == "" {
		opts.Breaker = circuitbreaker.NewsFeedConfig()
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.NewsFeedConfig()
	}
	return &GoogleNews{client: apiclient.New(opts), endpoint: endpoint}
}

// SearchNews returns at most limit articles for query, in feed order.
func (g *GoogleNews) SearchNews(ctx context.Context, query string, limit int) ([]entity.Article, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	body, err := g.client.Get(ctx, g.endpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	articles := make([]entity.Article, 0, len(items))
	for _, it := range items {
		title, source := SplitSource(it.Title)
		articles = append(articles, entity.Article{
			Title:       title,
			Description: entity.TruncateDescription(StripHTML(it.Description)),
			URL:         it.Link,
			PublishedAt: it.PublishedParsed,
			SourceName:  source,
		})
	}
	return articles, nil
}

// SplitSource splits a Google News title "Headline - Outlet" on the last
// " - ". Titles without the separator get the default source.
func SplitSource(title string) (headline, source string) {
	i := strings.LastIndex(title, " - ")
	if i < 0 {
		return strings.TrimSpace(title), defaultSource
	}
	headline = strings.TrimSpace(title[:i])
	source = strings.TrimSpace(title[i+len(" - "):])
	if source == "" {
		source = defaultSource
	}
	return headline, source
}

// StripHTML returns the visible text of an HTML fragment with whitespace
// collapsed. Unparseable input is returned trimmed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
