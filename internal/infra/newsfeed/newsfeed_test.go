package newsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/internal/infra/apiclient"
	"truthlens/internal/resilience/retry"
)

func testOptions() apiclient.Options {
	return apiclient.Options{Retry: retry.Config{MaxAttempts: 1}}
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Search</title>
<item>
  <title>Water found on Mars - Reuters</title>
  <link>https://reuters.com/mars</link>
  <pubDate>Mon, 04 Mar 2024 10:00:00 GMT</pubDate>
  <description>&lt;a href="https://reuters.com/mars"&gt;Water found&lt;/a&gt;&amp;nbsp;&lt;font&gt;Reuters&lt;/font&gt;</description>
</item>
<item>
  <title>Mars - the red planet - explained</title>
  <link>https://example.net/explainer</link>
  <description>plain text</description>
</item>
<item>
  <title>No source here</title>
  <link>https://example.net/3</link>
</item>
</channel></rss>`

func TestGoogleNews_SearchNews(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "US:en", r.URL.Query().Get("ceid"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	g := NewGoogleNews(srv.URL, testOptions())
	articles, err := g.SearchNews(context.Background(), "water Mars", 10)
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Equal(t, "water Mars", gotQuery)

	assert.Equal(t, "Water found on Mars", articles[0].Title)
	assert.Equal(t, "Reuters", articles[0].SourceName)
	assert.Equal(t, "https://reuters.com/mars", articles[0].URL)
	assert.Equal(t, "Water found Reuters", articles[0].Description)
	require.NotNil(t, articles[0].PublishedAt)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), articles[0].PublishedAt.UTC())

	assert.Equal(t, "Mars - the red planet", articles[1].Title)
	assert.Equal(t, "explained", articles[1].SourceName)
	assert.Nil(t, articles[1].PublishedAt)

	assert.Equal(t, "No source here", articles[2].Title)
	assert.Equal(t, "Google News", articles[2].SourceName)
}

func TestGoogleNews_Limit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	articles, err := NewGoogleNews(srv.URL, testOptions()).SearchNews(context.Background(), "x", 2)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestGoogleNews_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not a feed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("definitely not xml"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewGoogleNews(srv.URL, testOptions()).SearchNews(context.Background(), "x", 5)
			assert.Error(t, err)
		})
	}
}

func TestSplitSource(t *testing.T) {
	tests := []struct {
		title      string
		wantTitle  string
		wantSource string
	}{
		{"Headline - BBC News", "Headline", "BBC News"},
		{"A - B - C", "A - B", "C"},
		{"No separator", "No separator", "Google News"},
		{"Trailing - ", "Trailing", "Google News"},
		{"Hyphen-joined words", "Hyphen-joined words", "Google News"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			title, source := SplitSource(tt.title)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  just   text ", want: "just text"},
		{name: "tags", in: `<p>Hello <b>world</b></p>`, want: "Hello world"},
		{name: "entities", in: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestNewsAPI_TopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		assert.Equal(t, "key-123", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "technology", r.URL.Query().Get("category"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 42,
			"articles": [
				{"source": {"name": "The Verge"}, "title": "New chip", "description": "Fast", "url": "https://theverge.com/chip", "publishedAt": "2024-03-04T10:00:00Z"},
				{"source": {"name": "Nobody"}, "title": "", "url": ""},
				{"source": {"name": "Wired"}, "title": "Undated", "url": "https://wired.com/x", "publishedAt": "yesterday"}
			]
		}`))
	}))
	defer srv.Close()

	n := NewNewsAPI("key-123", srv.URL, testOptions())
	got, err := n.TopHeadlines(context.Background(), "technology", 5)
	require.NoError(t, err)

	assert.Equal(t, 42, got.Total)
	require.Len(t, got.Articles, 2)
	assert.Equal(t, "The Verge", got.Articles[0].SourceName)
	require.NotNil(t, got.Articles[0].PublishedAt)
	assert.Nil(t, got.Articles[1].PublishedAt)
}

func TestNewsAPI_AllCategoryOmitsFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("category"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	_, err := NewNewsAPI("k", srv.URL, testOptions()).TopHeadlines(context.Background(), CategoryAll, 3)
	require.NoError(t, err)
}

func TestNewsAPI_Errors(t *testing.T) {
	t.Run("no key", func(t *testing.T) {
		_, err := NewNewsAPI("", "", testOptions()).TopHeadlines(context.Background(), "general", 5)
		assert.True(t, errors.Is(err, apiclient.ErrNotConfigured))
	})

	t.Run("error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"bad key"}`))
		}))
		defer srv.Close()

		_, err := NewNewsAPI("k", srv.URL, testOptions()).TopHeadlines(context.Background(), "general", 5)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "apiKeyInvalid"))
	})
}
