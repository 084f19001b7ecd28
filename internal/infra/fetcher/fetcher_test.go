package fetcher

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
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Water found on Mars - Science Daily</title></head>
<body>
<nav><a href="/">Home</a> <a href="/science">Science</a></nav>
<article>
<h1>Water found on Mars</h1>
<p>Scientists working with orbital radar data announced on Tuesday that they had identified a large body of liquid water beneath the southern polar ice cap of Mars, a finding that could reshape the search for life beyond Earth.</p>
<p>The team, which analysed several years of observations, said the reflections were consistent with a briny lake roughly twenty kilometres across, buried under about one and a half kilometres of ice and kept liquid by dissolved salts.</p>
<p>Independent researchers cautioned that other explanations remain possible, including clay minerals or frozen brines, and called for follow-up measurements with different instruments before the result is treated as settled.</p>
</article>
<footer>Copyright Science Daily</footer>
</body></html>`

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestFetchArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TruthLensBot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	got, err := NewReadabilityFetcher(testConfig()).FetchArticle(context.Background(), srv.URL+"/mars")
	require.NoError(t, err)

	assert.Contains(t, got.Title, "Water found on Mars")
	assert.Contains(t, got.Content, "liquid water beneath the southern polar ice cap")
	assert.Equal(t, srv.URL+"/mars", got.URL)
	assert.False(t, got.Truncated)
	assert.False(t, got.FetchedAt.IsZero())
}

func TestFetchArticle_Truncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxContentChars = 40
	got, err := NewReadabilityFetcher(cfg).FetchArticle(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, got.Truncated)
	assert.Len(t, []rune(got.Content), 40)
}

func TestFetchArticle_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := NewReadabilityFetcher(testConfig()).FetchArticle(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new", got.URL)
}

func TestFetchArticle_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/huge", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 2048
	cfg.MaxRedirects = 2
	cfg.Timeout = 100 * time.Millisecond

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "body too large", path: "/huge", wantErr: ErrBodyTooLarge},
		{name: "redirect loop", path: "/loop", wantErr: ErrTooManyRedirects},
		{name: "nothing readable", path: "/empty", wantErr: ErrReadabilityFailed},
		{name: "timeout", path: "/slow", wantErr: ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReadabilityFetcher(cfg).FetchArticle(context.Background(), srv.URL+tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.False(t, IsClientError(err))
		})
	}

	t.Run("non-200", func(t *testing.T) {
		_, err := NewReadabilityFetcher(cfg).FetchArticle(context.Background(), srv.URL+"/missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		denyPrivate bool
		wantErr     error
	}{
		{name: "ftp scheme", url: "ftp://news.org/a", wantErr: ErrInvalidURL},
		{name: "no host", url: "https:///path", wantErr: ErrInvalidURL},
		{name: "test tld", url: "https://fake.test/a", wantErr: ErrSuspiciousDomain},
		{name: "example tld", url: "http://news.example/a", wantErr: ErrSuspiciousDomain},
		{name: "loopback denied", url: "http://127.0.0.1:8080/", denyPrivate: true, wantErr: ErrPrivateIP},
		{name: "private range denied", url: "http://10.1.2.3/", denyPrivate: true, wantErr: ErrPrivateIP},
		{name: "metadata denied", url: "http://169.254.169.254/latest", denyPrivate: true, wantErr: ErrPrivateIP},
		{name: "loopback allowed", url: "http://127.0.0.1:8080/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.url, tt.denyPrivate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestFetchArticle_RejectsBeforeRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	// loopback test server with the production setting
	_, err := NewReadabilityFetcher(DefaultConfig()).FetchArticle(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrPrivateIP))
	assert.False(t, called)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "tiny body", mutate: func(c *Config) { c.MaxBodySize = 10 }, wantErr: true},
		{name: "too many redirects", mutate: func(c *Config) { c.MaxRedirects = 11 }, wantErr: true},
		{name: "negative content", mutate: func(c *Config) { c.MaxContentChars = -1 }, wantErr: true},
		{name: "unlimited content", mutate: func(c *Config) { c.MaxContentChars = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		t.Setenv("ARTICLE_FETCH_TIMEOUT", "5s")
		t.Setenv("ARTICLE_FETCH_MAX_REDIRECTS", "3")
		t.Setenv("ARTICLE_FETCH_DENY_PRIVATE_IPS", "false")

		cfg := LoadConfigFromEnv()
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, 3, cfg.MaxRedirects)
		assert.False(t, cfg.DenyPrivateIPs)
	})

	t.Run("invalid combination falls back", func(t *testing.T) {
		t.Setenv("ARTICLE_FETCH_MAX_REDIRECTS", "50")
		assert.Equal(t, DefaultConfig(), LoadConfigFromEnv())
	})
}
