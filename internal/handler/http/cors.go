package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig is the cross-origin policy of the API.
type CORSConfig struct {
	// AllowedOrigins is matched case-insensitively without trailing slash.
	// "*" allows every origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// MaxAge is the preflight cache duration in seconds.
	MaxAge int
}

// DefaultCORSConfig allows any origin to call the JSON endpoints.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}
}

type originValidator struct {
	any     bool
	origins map[string]struct{}
}

func newOriginValidator(origins []string) originValidator {
	v := originValidator{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = normalizeOrigin(o)
		switch o {
		case "":
		case "*":
			v.any = true
		default:
			v.origins[o] = struct{}{}
		}
	}
	return v
}

func (v originValidator) allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if v.any {
		return true
	}
	_, ok := v.origins[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}

// CORS sets CORS headers for allowed origins and answers their preflight
// requests with 204. Disallowed origins get no CORS headers, so the browser
// blocks the response.
func CORS(cfg CORSConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	validator := newOriginValidator(cfg.AllowedOrigins)
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !validator.allowed(origin) {
				logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
