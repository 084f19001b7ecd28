package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"truthlens/internal/handler/http/pathutil"
	"truthlens/internal/handler/http/responsewriter"
	"truthlens/internal/observability/metrics"
)

// MetricsMiddleware records in-flight requests, duration, status and
// response size. Paths are normalized so unknown URLs share one label.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rw := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(r.Method, pathutil.NormalizePath(r.URL.Path),
			rw.StatusCode(), time.Since(start), rw.BytesWritten())
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
