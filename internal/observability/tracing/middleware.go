package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"truthlens/internal/handler/http/requestid"
	"truthlens/internal/handler/http/responsewriter"
)

// TraceIDHeader carries the server span's trace ID back to the caller.
const TraceIDHeader = "X-Trace-Id"

// Middleware continues any W3C trace context on the request in a server
// span named "<METHOD> <path>". It must run after requestid.Middleware for
// the span to carry the request ID. Responses of 500 and above mark the
// span as failed.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parent := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		}
		if id := requestid.FromContext(r.Context()); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}

		ctx, span := GetTracer().Start(parent, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...))
		defer span.End()

		w.Header().Set(TraceIDHeader, span.SpanContext().TraceID().String())

		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		status := rw.StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
