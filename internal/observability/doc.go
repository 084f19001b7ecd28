// Package observability groups the logging, metrics and tracing packages.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: Prometheus collectors and Record* helpers
//   - tracing: OpenTelemetry spans and the HTTP tracing middleware
//
// Example usage:
//
//	logger := logging.NewLogger()
//	ctx = logging.WithLogger(ctx, logger)
//
//	ctx, span := tracing.StartSpan(ctx, "agent.news_fetch")
//	defer span.End()
//	metrics.RecordAgentRequest("news_fetch", true)
package observability
