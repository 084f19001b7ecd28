// Package logging wraps log/slog with the conventions used across the service:
// JSON output by default, LOG_LEVEL controlled verbosity, and request ID
// propagation from the HTTP layer into every log entry.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func (s *Service) Analyze(ctx context.Context, headline string) {
//	    log := logging.FromContext(ctx)
//	    log.Info("analysis started", slog.String("headline", headline))
//	}
package logging
