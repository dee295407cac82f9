// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Crawl run ID propagation
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "newsmesh/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func runOnce(ctx context.Context, runID string, logger *slog.Logger) {
//	    ctx = logging.WithRunID(ctx, runID)
//	    log := logging.WithRunIDLogger(ctx, logger)
//	    log.Info("crawl tick started")
//	}
package logging
