// Package observability provides the crawl daemon's structured logging and
// Prometheus metrics infrastructure.
//
// This package centralizes observability concerns to enable:
//   - Structured logging with crawl-run correlation
//   - Prometheus metrics for the crawl pipeline
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "newsmesh/internal/observability/logging"
//	    "newsmesh/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordSourceCrawl("example-source", elapsed, 10, nil)
//	}
package observability
