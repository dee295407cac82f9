// Package metrics provides Prometheus metrics registry and recording utilities
// for the crawl pipeline.
//
// This package centralizes all pipeline metrics including:
//   - Per-source crawl duration, error counts, and fetched-article counts
//   - Dedup input/removed counts
//   - Result cache hit/miss counts
//   - History-store seen-filtered counts
//   - Stories clustered and sources healthy/unhealthy gauges
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "newsmesh/internal/observability/metrics"
//
//	func crawlOne(source string, start time.Time, articles []entity.Article, err error) {
//	    metrics.RecordSourceCrawl(source, time.Since(start), len(articles), err)
//	}
package metrics
