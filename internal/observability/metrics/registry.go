// Package metrics provides centralized Prometheus metrics for the crawl
// daemon's pipeline stages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Crawl metrics track per-source fetch behavior.
var (
	// SourceCrawlDuration observes, per source, the duration of the attempt
	// that succeeded; earlier failed attempts and backoff are not included,
	// and a source that failed every attempt is observed as 0.
	SourceCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_crawl_duration_seconds",
			Help:    "Time taken to crawl a single source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// SourceCrawlErrors counts source crawl failures by source, after all
	// retries are exhausted.
	SourceCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_crawl_errors_total",
			Help: "Total number of source crawl failures after retries",
		},
		[]string{"source"},
	)

	// ArticlesFetchedTotal counts raw articles fetched from each source,
	// before dedup.
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of articles fetched from sources, before dedup",
		},
		[]string{"source"},
	)
)

// Pipeline metrics track the post-crawl aggregate stages.
var (
	// DedupInputTotal counts articles entering the dedup engine per run.
	DedupInputTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_input_total",
			Help: "Total number of articles entering the dedup engine",
		},
	)

	// DedupRemovedTotal counts articles collapsed as duplicates.
	DedupRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_removed_total",
			Help: "Total number of articles removed as duplicates",
		},
	)

	// HistorySeenFilteredTotal counts articles dropped by the history store
	// as previously seen.
	HistorySeenFilteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_seen_filtered_total",
			Help: "Total number of articles filtered out as already seen",
		},
	)

	// CacheHitsTotal and CacheMissesTotal count scheduler cache lookups.
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of crawl runs served from cache",
		},
	)
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of crawl runs that missed cache",
		},
	)

	// StoriesClusteredTotal counts stories produced by the clusterer per run.
	StoriesClusteredTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stories_clustered_total",
			Help: "Number of stories produced by the last clustering pass",
		},
	)

	// ArticlesRetainedTotal tracks the size of the article list left after
	// dedup in the last scheduler run, before history filtering.
	ArticlesRetainedTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_retained_total",
			Help: "Number of articles retained after dedup in the last crawl run",
		},
	)

	// SourcesHealthyTotal and SourcesUnhealthyTotal summarize the health
	// tracker's view of source reliability after a run.
	SourcesHealthyTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_healthy_total",
			Help: "Number of sources with a healthy recent success rate",
		},
	)
	SourcesUnhealthyTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_unhealthy_total",
			Help: "Number of sources with a degraded recent success rate",
		},
	)
)

// RecordSourceCrawl records one source's crawl outcome.
func RecordSourceCrawl(source string, duration time.Duration, articleCount int, err error) {
	SourceCrawlDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SourceCrawlErrors.WithLabelValues(source).Inc()
		return
	}
	ArticlesFetchedTotal.WithLabelValues(source).Add(float64(articleCount))
}

// RecordDedup records one dedup pass's input/output sizes.
func RecordDedup(input, removed int) {
	DedupInputTotal.Add(float64(input))
	DedupRemovedTotal.Add(float64(removed))
}

// RecordCacheLookup records whether a scheduler run was served from cache.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHitsTotal.Inc()
		return
	}
	CacheMissesTotal.Inc()
}
