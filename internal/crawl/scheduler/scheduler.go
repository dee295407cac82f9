// Package scheduler implements the Crawl Scheduler: bounded-concurrency
// fan-out over every enabled Source, per-source timeout and retry,
// Health Tracker bookkeeping, Result Cache consultation, and the final
// pass through the Dedup Engine. Grounded on the teacher's errgroup +
// semaphore worker pool (internal/usecase/fetch/service.go's
// processFeedItems), generalized from a single feed's items to N
// independent upstream sources.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"newsmesh/internal/crawl"
	"newsmesh/internal/crawl/cache"
	"newsmesh/internal/crawl/dedup"
	"newsmesh/internal/crawl/health"
	"newsmesh/internal/domain/entity"
	"newsmesh/internal/observability/metrics"

	"golang.org/x/sync/errgroup"
)

// Config tunes one Scheduler.
type Config struct {
	MaxWorkers     int
	SourceTimeout  time.Duration
	Retries        int
	RetryJitter    float64
	BackoffBase    time.Duration
	DedupThreshold float64
	DedupEnabled   bool
	CacheEnabled   bool
	CacheTTL       time.Duration
}

// DefaultConfig mirrors the spec's scheduler defaults.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:     6,
		SourceTimeout:  60 * time.Second,
		Retries:        0,
		RetryJitter:    0.5,
		BackoffBase:    500 * time.Millisecond,
		DedupThreshold: 0.75,
		DedupEnabled:   true,
		CacheEnabled:   false,
		CacheTTL:       5 * time.Minute,
	}
}

// Scheduler fans crawl() out across every configured Source under a
// bounded worker pool.
type Scheduler struct {
	sources []crawl.Source
	health  *health.Tracker
	cache   *cache.Cache
	cfg     Config
	logger  *slog.Logger
}

// New builds a Scheduler. cache may be nil to disable result caching.
func New(sources []crawl.Source, healthTracker *health.Tracker, resultCache *cache.Cache, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sources: sources,
		health:  healthTracker,
		cache:   resultCache,
		cfg:     cfg,
		logger:  logger.With("component", "scheduler"),
	}
}

// sourceNames returns the scheduler's declared, stable source order.
func (s *Scheduler) sourceNames() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// Crawl runs the full pipeline: optional cache consult, parallel source
// fan-out, health bookkeeping, aggregation in declared source order, the
// Dedup Engine pass, and an optional cache write-back.
func (s *Scheduler) Crawl(ctx context.Context) ([]entity.Article, crawl.Stats, dedup.Stats) {
	key := cache.Key(s.sourceNames(), s.cfg.DedupThreshold)

	if s.cfg.CacheEnabled && s.cache != nil {
		if articles, rawStats, ok := s.cache.Load(key, s.cfg.CacheTTL); ok {
			metrics.RecordCacheLookup(true)
			stats := make(crawl.Stats, len(rawStats))
			for k, v := range rawStats {
				stats[k] = v
			}
			return articles, stats, dedup.Stats{TotalInput: len(articles), UniqueOutput: len(articles)}
		}
		metrics.RecordCacheLookup(false)
	}

	results := s.runAll(ctx)

	stats := make(crawl.Stats, len(results))
	var aggregate []entity.Article
	for _, r := range results {
		metrics.RecordSourceCrawl(r.SourceName, r.Latency, len(r.Articles), r.Err)
		if r.Err != nil {
			stats[r.SourceName] = crawl.FailedSentinel
			if s.health != nil {
				s.health.RecordFailure(r.SourceName)
			}
			s.logger.Warn("source failed", "source", r.SourceName, "error", r.Err)
			continue
		}
		stats[r.SourceName] = len(r.Articles)
		if s.health != nil {
			s.health.RecordSuccess(r.SourceName, len(r.Articles), r.Latency, 0)
		}
		aggregate = append(aggregate, r.Articles...)
	}

	deduped, dedupStats := dedup.Run(aggregate, dedup.Config{Threshold: s.cfg.DedupThreshold, Enabled: s.cfg.DedupEnabled}, s.logger)
	metrics.RecordDedup(dedupStats.TotalInput, dedupStats.TotalInput-dedupStats.UniqueOutput)
	metrics.ArticlesRetainedTotal.Set(float64(len(deduped)))

	if s.cfg.CacheEnabled && s.cache != nil {
		if err := s.cache.Save(key, deduped, stats); err != nil {
			s.logger.Warn("cache save failed", "error", err)
		}
	}

	if s.health != nil {
		if err := s.health.Save(); err != nil {
			s.logger.Debug("health save failed", "error", err)
		}
	}

	return deduped, stats, dedupStats
}

// runAll dispatches every source to a bounded worker pool and returns
// results in the scheduler's declared source order, regardless of
// completion order.
func (s *Scheduler) runAll(ctx context.Context) []crawl.Result {
	results := make([]crawl.Result, len(s.sources))
	maxWorkers := s.cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	sem := make(chan struct{}, maxWorkers)

	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		i, src := i, src
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			// Never return a non-nil error here: a single source's failure
			// must not cancel egCtx and abort its peers.
			results[i] = s.runSource(egCtx, src)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

// runSource invokes one source's Crawl, retrying up to cfg.Retries times on
// failure with exponential-ish backoff, each attempt bounded by its own
// source_timeout deadline.
func (s *Scheduler) runSource(ctx context.Context, src crawl.Source) crawl.Result {
	var lastErr error

	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
		start := time.Now()
		articles, err := safeCrawl(attemptCtx, src)
		latency := time.Since(start)
		cancel()

		if err == nil {
			return crawl.Result{SourceName: src.Name(), Articles: articles, Latency: latency}
		}

		lastErr = err
		if attempt < s.cfg.Retries {
			delay := backoff(attempt, s.backoffBase(), s.cfg.RetryJitter)
			select {
			case <-ctx.Done():
				return crawl.Result{SourceName: src.Name(), Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}

	return crawl.Result{SourceName: src.Name(), Err: lastErr}
}

// backoffBase returns the scheduler's configured backoff base, defaulting
// to 500ms when unset.
func (s *Scheduler) backoffBase() time.Duration {
	if s.cfg.BackoffBase > 0 {
		return s.cfg.BackoffBase
	}
	return 500 * time.Millisecond
}

// backoff computes base_backoff * 2^attempt * (1 +/- jitter), matching the
// fetcher's retry shape so a source's own retry loop and its HTTP calls'
// retry loop read the same to an operator.
func backoff(attempt int, base time.Duration, jitterFraction float64) time.Duration {
	delay := base * time.Duration(1<<attempt)
	if jitterFraction <= 0 {
		return delay
	}
	delta := (rand.Float64()*2 - 1) * jitterFraction
	return time.Duration(float64(delay) * (1 + delta))
}

// safeCrawl recovers from an adapter panic and turns it into an error, so
// one misbehaving Source implementation can never take down the scheduler.
func safeCrawl(ctx context.Context, src crawl.Source) (articles []entity.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source %s panicked: %v", src.Name(), r)
		}
	}()
	return src.Crawl(ctx)
}
