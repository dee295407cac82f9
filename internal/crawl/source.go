// Package crawl defines the Source contract and the aggregate crawl result
// types shared by the scheduler and every adapter package.
package crawl

import (
	"context"
	"time"

	"newsmesh/internal/domain/entity"
)

// Source is the uniform contract every upstream adapter implements. An
// implementation fetches one or more upstream endpoints, parses them into
// Article records, and self-deduplicates its own result list by URL.
// Crawl must be idempotent and side-effect-free except for network calls,
// and must never panic or return an error the caller has to handle: a
// failed upstream call is reported as an empty slice plus an error value
// the scheduler uses only for health bookkeeping, never propagated further.
type Source interface {
	// Name is a stable, short, lowercase key such as "hn" or "rss".
	Name() string

	// Crawl fetches and parses the upstream, returning Article records. An
	// adapter that encounters a network or parse failure returns a nil or
	// empty slice and a non-nil error; it never panics.
	Crawl(ctx context.Context) ([]entity.Article, error)
}

// RetryPolicy carries per-source retry tuning (retry count and jitter
// fraction). The scheduler does not read it; its retries come from
// scheduler.Config.
type RetryPolicy struct {
	MaxRetries  int
	RetryJitter float64
}

// DefaultRetryPolicy returns two retries with a 0.5 jitter fraction, the
// same values as the shared HTTP fetcher's defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, RetryJitter: 0.5}
}

// Stats is the per-source article count map the scheduler returns alongside
// the aggregated article list. A value of -1 denotes total source failure.
type Stats map[string]int

// FailedSentinel is the stats value recorded for a source that failed every
// attempt.
const FailedSentinel = -1

// Result is what a single source invocation produces, including the
// wall-clock latency of the attempt that succeeded (used by the Health
// Tracker to compute percentiles).
type Result struct {
	SourceName string
	Articles   []entity.Article
	Err        error
	Latency    time.Duration
}
