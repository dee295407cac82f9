package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsmesh/internal/crawl"
	"newsmesh/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a test double implementing crawl.Source.
type fakeSource struct {
	name     string
	articles []entity.Article
	err      error
	sleep    time.Duration
	panics   bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Crawl(ctx context.Context) ([]entity.Article, error) {
	if f.panics {
		panic("boom")
	}
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func testConfig() Config {
	return Config{
		MaxWorkers:     4,
		SourceTimeout:  time.Second,
		Retries:        0,
		RetryJitter:    0,
		DedupThreshold: 0.75,
		DedupEnabled:   true,
	}
}

func TestScheduler_TimeoutIsolation_PeerSourceUnaffected(t *testing.T) {
	slow := &fakeSource{name: "slow", sleep: 10 * time.Second}
	fast := &fakeSource{name: "fast", articles: []entity.Article{
		{Title: "One", URL: "https://a.com/1"},
		{Title: "Two", URL: "https://a.com/2"},
		{Title: "Three", URL: "https://a.com/3"},
	}}

	cfg := testConfig()
	cfg.SourceTimeout = 50 * time.Millisecond

	s := New([]crawl.Source{slow, fast}, nil, nil, cfg, nil)
	articles, stats, _ := s.Crawl(context.Background())

	assert.Equal(t, crawl.FailedSentinel, stats["slow"])
	assert.Equal(t, 3, stats["fast"])
	assert.Len(t, articles, 3)
}

func TestScheduler_SourceError_DoesNotReduceOthers(t *testing.T) {
	broken := &fakeSource{name: "broken", err: errors.New("upstream 500")}
	ok := &fakeSource{name: "ok", articles: []entity.Article{
		{Title: "Alpha", URL: "https://a.com/1"},
		{Title: "Beta", URL: "https://a.com/2"},
	}}

	s := New([]crawl.Source{broken, ok}, nil, nil, testConfig(), nil)
	articles, stats, _ := s.Crawl(context.Background())

	assert.Equal(t, crawl.FailedSentinel, stats["broken"])
	assert.Equal(t, 2, stats["ok"])
	assert.Len(t, articles, 2)
}

func TestScheduler_SourcePanic_IsRecoveredAndIsolated(t *testing.T) {
	exploding := &fakeSource{name: "exploding", panics: true}
	ok := &fakeSource{name: "ok", articles: []entity.Article{{Title: "Fine", URL: "https://a.com/1"}}}

	s := New([]crawl.Source{exploding, ok}, nil, nil, testConfig(), nil)
	articles, stats, _ := s.Crawl(context.Background())

	assert.Equal(t, crawl.FailedSentinel, stats["exploding"])
	assert.Equal(t, 1, stats["ok"])
	require.Len(t, articles, 1)
}

func TestScheduler_AggregatesAndDedups(t *testing.T) {
	a := &fakeSource{name: "a", articles: []entity.Article{
		{Title: "Senate passes the new budget bill today", URL: "https://a.com/1", QualityScore: 0.4},
	}}
	b := &fakeSource{name: "b", articles: []entity.Article{
		{Title: "Senate passes the new budget bill today", URL: "https://b.com/1", QualityScore: 0.9},
	}}

	s := New([]crawl.Source{a, b}, nil, nil, testConfig(), nil)
	articles, _, dedupStats := s.Crawl(context.Background())

	require.Len(t, articles, 1)
	assert.Equal(t, 0.9, articles[0].QualityScore)
	assert.Equal(t, 1, dedupStats.FingerprintDupes)
}

func TestScheduler_RetriesBeforeGivingUp(t *testing.T) {
	attempts := 0
	flaky := &countingSource{
		name: "flaky",
		fn: func() ([]entity.Article, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("transient")
			}
			return []entity.Article{{Title: "Recovered", URL: "https://a.com/1"}}, nil
		},
	}

	cfg := testConfig()
	cfg.Retries = 2
	cfg.BackoffBase = time.Millisecond

	s := New([]crawl.Source{flaky}, nil, nil, cfg, nil)
	articles, stats, _ := s.Crawl(context.Background())

	assert.Equal(t, 1, stats["flaky"])
	require.Len(t, articles, 1)
	assert.GreaterOrEqual(t, attempts, 2)
}

type countingSource struct {
	name string
	fn   func() ([]entity.Article, error)
}

func (c *countingSource) Name() string { return c.name }
func (c *countingSource) Crawl(ctx context.Context) ([]entity.Article, error) {
	return c.fn()
}
