package sources

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"newsmesh/internal/crawl/fetcher"
	"newsmesh/internal/domain/entity"
)

// hnItem mirrors the fields the Hacker News Firebase API exposes for a
// story item; unused fields (kids, descendants for non-stories, etc.) are
// simply never decoded.
type hnItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
	Kids  int    `json:"descendants"`
}

// HackerNewsSource crawls the public Hacker News Firebase JSON API,
// grounded on the plain net/http polling pattern shown across the pack's
// hn-telegram-bot variants, rebuilt on top of the shared fetcher.Fetcher so
// every call benefits from the common rate limit, circuit breaker, and
// retry policy.
type HackerNewsSource struct {
	baseURL  string
	limit    int
	fetcher  *fetcher.Fetcher
	logger   *slog.Logger
}

// NewHackerNewsSource builds the adapter. limit caps how many of the top
// stories are fetched per crawl (the API itself returns up to 500 ids).
func NewHackerNewsSource(limit int, f *fetcher.Fetcher, logger *slog.Logger) *HackerNewsSource {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 30
	}
	return &HackerNewsSource{
		baseURL: "https://hacker-news.firebaseio.com/v0",
		limit:   limit,
		fetcher: f,
		logger:  logger.With("component", "sources.hackernews"),
	}
}

func (s *HackerNewsSource) Name() string { return "hn" }

// Crawl fetches the top-stories id list, then each item concurrently is
// deliberately avoided here: the shared fetcher already rate-limits this
// single host, so sequential fetches respect that budget without a second
// layer of coordination.
func (s *HackerNewsSource) Crawl(ctx context.Context) ([]entity.Article, error) {
	var ids []int
	if !s.fetcher.FetchJSON(ctx, s.baseURL+"/topstories.json", &ids) {
		return nil, fmt.Errorf("hn: failed to fetch top stories")
	}
	if len(ids) > s.limit {
		ids = ids[:s.limit]
	}

	articles := make([]entity.Article, 0, len(ids))
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return articles, ctx.Err()
		default:
		}

		var item hnItem
		if !s.fetcher.FetchJSON(ctx, fmt.Sprintf("%s/item/%d.json", s.baseURL, id), &item) {
			continue
		}
		if item.Type != "story" || item.Title == "" {
			continue
		}

		url := item.URL
		discussion := fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
		if url == "" {
			url = discussion
			discussion = ""
		}

		var ts *time.Time
		if item.Time > 0 {
			t := time.Unix(item.Time, 0).UTC()
			ts = &t
		}

		a := entity.Article{
			Title:         item.Title,
			URL:           url,
			Source:        s.Name(),
			Timestamp:     ts,
			Category:      classifyCategory(item.Title, nil),
			QualityScore:  hnQualityScore(item.Score, item.Kids),
			SourceCount:   entity.DefaultSourceCount,
			Author:        item.By,
			DiscussionURL: discussion,
			Tags:          []string{"hn"},
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// hnQualityScore maps HN's prominence signals (points and comment count)
// onto the [0,1] quality range with diminishing returns past roughly the
// front page's top entries.
func hnQualityScore(score, comments int) float64 {
	q := 0.4 + 0.3*math.Min(1, float64(score)/300) + 0.3*math.Min(1, float64(comments)/150)
	if q > 1 {
		q = 1
	}
	return q
}
