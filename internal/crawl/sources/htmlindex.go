package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"newsmesh/internal/crawl/fetcher"
	"newsmesh/internal/domain/entity"
	"newsmesh/internal/profile"

	"github.com/PuerkitoBio/goquery"
)

// IndexSelectors describes where to find article entries on a scraped HTML
// index page, grounded on the goquery selector idiom shown across the
// pack's scrapers (container + inner title/link/summary selectors rather
// than a bespoke parser per site).
type IndexSelectors struct {
	// Item selects each repeated entry container on the page (e.g. "article.post").
	Item string
	// Title selects the headline text within an Item, relative to it.
	Title string
	// Link selects the anchor carrying the article URL, relative to Item.
	// If empty, Title itself is expected to be (or contain) the anchor.
	Link string
	// Summary optionally selects a blurb/dek within an Item.
	Summary string
}

// HTMLIndexSource scrapes a single HTML listing page with goquery and maps
// matching entries into Article records. It does not follow links to fetch
// full article bodies, matching the "no full-text extraction" non-goal.
type HTMLIndexSource struct {
	name      string
	indexURL  string
	baseURL   *url.URL
	selectors IndexSelectors
	fetcher   *fetcher.Fetcher
	logger    *slog.Logger
}

// NewHTMLIndexSource builds an adapter for one index page.
func NewHTMLIndexSource(name, indexURL string, sel IndexSelectors, f *fetcher.Fetcher, logger *slog.Logger) (*HTMLIndexSource, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("htmlindex %s: invalid index url: %w", name, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLIndexSource{
		name:      name,
		indexURL:  indexURL,
		baseURL:   base,
		selectors: sel,
		fetcher:   f,
		logger:    logger.With("component", "sources.htmlindex", "source", name),
	}, nil
}

func (s *HTMLIndexSource) Name() string { return s.name }

func (s *HTMLIndexSource) Crawl(ctx context.Context) ([]entity.Article, error) {
	body := s.fetcher.FetchText(ctx, s.indexURL)
	if body == "" {
		return nil, fmt.Errorf("htmlindex %s: empty index response", s.name)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		s.logger.Warn("index parse failed", "error", err)
		return nil, err
	}

	var articles []entity.Article
	seen := make(map[string]struct{})

	doc.Find(s.selectors.Item).Each(func(_ int, item *goquery.Selection) {
		titleSel := item
		if s.selectors.Title != "" {
			titleSel = item.Find(s.selectors.Title).First()
		}
		title := strings.TrimSpace(titleSel.Text())
		if title == "" {
			return
		}

		linkSel := titleSel
		if s.selectors.Link != "" {
			linkSel = item.Find(s.selectors.Link).First()
		}
		href, ok := linkSel.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved := s.resolve(href)
		if resolved == "" {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}

		summary := ""
		if s.selectors.Summary != "" {
			summary = strings.TrimSpace(item.Find(s.selectors.Summary).First().Text())
		}

		articles = append(articles, entity.Article{
			Title:        title,
			URL:          resolved,
			Source:       s.name,
			Summary:      summary,
			Category:     classifyCategory(title, nil),
			QualityScore: profile.SourceWeight(s.name),
			SourceCount:  entity.DefaultSourceCount,
		})
	})

	return articles, nil
}

// resolve turns a possibly-relative href into an absolute URL against the
// index page's own URL, returning "" if it cannot be parsed.
func (s *HTMLIndexSource) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return s.baseURL.ResolveReference(ref).String()
}
