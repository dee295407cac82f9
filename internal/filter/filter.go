// Package filter implements the post-crawl Filter Chain: a fixed,
// documented sequence of article-list transforms, each a pure function
// over the list with a no-op default when its argument is unset.
// Grounded on spec.md §4.9 and the constituent original_source modules
// (language.py, readtime.py, sentiment.py, profile.py) each ported to a
// subpackage.
package filter

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"newsmesh/internal/domain/entity"
	"newsmesh/internal/filter/language"
	"newsmesh/internal/filter/readtime"
	"newsmesh/internal/filter/tone"
	"newsmesh/internal/profile"
)

// Config carries every optional filter-chain criterion. A zero-value field
// (empty string, nil pointer, zero time) disables that stage.
type Config struct {
	CategoryInclude []string
	CategoryExclude []string

	SourceInclude []string
	SourceExclude []string

	Search  string
	Exclude string

	Since *time.Time

	MinQuality *float64

	LangInclude string
	LangExclude string

	MinReadMinutes *int
	MaxReadMinutes *int

	Tone   string
	NoDoom bool

	TagInclude []string
	TagExclude []string

	AuthorInclude []string
	AuthorExclude []string

	Profile      *profile.Profile
	MinRelevance float64

	Limit  *int
	Sample *int
}

// Run applies every stage of the chain in the documented order, returning a
// new slice; the input slice is never mutated in place.
func Run(articles []entity.Article, cfg Config) []entity.Article {
	out := append([]entity.Article(nil), articles...)

	out = filterCategory(out, cfg.CategoryInclude, cfg.CategoryExclude)
	out = filterSource(out, cfg.SourceInclude, cfg.SourceExclude)
	out = filterKeyword(out, cfg.Search, cfg.Exclude)
	out = filterSince(out, cfg.Since)
	out = filterQuality(out, cfg.MinQuality)
	out = language.Filter(out, cfg.LangInclude, cfg.LangExclude)
	out = readtime.Filter(out, cfg.MinReadMinutes, cfg.MaxReadMinutes)
	out = tone.Filter(out, cfg.Tone, cfg.NoDoom)
	out = filterTags(out, cfg.TagInclude, cfg.TagExclude)
	out = filterAuthor(out, cfg.AuthorInclude, cfg.AuthorExclude)
	out = applyProfile(out, cfg.Profile, cfg.MinRelevance)
	out = applyLimit(out, cfg.Limit)
	out = applySample(out, cfg.Sample)

	return out
}

func containsFold(list []string, value string) bool {
	for _, s := range list {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

func containsSubstringFold(list []string, value string) bool {
	lower := strings.ToLower(value)
	for _, s := range list {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// 1. Category include/exclude.
func filterCategory(articles []entity.Article, include, exclude []string) []entity.Article {
	if len(include) == 0 && len(exclude) == 0 {
		return articles
	}
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if len(exclude) > 0 && containsFold(exclude, a.Category) {
			continue
		}
		if len(include) > 0 && !containsFold(include, a.Category) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// 2. Source substring include/exclude.
func filterSource(articles []entity.Article, include, exclude []string) []entity.Article {
	if len(include) == 0 && len(exclude) == 0 {
		return articles
	}
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if len(exclude) > 0 && containsSubstringFold(exclude, a.Source) {
			continue
		}
		if len(include) > 0 && !containsSubstringFold(include, a.Source) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// 3. Title+summary keyword include (search) / exclude.
func filterKeyword(articles []entity.Article, search, exclude string) []entity.Article {
	if search == "" && exclude == "" {
		return articles
	}
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Summary)
		if exclude != "" && strings.Contains(text, strings.ToLower(exclude)) {
			continue
		}
		if search != "" && !strings.Contains(text, strings.ToLower(search)) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// 4. Time window (since).
func filterSince(articles []entity.Article, since *time.Time) []entity.Article {
	if since == nil {
		return articles
	}
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.Timestamp == nil || a.Timestamp.Before(*since) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// 5. Quality floor.
func filterQuality(articles []entity.Article, min *float64) []entity.Article {
	if min == nil {
		return articles
	}
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.QualityScore < *min {
			continue
		}
		out = append(out, a)
	}
	return out
}

// 9. Tag include, tag exclude.
func filterTags(articles []entity.Article, include, exclude []string) []entity.Article {
	if len(include) == 0 && len(exclude) == 0 {
		return articles
	}
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if len(exclude) > 0 && anyTagMatches(a.Tags, exclude) {
			continue
		}
		if len(include) > 0 && !anyTagMatches(a.Tags, include) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func anyTagMatches(tags, list []string) bool {
	for _, t := range tags {
		if containsFold(list, t) {
			return true
		}
	}
	return false
}

// 10. Author include, author exclude.
func filterAuthor(articles []entity.Article, include, exclude []string) []entity.Article {
	if len(include) == 0 && len(exclude) == 0 {
		return articles
	}
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.Author == "" {
			if len(include) > 0 {
				continue
			}
			out = append(out, a)
			continue
		}
		if len(exclude) > 0 && containsSubstringFold(exclude, a.Author) {
			continue
		}
		if len(include) > 0 && !containsSubstringFold(include, a.Author) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// 11. Profile relevance scoring: populates Relevance, filters by
// min_relevance, re-sorts by relevance desc.
func applyProfile(articles []entity.Article, p *profile.Profile, minRelevance float64) []entity.Article {
	if p == nil {
		return articles
	}
	scored := profile.Score(articles, *p)
	if minRelevance <= 0 {
		return scored
	}
	out := make([]entity.Article, 0, len(scored))
	for _, a := range scored {
		if a.Relevance != nil && *a.Relevance >= minRelevance {
			out = append(out, a)
		}
	}
	return out
}

// 12. Final truncation to limit.
func applyLimit(articles []entity.Article, limit *int) []entity.Article {
	if limit == nil || *limit < 0 || *limit >= len(articles) {
		return articles
	}
	return articles[:*limit]
}

// 13. Optional uniform random sample of sample elements.
func applySample(articles []entity.Article, sample *int) []entity.Article {
	if sample == nil || *sample >= len(articles) {
		return articles
	}
	if *sample <= 0 {
		return articles[:0]
	}
	shuffled := append([]entity.Article(nil), articles...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	result := shuffled[:*sample]
	sort.SliceStable(result, func(i, j int) bool {
		return indexOf(articles, result[i]) < indexOf(articles, result[j])
	})
	return result
}

func indexOf(articles []entity.Article, target entity.Article) int {
	for i, a := range articles {
		if a.URL == target.URL && a.Title == target.Title {
			return i
		}
	}
	return -1
}
