// Package readtime estimates an article's reading time from title+summary
// word count, since the crawl pipeline never fetches full article text.
// Grounded on original_source/clawler/readtime.py.
package readtime

import (
	"fmt"
	"strings"

	"newsmesh/internal/domain/entity"
)

// wpm is the assumed reading speed, lowered from the ~238 WPM average adult
// rate to account for technical content.
const wpm = 200

// Estimate returns the estimated reading time in minutes from title and
// summary word count. The ×3 multiplier in the 50-150 and >150 bands
// compensates for a summary being much shorter than the full article.
func Estimate(a entity.Article) int {
	text := strings.TrimSpace(a.Title + " " + a.Summary)
	words := len(strings.Fields(text))

	switch {
	case words < 50:
		return 2
	case words <= 150:
		return maxInt(3, roundDiv(words*3, wpm))
	default:
		return maxInt(5, roundDiv(words*3, wpm))
	}
}

func roundDiv(n, d int) int {
	if n < 0 {
		return -roundDiv(-n, d)
	}
	return (n + d/2) / d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Format renders a reading time for display, e.g. "3 min read".
func Format(minutes int) string {
	if minutes < 1 {
		return "<1 min"
	}
	return fmt.Sprintf("%d min read", minutes)
}

// Filter keeps articles whose estimated reading time falls within
// [min, max] minutes. A nil bound is unchecked; both nil is a no-op.
func Filter(articles []entity.Article, min, max *int) []entity.Article {
	if min == nil && max == nil {
		return articles
	}

	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		rt := Estimate(a)
		if min != nil && rt < *min {
			continue
		}
		if max != nil && rt > *max {
			continue
		}
		out = append(out, a)
	}
	return out
}
