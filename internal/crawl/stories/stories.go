// Package stories implements the Story Clusterer: grouping near-duplicate
// articles into Story records for display, reusing the dedup engine's
// word-overlap + similarity-ratio probe at a lower threshold so related
// coverage is grouped rather than eliminated. Grounded on
// original_source/clawler/stories.py.
package stories

import (
	"math"
	"sort"
	"strings"

	"newsmesh/internal/crawl/simtext"
	"newsmesh/internal/domain/entity"
)

// DefaultThreshold is the similarity cutoff used when the caller doesn't
// supply one, lower than the dedup engine's default since clustering wants
// to catch related (not just duplicate) coverage.
const DefaultThreshold = 0.65

type titleIndexEntry struct {
	titleLower string
	length     int
	words      []string
	storyIdx   int
}

// Cluster groups articles into Story records ranked by Score() descending.
// Every input article belongs to exactly one output story, preserving the
// partition invariant.
func Cluster(articles []entity.Article, threshold float64) []entity.Story {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var clusters []entity.Story
	var index []titleIndexEntry

	for _, a := range articles {
		titleLower := strings.ToLower(strings.TrimSpace(a.Title))
		length := len(titleLower)
		words := entity.SignificantWords(a.Title)

		matched := -1
		for i := range index {
			ie := &index[i]
			maxLen := math.Max(float64(length), float64(ie.length))
			if math.Abs(float64(length-ie.length)) > maxLen*(1-threshold) {
				continue
			}
			if len(words) > 0 && len(ie.words) > 0 && !simtext.WordOverlaps(words, ie.words) {
				continue
			}
			if simtext.Ratio(titleLower, ie.titleLower) > threshold {
				matched = ie.storyIdx
				break
			}
		}

		if matched >= 0 {
			story := &clusters[matched]
			currentBest := story.BestArticle()
			story.Articles = append(story.Articles, a)
			if a.QualityScore > currentBest.QualityScore {
				story.Headline = a.Title
			}
			for i := range index {
				if index[i].storyIdx == matched {
					index[i] = titleIndexEntry{titleLower: titleLower, length: length, words: words, storyIdx: matched}
					break
				}
			}
			continue
		}

		idx := len(clusters)
		clusters = append(clusters, entity.Story{
			Headline: a.Title,
			Articles: []entity.Article{a},
			Category: a.Category,
		})
		index = append(index, titleIndexEntry{titleLower: titleLower, length: length, words: words, storyIdx: idx})
	}

	sort.SliceStable(clusters, func(i, j int) bool { return clusters[i].Score() > clusters[j].Score() })
	return clusters
}
