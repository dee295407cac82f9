// Package dedup implements the three-stage Dedup Engine: exact dedup_key
// match, title_fingerprint match, and fuzzy title-similarity match, each
// with quality-aware replace-or-drop. Grounded on
// original_source/clawler/dedup.py, generalized from its two-stage
// (exact + fuzzy) form to the full three-stage spec.
package dedup

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"newsmesh/internal/crawl/simtext"
	"newsmesh/internal/domain/entity"
)

// Config tunes one dedup pass.
type Config struct {
	Threshold float64
	Enabled   bool
}

// Stats counts how many articles were collapsed at each stage.
type Stats struct {
	TotalInput       int `json:"total_input"`
	UniqueOutput     int `json:"unique_output"`
	ExactDupes       int `json:"exact_dupes"`
	FingerprintDupes int `json:"fingerprint_dupes"`
	FuzzyDupes       int `json:"fuzzy_dupes"`
}

// TotalRemoved is the count of articles collapsed across all three stages.
func (s Stats) TotalRemoved() int {
	return s.ExactDupes + s.FingerprintDupes + s.FuzzyDupes
}

// Summary renders the one-line "N → M (removed K)" report.
func (s Stats) Summary() string {
	return fmt.Sprintf("%d → %d (removed %d)", s.TotalInput, s.UniqueOutput, s.TotalRemoved())
}

// fuzzyEntry is the (normalized_title_lower, length, significant_word_set,
// emitted_index) tuple the fuzzy stage indexes candidates against.
type fuzzyEntry struct {
	titleLower string
	length     int
	words      []string
	index      int
}

// Run collapses articles to their unique set. When cfg.Enabled is false,
// the input is returned unchanged with stats.TotalInput == stats.UniqueOutput.
func Run(articles []entity.Article, cfg Config, logger *slog.Logger) ([]entity.Article, Stats) {
	if logger == nil {
		logger = slog.Default()
	}
	stats := Stats{TotalInput: len(articles)}

	if !cfg.Enabled {
		stats.UniqueOutput = len(articles)
		return articles, stats
	}

	output := make([]entity.Article, 0, len(articles))
	exactIndex := make(map[string]int, len(articles))
	fingerprintIndex := make(map[string]int, len(articles))
	var fuzzyIndex []fuzzyEntry

	for _, a := range articles {
		key := a.DedupKey()
		if idx, ok := exactIndex[key]; ok {
			stats.ExactDupes++
			replaceIfBetter(output, idx, a)
			continue
		}

		fp := a.TitleFingerprint()
		if fp != "" {
			if idx, ok := fingerprintIndex[fp]; ok {
				stats.FingerprintDupes++
				replaceIfBetter(output, idx, a)
				continue
			}
		}

		titleLower := strings.ToLower(strings.TrimSpace(a.Title))
		length := len(titleLower)
		words := entity.SignificantWords(a.Title)

		matched := -1
		for i := range fuzzyIndex {
			fe := &fuzzyIndex[i]
			maxLen := math.Max(float64(length), float64(fe.length))
			if math.Abs(float64(length-fe.length)) > maxLen*(1-cfg.Threshold) {
				continue
			}
			if len(words) > 0 && len(fe.words) > 0 && !simtext.WordOverlaps(words, fe.words) {
				continue
			}
			if simtext.Ratio(titleLower, fe.titleLower) > cfg.Threshold {
				matched = i
				break
			}
		}

		if matched >= 0 {
			stats.FuzzyDupes++
			fe := &fuzzyIndex[matched]
			if replaceIfBetter(output, fe.index, a) {
				// Rewrite the index entry so later candidates match the
				// replacement's title, not the dropped one.
				fe.titleLower = titleLower
				fe.length = length
				fe.words = words
			}
			continue
		}

		output = append(output, a)
		idx := len(output) - 1
		exactIndex[key] = idx
		if fp != "" {
			fingerprintIndex[fp] = idx
		}
		fuzzyIndex = append(fuzzyIndex, fuzzyEntry{titleLower: titleLower, length: length, words: words, index: idx})
	}

	stats.UniqueOutput = len(output)
	logger.Debug("dedup complete", "input", stats.TotalInput, "output", stats.UniqueOutput,
		"exact", stats.ExactDupes, "fingerprint", stats.FingerprintDupes, "fuzzy", stats.FuzzyDupes)
	return output, stats
}

// replaceIfBetter overwrites output[idx] with candidate when candidate has
// strictly higher quality, preserving the incumbent's output position.
// Reports whether a replacement occurred.
func replaceIfBetter(output []entity.Article, idx int, candidate entity.Article) bool {
	if candidate.QualityScore > output[idx].QualityScore {
		output[idx] = candidate
		return true
	}
	return false
}
