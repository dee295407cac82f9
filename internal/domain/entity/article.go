// Package entity defines the core data records shared across the crawl pipeline.
package entity

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"newsmesh/internal/domain/urlnorm"
)

// Article is the central record produced by a Source and carried through the
// dedup, history, filter, and story stages.
type Article struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Source        string     `json:"source"`
	Summary       string     `json:"summary"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Category      string     `json:"category"`
	QualityScore  float64    `json:"quality_score"`
	SourceCount   int        `json:"source_count"`
	Tags          []string   `json:"tags,omitempty"`
	Author        string     `json:"author,omitempty"`
	DiscussionURL string     `json:"discussion_url,omitempty"`
	Relevance     *float64   `json:"relevance,omitempty"`
}

// Defaults applied when decoding an older cache schema missing a field.
const (
	DefaultQualityScore = 0.5
	DefaultSourceCount  = 1
)

// ApplyDefaults fills zero-value fields with the schema defaults, letting a
// cache entry written by an older build decode forward-compatibly.
func (a *Article) ApplyDefaults() {
	if a.QualityScore == 0 {
		a.QualityScore = DefaultQualityScore
	}
	if a.SourceCount == 0 {
		a.SourceCount = DefaultSourceCount
	}
	if a.Category == "" {
		a.Category = "general"
	}
}

// normalizeTitle lowercases and collapses whitespace for identity hashing.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

func hash12(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// DedupKey is the exact-match identity: a hash of the normalized title and
// normalized URL. It is a pure function of content, never cached on the
// struct, so it always reflects the article's current field values.
func (a Article) DedupKey() string {
	return hash12(normalizeTitle(a.Title) + "|" + urlnorm.Normalize(a.URL))
}

// significantWords returns the sorted, unique, lowercased set of title words
// longer than 3 characters, the cross-source "same story" probe.
func significantWords(title string) []string {
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, ".,!?\"'():;")
		if len(w) > 3 {
			seen[w] = struct{}{}
		}
	}
	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// SignificantWords exposes the significant-word set for a title, shared with
// the dedup and story-clustering fuzzy probes.
func SignificantWords(title string) []string {
	return significantWords(title)
}

// TitleFingerprint is the fuzzy cross-source identity: a hash of the sorted
// significant-word set of the title. Fingerprints built from fewer than two
// significant words are considered empty (returns "").
func (a Article) TitleFingerprint() string {
	words := significantWords(a.Title)
	if len(words) < 2 {
		return ""
	}
	return hash12(strings.Join(words, " "))
}

// Story is a cluster of near-duplicate articles grouped for display rather
// than collapsed by the Dedup Engine.
type Story struct {
	Headline string
	Articles []Article
	Category string
}

// SourceCount returns the number of distinct source labels among members.
func (s Story) SourceCount() int {
	return len(s.Sources())
}

// Sources returns the ordered, unique source labels of the member articles.
func (s Story) Sources() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range s.Articles {
		if _, ok := seen[a.Source]; !ok {
			seen[a.Source] = struct{}{}
			out = append(out, a.Source)
		}
	}
	return out
}

// BestArticle returns the member with the highest quality score, preferring
// the earliest member on ties.
func (s Story) BestArticle() Article {
	best := s.Articles[0]
	for _, a := range s.Articles[1:] {
		if a.QualityScore > best.QualityScore {
			best = a
		}
	}
	return best
}

// LatestTimestamp returns the most recent timestamp among members, or nil if
// no member carries one.
func (s Story) LatestTimestamp() *time.Time {
	var latest *time.Time
	for _, a := range s.Articles {
		if a.Timestamp == nil {
			continue
		}
		if latest == nil || a.Timestamp.After(*latest) {
			latest = a.Timestamp
		}
	}
	return latest
}

// AvgQuality returns the mean quality score of all members.
func (s Story) AvgQuality() float64 {
	if len(s.Articles) == 0 {
		return 0
	}
	var total float64
	for _, a := range s.Articles {
		total += a.QualityScore
	}
	return total / float64(len(s.Articles))
}

// Score returns the ranking score used to sort stories: coverage-weighted
// quality. The coverage bonus is capped at 2, so sources past 6 add nothing.
func (s Story) Score() float64 {
	sourceCount := float64(s.SourceCount())
	bonus := sourceCount / 3
	if bonus > 2 {
		bonus = 2
	}
	return s.AvgQuality() * (1 + bonus)
}
