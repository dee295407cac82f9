// Package tone classifies an article's tone from keyword heuristics, for
// the filter chain's tone/no_doom stage. Grounded on
// original_source/clawler/sentiment.py.
package tone

import (
	"regexp"
	"strings"

	"newsmesh/internal/domain/entity"
)

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

var positiveWords = map[string]struct{}{
	"breakthrough": {}, "launch": {}, "launched": {}, "launches": {}, "innovation": {}, "innovate": {},
	"milestone": {}, "award": {}, "awarded": {}, "success": {}, "successful": {}, "achieve": {},
	"achievement": {}, "discover": {}, "discovered": {}, "discovery": {}, "cure": {}, "solution": {},
	"improve": {}, "improved": {}, "improvement": {}, "grow": {}, "growth": {}, "record-breaking": {},
	"celebrate": {}, "exciting": {}, "open-source": {}, "free": {}, "release": {}, "released": {},
	"upgrade": {}, "progress": {}, "win": {}, "winning": {}, "won": {}, "partnership": {}, "fund": {},
	"funded": {}, "funding": {}, "grant": {}, "save": {}, "saved": {}, "rescue": {}, "rescued": {},
	"volunteer": {}, "donate": {}, "donation": {}, "community": {}, "empower": {}, "thrive": {},
}

var negativeWords = map[string]struct{}{
	"crash": {}, "crisis": {}, "disaster": {}, "catastrophe": {}, "catastrophic": {}, "collapse": {},
	"collapsed": {}, "kill": {}, "killed": {}, "killing": {}, "death": {}, "dead": {}, "die": {}, "dies": {},
	"attack": {}, "attacked": {}, "war": {}, "bomb": {}, "bombing": {}, "explosion": {}, "explode": {},
	"threat": {}, "threaten": {}, "hack": {}, "hacked": {}, "breach": {}, "breached": {}, "leak": {},
	"leaked": {}, "scandal": {}, "fraud": {}, "scam": {}, "arrest": {}, "arrested": {}, "prison": {},
	"jail": {}, "lawsuit": {}, "layoff": {}, "layoffs": {}, "fired": {}, "shutdown": {}, "bankrupt": {},
	"bankruptcy": {}, "recession": {}, "decline": {}, "plunge": {}, "plunged": {}, "suffer": {},
	"victim": {}, "devastate": {}, "devastating": {}, "surge": {}, "worst": {}, "fail": {}, "failed": {},
	"failure": {}, "warning": {}, "danger": {}, "dangerous": {}, "toxic": {}, "pollution": {},
}

var wordRE = regexp.MustCompile(`[a-z]+(?:-[a-z]+)*`)

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordRE.FindAllString(strings.ToLower(s), -1) {
		out[w] = struct{}{}
	}
	return out
}

func overlapCount(words map[string]struct{}, dict map[string]struct{}) int {
	n := 0
	for w := range words {
		if _, ok := dict[w]; ok {
			n++
		}
	}
	return n
}

// Classify returns Positive, Negative, or Neutral based on title (weighted
// 3x) and summary keyword hits. A score needs to both lead the other side
// and reach 2 to avoid classifying borderline articles.
func Classify(a entity.Article) string {
	titleWords := wordSet(a.Title)
	summaryWords := wordSet(a.Summary)

	posScore := overlapCount(titleWords, positiveWords)*3 + overlapCount(summaryWords, positiveWords)
	negScore := overlapCount(titleWords, negativeWords)*3 + overlapCount(summaryWords, negativeWords)

	switch {
	case posScore > negScore && posScore >= 2:
		return Positive
	case negScore > posScore && negScore >= 2:
		return Negative
	default:
		return Neutral
	}
}

// Filter keeps articles matching tone (if non-empty) and drops Negative
// articles when noDoom is set. A call with tone=="" and noDoom==false is a
// no-op.
func Filter(articles []entity.Article, tone string, noDoom bool) []entity.Article {
	if tone == "" && !noDoom {
		return articles
	}

	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		t := Classify(a)
		if noDoom && t == Negative {
			continue
		}
		if tone != "" && t != tone {
			continue
		}
		out = append(out, a)
	}
	return out
}
