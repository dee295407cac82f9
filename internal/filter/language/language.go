// Package language detects an article's probable language from its title
// and summary, for use by the filter chain's language include/exclude
// stage. Grounded on original_source/clawler/language.py: script-based
// detection first, then stop-word-frequency scoring over a small
// per-language word list. No external dependencies, matching the
// original's "no external dependencies required" design.
package language

import (
	"regexp"
	"sort"
	"strings"

	"newsmesh/internal/domain/entity"
)

var stopWords = map[string]map[string]struct{}{
	"en": set("the", "and", "for", "that", "with", "this", "from", "have", "has",
		"are", "was", "were", "been", "will", "would", "could", "should",
		"about", "into", "more", "your", "their", "which", "when", "what",
		"than", "after", "before", "also", "just", "how", "its", "over"),
	"es": set("que", "los", "las", "del", "por", "con", "una", "para", "como",
		"pero", "sus", "más", "este", "esta", "ser", "entre", "cuando",
		"muy", "sin", "sobre", "también", "hasta", "desde", "donde"),
	"fr": set("les", "des", "une", "que", "est", "dans", "pour", "qui", "sur",
		"pas", "plus", "par", "avec", "son", "sont", "mais", "ont", "ses",
		"aux", "cette", "tout", "nous", "vous", "leur", "entre", "après"),
	"de": set("der", "die", "und", "den", "von", "das", "ist", "des", "auf",
		"für", "mit", "sich", "dem", "nicht", "ein", "eine", "als",
		"auch", "nach", "wie", "aus", "bei", "oder", "nur", "noch"),
	"pt": set("que", "para", "com", "uma", "dos", "por", "não", "mais", "como",
		"mas", "foi", "são", "sua", "seu", "das", "nos", "entre", "pelo",
		"tem", "ser", "está", "sobre", "também", "quando", "muito"),
	"it": set("che", "per", "una", "del", "con", "non", "sono", "della", "anche",
		"più", "suo", "sua", "dei", "dal", "gli", "nel", "alla", "questo",
		"essere", "come", "stato", "tra", "dopo", "tutto", "molto"),
	"nl": set("het", "een", "van", "dat", "met", "voor", "zijn", "maar", "niet",
		"ook", "nog", "uit", "naar", "wel", "dan", "hun", "alle", "deze"),
}

// langOrder fixes iteration order so ties resolve deterministically, since
// Go map iteration order is randomized.
var langOrder = []string{"en", "es", "fr", "de", "pt", "it", "nl"}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var (
	hiraganaKatakana = regexp.MustCompile(`[\x{3040}-\x{309f}\x{30a0}-\x{30ff}]`)
	hangul           = regexp.MustCompile(`[\x{ac00}-\x{d7af}\x{1100}-\x{11ff}]`)
	cjk              = regexp.MustCompile(`[\x{4e00}-\x{9fff}\x{3400}-\x{4dbf}]`)
	cyrillic         = regexp.MustCompile(`[\x{0400}-\x{04ff}]`)
	arabic           = regexp.MustCompile(`[\x{0600}-\x{06ff}]`)
	wordRE           = regexp.MustCompile(`[a-zà-öø-ÿ]+`)
)

const minConfidence = 0.05

// Detect returns an ISO 639-1 language code, or "unknown" when no script or
// stop-word signal clears the minimum confidence threshold.
func Detect(a entity.Article) string {
	text := a.Title + " " + a.Summary

	switch {
	case hiraganaKatakana.MatchString(text):
		return "ja"
	case hangul.MatchString(text):
		return "ko"
	}

	runeLen := float64(len([]rune(text)))
	if runeLen == 0 {
		return "unknown"
	}
	if float64(len(cjk.FindAllString(text, -1))) > runeLen*0.1 {
		return "zh"
	}
	if float64(len(cyrillic.FindAllString(text, -1))) > runeLen*0.15 {
		return "ru"
	}
	if float64(len(arabic.FindAllString(text, -1))) > runeLen*0.15 {
		return "ar"
	}

	words := wordRE.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return "unknown"
	}

	bestLang := "unknown"
	bestScore := 0.0
	for _, lang := range langOrder {
		stop := stopWords[lang]
		matches := 0
		for _, w := range words {
			if _, ok := stop[w]; ok {
				matches++
			}
		}
		score := float64(matches) / float64(len(words))
		if score > bestScore {
			bestScore = score
			bestLang = lang
		}
	}

	if bestScore < minConfidence {
		return "unknown"
	}
	return bestLang
}

// Filter keeps or drops articles by detected language. include/exclude are
// comma-separated ISO codes; either may be empty. A nil-equivalent call
// (both empty) is a no-op, matching the filter chain's "null argument is a
// no-op" rule. An "unknown" detection always passes an include list.
func Filter(articles []entity.Article, include, exclude string) []entity.Article {
	if include == "" && exclude == "" {
		return articles
	}

	includeSet := splitCodes(include)
	excludeSet := splitCodes(exclude)

	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		detected := Detect(a)
		if len(excludeSet) > 0 {
			if _, excluded := excludeSet[detected]; excluded {
				continue
			}
		}
		if len(includeSet) > 0 {
			if _, included := includeSet[detected]; !included && detected != "unknown" {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func splitCodes(csv string) map[string]struct{} {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// SupportedLanguages lists every code Detect can return besides "unknown",
// sorted, mainly useful for CLI help text.
func SupportedLanguages() []string {
	out := make([]string, 0, len(langOrder)+5)
	out = append(out, langOrder...)
	out = append(out, "zh", "ja", "ko", "ru", "ar")
	sort.Strings(out)
	return out
}
