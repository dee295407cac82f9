// Package profile implements interest-profile scoring for personalized
// article ranking. Grounded on original_source/clawler/profile.py, loaded
// via gopkg.in/yaml.v3 (already wired by the teacher) for the YAML form and
// the standard library's encoding/json for the JSON form.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"newsmesh/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// Interest is one weighted keyword group.
type Interest struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Weight   float64  `yaml:"weight" json:"weight"`
}

// Profile is a named set of interest groups used to score articles for
// relevance.
type Profile struct {
	Name      string     `yaml:"name" json:"name"`
	Interests []Interest `yaml:"interests" json:"interests"`
}

// FromInterestsString builds a Profile from the CLI shorthand
// "AI, rust, skateboarding": one interest group per comma-separated token,
// each with weight 1.0.
func FromInterestsString(s string) Profile {
	var interests []Interest
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		interests = append(interests, Interest{Keywords: []string{tok}, Weight: 1.0})
	}
	return Profile{Interests: interests}
}

// Load reads a Profile from a YAML (.yaml/.yml) or JSON (.json) file.
// Config/profile failures are returned to the caller before crawl starts,
// per spec.md §7.
func Load(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}

	var p Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return Profile{}, fmt.Errorf("profile: parsing %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &p); err != nil {
			return Profile{}, fmt.Errorf("profile: parsing %s: %w", path, err)
		}
	default:
		return Profile{}, fmt.Errorf("profile: unsupported format %q", ext)
	}
	return p, nil
}

// scoreArticle returns the raw weighted relevance score for one article
// against a profile's interest groups, with diminishing returns for
// multiple keyword hits inside the same group.
func scoreArticle(a entity.Article, interests []Interest) float64 {
	text := strings.ToLower(a.Title + " " + a.Summary)
	var total float64
	for _, interest := range interests {
		hits := 0
		for _, kw := range interest.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > 0 {
			total += interest.Weight * (1.0 + 0.3*float64(hits-1))
		}
	}
	return total
}

// Score computes relevance for every article against the profile,
// normalizes into [0,1] by the batch maximum, and returns the articles
// sorted by relevance descending. When the profile has no interest groups,
// the input is returned unscored and unsorted.
func Score(articles []entity.Article, p Profile) []entity.Article {
	if len(p.Interests) == 0 {
		return articles
	}

	out := append([]entity.Article(nil), articles...)
	raw := make([]float64, len(out))
	maxScore := 0.0
	for i, a := range out {
		raw[i] = scoreArticle(a, p.Interests)
		if raw[i] > maxScore {
			maxScore = raw[i]
		}
	}
	if maxScore == 0 {
		maxScore = 1.0
	}

	for i := range out {
		relevance := raw[i] / maxScore
		out[i].Relevance = &relevance
	}

	sort.SliceStable(out, func(i, j int) bool { return relevanceOf(out[i]) > relevanceOf(out[j]) })
	return out
}

func relevanceOf(a entity.Article) float64 {
	if a.Relevance == nil {
		return 0
	}
	return *a.Relevance
}
