package dedup

import (
	"testing"

	"newsmesh/internal/domain/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cfg(threshold float64) Config {
	return Config{Threshold: threshold, Enabled: true}
}

func TestRun_Disabled_ReturnsInputUnchanged(t *testing.T) {
	articles := []entity.Article{{Title: "A", URL: "https://a.com", QualityScore: 0.5}}
	out, stats := Run(articles, Config{Enabled: false}, nil)
	if diff := cmp.Diff(articles, out); diff != "" {
		t.Errorf("disabled dedup changed the article list (-want +got):\n%s", diff)
	}
	assert.Equal(t, stats.TotalInput, stats.UniqueOutput)
}

func TestRun_ExactDupe_KeepsHigherQuality(t *testing.T) {
	articles := []entity.Article{
		{Title: "Hello World", URL: "https://a.com/1", QualityScore: 0.3},
		{Title: "Hello World", URL: "https://a.com/1", QualityScore: 0.9},
	}
	out, stats := Run(articles, cfg(0.75), nil)
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].QualityScore)
	assert.Equal(t, 1, stats.ExactDupes)
}

func TestRun_ExactDupe_LowerQualityDropped(t *testing.T) {
	articles := []entity.Article{
		{Title: "Hello World", URL: "https://a.com/1", QualityScore: 0.9},
		{Title: "Hello World", URL: "https://a.com/1", QualityScore: 0.3},
	}
	out, _ := Run(articles, cfg(0.75), nil)
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].QualityScore)
}

func TestRun_FingerprintDupe_SameWordsDifferentOrder(t *testing.T) {
	articles := []entity.Article{
		{Title: "Major earthquake strikes California", URL: "https://a.com/1", QualityScore: 0.4},
		{Title: "California strikes Major earthquake", URL: "https://b.com/2", QualityScore: 0.8},
	}
	out, stats := Run(articles, cfg(0.99), nil)
	require.Len(t, out, 1)
	assert.Equal(t, 1, stats.FingerprintDupes)
	assert.Equal(t, 0.8, out[0].QualityScore)
}

func TestRun_FuzzyDupe_SimilarTitlesCollapse(t *testing.T) {
	articles := []entity.Article{
		{Title: "Senate passes the new budget bill today", URL: "https://a.com/1", QualityScore: 0.4},
		{Title: "Senate passes the new budget bill", URL: "https://b.com/2", QualityScore: 0.7},
	}
	out, stats := Run(articles, cfg(0.75), nil)
	require.Len(t, out, 1)
	assert.Equal(t, 1, stats.FuzzyDupes)
	assert.Equal(t, 0.7, out[0].QualityScore)
}

func TestRun_FuzzyDupe_IndexRewrittenOnReplace(t *testing.T) {
	// Third article should match the *replacement* (article 2), not the
	// original (article 1) — proving the fuzzy index was rewritten.
	articles := []entity.Article{
		{Title: "Senate passes the new budget bill today in Ohio", URL: "https://a.com/1", QualityScore: 0.2},
		{Title: "Senate passes the new budget bill today", URL: "https://b.com/2", QualityScore: 0.9},
		{Title: "Senate passes new budget bill tonight", URL: "https://c.com/3", QualityScore: 0.1},
	}
	out, stats := Run(articles, cfg(0.8), nil)
	require.Len(t, out, 1)
	assert.Equal(t, 2, stats.FuzzyDupes)
	assert.Equal(t, 0.9, out[0].QualityScore)
	assert.Equal(t, "https://b.com/2", out[0].URL)
}

func TestRun_DistinctArticlesAllSurvive(t *testing.T) {
	articles := []entity.Article{
		{Title: "Completely unrelated headline one", URL: "https://a.com/1", QualityScore: 0.5},
		{Title: "A totally different story about cats", URL: "https://b.com/2", QualityScore: 0.5},
	}
	out, stats := Run(articles, cfg(0.75), nil)
	assert.Len(t, out, 2)
	assert.Equal(t, 0, stats.ExactDupes+stats.FingerprintDupes+stats.FuzzyDupes)
}
