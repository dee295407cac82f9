package filter

import (
	"testing"
	"time"

	"newsmesh/internal/domain/entity"
	"newsmesh/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_NoConfigIsIdentity(t *testing.T) {
	articles := []entity.Article{
		{Title: "One", Category: "tech"},
		{Title: "Two", Category: "ai"},
	}
	out := Run(articles, Config{})
	assert.Equal(t, articles, out)
}

func TestRun_CategoryInclude(t *testing.T) {
	articles := []entity.Article{
		{Title: "One", Category: "tech"},
		{Title: "Two", Category: "ai"},
	}
	out := Run(articles, Config{CategoryInclude: []string{"ai"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Two", out[0].Title)
}

func TestRun_SourceExcludeSubstring(t *testing.T) {
	articles := []entity.Article{
		{Title: "One", Source: "Hacker News"},
		{Title: "Two", Source: "r/golang"},
	}
	out := Run(articles, Config{SourceExclude: []string{"hacker"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Two", out[0].Title)
}

func TestRun_KeywordSearchAndExclude(t *testing.T) {
	articles := []entity.Article{
		{Title: "Rust compiler update", Summary: ""},
		{Title: "Python release notes", Summary: ""},
		{Title: "Rust security advisory", Summary: ""},
	}
	out := Run(articles, Config{Search: "rust", Exclude: "security"})
	require.Len(t, out, 1)
	assert.Equal(t, "Rust compiler update", out[0].Title)
}

func TestRun_SinceWindow(t *testing.T) {
	now := time.Now()
	old := now.Add(-48 * time.Hour)
	recent := now.Add(-1 * time.Hour)
	cutoff := now.Add(-24 * time.Hour)
	articles := []entity.Article{
		{Title: "Old", Timestamp: &old},
		{Title: "Recent", Timestamp: &recent},
	}
	out := Run(articles, Config{Since: &cutoff})
	require.Len(t, out, 1)
	assert.Equal(t, "Recent", out[0].Title)
}

func TestRun_QualityFloor(t *testing.T) {
	min := 0.5
	articles := []entity.Article{
		{Title: "Low", QualityScore: 0.2},
		{Title: "High", QualityScore: 0.8},
	}
	out := Run(articles, Config{MinQuality: &min})
	require.Len(t, out, 1)
	assert.Equal(t, "High", out[0].Title)
}

func TestRun_TagIncludeExclude(t *testing.T) {
	articles := []entity.Article{
		{Title: "One", Tags: []string{"golang", "backend"}},
		{Title: "Two", Tags: []string{"frontend"}},
	}
	out := Run(articles, Config{TagInclude: []string{"golang"}})
	require.Len(t, out, 1)
	assert.Equal(t, "One", out[0].Title)
}

func TestRun_AuthorIncludeExcludesAnonymous(t *testing.T) {
	articles := []entity.Article{
		{Title: "Has author", Author: "Jane Doe"},
		{Title: "No author"},
	}
	out := Run(articles, Config{AuthorInclude: []string{"jane"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Has author", out[0].Title)
}

func TestRun_ProfileScoresAndReorders(t *testing.T) {
	p := profile.Profile{Interests: []profile.Interest{{Keywords: []string{"rust"}, Weight: 1.0}}}
	articles := []entity.Article{
		{Title: "Gardening tips"},
		{Title: "Rust release notes"},
	}
	out := Run(articles, Config{Profile: &p})
	require.Len(t, out, 2)
	assert.Equal(t, "Rust release notes", out[0].Title)
}

func TestRun_LimitTruncates(t *testing.T) {
	limit := 1
	articles := []entity.Article{{Title: "One"}, {Title: "Two"}}
	out := Run(articles, Config{Limit: &limit})
	require.Len(t, out, 1)
	assert.Equal(t, "One", out[0].Title)
}

func TestRun_SampleReturnsRequestedCountPreservingOrder(t *testing.T) {
	sample := 2
	articles := []entity.Article{{Title: "One"}, {Title: "Two"}, {Title: "Three"}}
	out := Run(articles, Config{Sample: &sample})
	require.Len(t, out, 2)
	// order preserved relative to input regardless of which two were picked
	if out[0].Title == "Three" {
		t.Fatalf("expected input-relative order, got sample starting with %q", out[0].Title)
	}
}

func TestRun_PreservesInputSlice(t *testing.T) {
	articles := []entity.Article{{Title: "One", Category: "tech"}}
	_ = Run(articles, Config{CategoryInclude: []string{"ai"}})
	assert.Equal(t, "tech", articles[0].Category)
}
