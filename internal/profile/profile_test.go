package profile

import (
	"os"
	"path/filepath"
	"testing"

	"newsmesh/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromInterestsString_OneGroupPerToken(t *testing.T) {
	p := FromInterestsString("AI, rust, skateboarding")
	require.Len(t, p.Interests, 3)
	assert.Equal(t, []string{"AI"}, p.Interests[0].Keywords)
	assert.Equal(t, 1.0, p.Interests[0].Weight)
}

func TestScore_NormalizesToUnitMaxAndSorts(t *testing.T) {
	p := Profile{Interests: []Interest{
		{Keywords: []string{"rust", "golang"}, Weight: 2.0},
		{Keywords: []string{"skateboarding"}, Weight: 1.0},
	}}
	articles := []entity.Article{
		{Title: "Learning skateboarding tricks"},
		{Title: "Rust and golang for systems programming"},
		{Title: "Totally unrelated gardening tips"},
	}
	scored := Score(articles, p)
	require.Len(t, scored, 3)
	require.NotNil(t, scored[0].Relevance)
	assert.Equal(t, 1.0, *scored[0].Relevance)
	assert.Equal(t, "Rust and golang for systems programming", scored[0].Title)
	assert.Equal(t, "Totally unrelated gardening tips", scored[2].Title)
	assert.Equal(t, 0.0, *scored[2].Relevance)
}

func TestScore_DiminishingReturnsForMultipleHits(t *testing.T) {
	p := Profile{Interests: []Interest{{Keywords: []string{"rust", "golang"}, Weight: 1.0}}}
	articles := []entity.Article{
		{Title: "Rust programming"},
		{Title: "Rust and golang programming"},
	}

	scored := Score(articles, p)
	byTitle := map[string]float64{}
	for _, a := range scored {
		byTitle[a.Title] = *a.Relevance
	}
	// two keyword hits score higher than one, but less than double: 1.3 vs 1.0
	// raw, not 2.0 vs 1.0.
	assert.Equal(t, 1.0, byTitle["Rust and golang programming"])
	assert.InDelta(t, 1.0/1.3, byTitle["Rust programming"], 0.001)
}

func TestScore_NoInterestsReturnsUnscored(t *testing.T) {
	articles := []entity.Article{{Title: "Anything"}}
	out := Score(articles, Profile{})
	assert.Nil(t, out[0].Relevance)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")
	content := "name: Test\ninterests:\n  - keywords: [rust]\n    weight: 1.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test", p.Name)
	require.Len(t, p.Interests, 1)
	assert.Equal(t, 1.5, p.Interests[0].Weight)
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	content := `{"name":"Test","interests":[{"keywords":["rust"],"weight":1.5}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test", p.Name)
	require.Len(t, p.Interests, 1)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoad_UnsupportedExtensionReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSourceWeight_ExactMatch(t *testing.T) {
	assert.Equal(t, 0.9, SourceWeight("Economist"))
}

func TestSourceWeight_SubstringMatch(t *testing.T) {
	assert.Equal(t, 0.85, SourceWeight("Ars Technica UK"))
}

func TestSourceWeight_RedditPrefixRule(t *testing.T) {
	assert.Equal(t, 0.5, SourceWeight("r/golang"))
}

func TestSourceWeight_UnknownSourceReturnsDefault(t *testing.T) {
	assert.Equal(t, DefaultSourceScore, SourceWeight("Some Obscure Blog"))
}
