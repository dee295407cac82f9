package cache

import (
	"path/filepath"
	"testing"
	"time"

	"newsmesh/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_StableUnderSourceOrder(t *testing.T) {
	a := Key([]string{"hn", "rss"}, 0.75)
	b := Key([]string{"rss", "hn"}, 0.75)
	assert.Equal(t, a, b)
	assert.Len(t, a, 12)
}

func TestKey_DiffersOnThreshold(t *testing.T) {
	a := Key([]string{"hn"}, 0.75)
	b := Key([]string{"hn"}, 0.65)
	assert.NotEqual(t, a, b)
}

func TestCache_SaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, nil)

	articles := []entity.Article{{Title: "A", URL: "https://a.com"}}
	stats := map[string]int{"exact_dupes": 1}

	require.NoError(t, c.Save("key1", articles, stats))

	got, gotStats, ok := c.Load("key1", time.Hour)
	require.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, entity.DefaultQualityScore, got[0].QualityScore)
	assert.Equal(t, 1, gotStats["exact_dupes"])
}

func TestCache_Load_MissReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, nil)
	_, _, ok := c.Load("missing", time.Hour)
	assert.False(t, ok)
}

func TestCache_Load_StaleReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, nil)
	require.NoError(t, c.Save("key1", nil, nil))

	_, _, ok := c.Load("key1", -time.Second)
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, nil)
	require.NoError(t, c.Save("a", nil, nil))
	require.NoError(t, c.Save("b", nil, nil))

	removed := c.Clear()
	assert.Equal(t, 2, removed)

	_, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	_, _, ok := c.Load("a", time.Hour)
	assert.False(t, ok)
}
