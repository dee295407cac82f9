package simtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("major earthquake strikes california coast", "major earthquake strikes california coast"))
}

func TestRatio_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("", "something"))
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatio_HighSimilarity(t *testing.T) {
	a := "major earthquake strikes california coast today"
	b := "major earthquake strikes california coast"
	ratio := Ratio(a, b)
	assert.Greater(t, ratio, 0.75)
}

func TestRatio_LowSimilarity(t *testing.T) {
	ratio := Ratio("completely unrelated headline about sports", "major earthquake strikes california coast")
	assert.Less(t, ratio, 0.5)
}

func TestWordOverlaps(t *testing.T) {
	assert.True(t, WordOverlaps([]string{"coast", "earthquake", "major"}, []string{"coast", "tonight"}))
	assert.False(t, WordOverlaps([]string{"coast", "earthquake"}, []string{"sports", "tonight"}))
	assert.False(t, WordOverlaps(nil, []string{"sports"}))
}
