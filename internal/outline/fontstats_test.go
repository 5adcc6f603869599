package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFontStats_MainStyleByTextLength(t *testing.T) {
	elems := []Element{
		elem("Short heading", "Arial-Bold", 16, 1),
		elem("a much longer body paragraph", "Arial", 10, 1),
		elem("Another heading", "Arial-Bold", 16, 2),
		elem("more body", "Arial", 10, 2),
	}
	stats := ComputeFontStats(elems)

	assert.Equal(t, StyleKey{FontName: "Arial", FontSize: 10, ColorKey: "0"}, stats.Main)
	assert.Equal(t, 28+9, stats.Lengths[stats.Main])
	assert.Equal(t, 13+28+15+9, stats.Total)
	assert.Len(t, stats.Styles, 2)
}

func TestComputeFontStats_TieGoesToFirstStyle(t *testing.T) {
	elems := []Element{
		elem("abcd", "Times", 12, 1),
		elem("wxyz", "Arial", 10, 1),
	}
	for range 10 {
		assert.Equal(t, "Times", ComputeFontStats(elems).Main.FontName)
	}
}

func TestComputeFontStats_CountsRunes(t *testing.T) {
	stats := ComputeFontStats([]Element{elem("Größe", "Arial", 10, 1)})
	assert.Equal(t, 5, stats.Total)
}

func TestComputeFontStats_Empty(t *testing.T) {
	stats := ComputeFontStats(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Weight(StyleKey{}))
}
