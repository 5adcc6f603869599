package outline

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBold(t *testing.T) {
	assert.True(t, IsBold("Arial-Bold"))
	assert.True(t, IsBold("ABCDEF+Helvetica-BOLDOBLIQUE"))
	assert.False(t, IsBold("Arial-SemiBold"))
	assert.False(t, IsBold("Arial"))
}

func TestClassify(t *testing.T) {
	body := strings.Repeat("body text ", 50)
	colored := elem("Colored small", "Arial", 8, 1)
	colored.Style.ColorKey = "red"

	elems := []Element{
		elem(body, "Arial", 10, 1),
		elem("Introduction", "Arial-Bold", 20, 1),
		elem("Slightly larger", "Arial", 11, 1),
		elem("Inline bold", "Arial-Bold", 10, 1),
		elem("Semibold term", "Arial-SemiBold", 10, 1),
		elem("Small caption", "Arial", 8, 1),
		colored,
		elem(strings.Repeat("long bold ", 15), "Times-Bold", 18, 1),
	}
	stats := ComputeFontStats(elems)
	tags := Classify(elems, stats)

	want := map[string]Structure{
		"Arial/10":          Text,
		"Arial-Bold/20":     Heading,
		"Arial/11":          Text,
		"Arial-Bold/10":     Heading,
		"Arial-SemiBold/10": Text,
		"Arial/8":           Text,
		"Arial/8/red":       Heading,
		"Times-Bold/18":     Text,
	}
	for _, s := range stats.Styles {
		key := s.FontName + "/" + strconv.FormatFloat(s.FontSize, 'f', -1, 64)
		if s.ColorKey != "0" {
			key += "/" + s.ColorKey
		}
		assert.Equal(t, want[key], tags[s], "style %s", key)
	}
	assert.Len(t, tags, len(want))
}

func TestClassify_RareStyleIsText(t *testing.T) {
	elems := []Element{
		elem(strings.Repeat("x", 99), "Arial", 10, 1),
	}
	for range 201 {
		elems = append(elems, elem(strings.Repeat("y", 99), "Arial", 10, 1))
	}
	elems = append(elems, elem("Tiny title", "Impact-Bold", 40, 1))

	stats := ComputeFontStats(elems)
	rare := StyleKey{FontName: "Impact-Bold", FontSize: 40, ColorKey: "0"}
	assert.InDelta(t, 0.0005, stats.Weight(rare), 0.0001)
	assert.Equal(t, Text, Classify(elems, stats)[rare])
}

func TestApplyStructure(t *testing.T) {
	elems := []Element{elem("a", "Arial", 10, 1), elem("b", "Arial-Bold", 20, 1)}
	ApplyStructure(elems, map[StyleKey]Structure{elems[1].Style: Heading})

	assert.Equal(t, Text, elems[0].Structure)
	assert.Equal(t, Heading, elems[1].Structure)
}
