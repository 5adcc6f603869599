package outline

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// longText is the element length above which a style is body text.
	longText = 100
	// rareWeight is the text share at or below which a style is body text.
	rareWeight = 0.001
	// sizeTolerance is how far from the body size a non-bold style may be
	// and still count as body text.
	sizeTolerance = 1.0
)

// IsBold reports whether a font name denotes a bold (not semibold) face.
func IsBold(fontName string) bool {
	name := strings.ToLower(fontName)
	return strings.Contains(name, "bold") && !strings.Contains(name, "semibold")
}

// Classify tags every distinct style in the document as Heading or Text.
// A style is Text if it is ever used for an element longer than 100 runes,
// if it carries no more than 0.1% of the document's text, if it is within
// one point of the body size and not bold, or if it is smaller than the
// body size and neither bold nor coloured. Everything else is a Heading.
func Classify(elems []Element, stats FontStats) map[StyleKey]Structure {
	long := make(map[StyleKey]bool)
	for _, e := range elems {
		if utf8.RuneCountInString(e.Text) > longText {
			long[e.Style] = true
		}
	}

	main := stats.Main
	tags := make(map[StyleKey]Structure, len(stats.Styles))
	for _, s := range stats.Styles {
		bold := IsBold(s.FontName)
		colored := s.ColorKey != main.ColorKey
		switch {
		case long[s]:
			tags[s] = Text
		case stats.Weight(s) <= rareWeight:
			tags[s] = Text
		case math.Abs(s.FontSize-main.FontSize) <= sizeTolerance && !bold:
			tags[s] = Text
		case s.FontSize < main.FontSize && !bold && !colored:
			tags[s] = Text
		default:
			tags[s] = Heading
		}
	}
	return tags
}

// ApplyStructure tags each element with its style's classification.
func ApplyStructure(elems []Element, tags map[StyleKey]Structure) {
	for i := range elems {
		elems[i].Structure = tags[elems[i].Style]
	}
}
