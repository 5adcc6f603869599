package outline

import "unicode/utf8"

// FontStats holds document-wide text length aggregates per style. It is
// computed once per document and passed explicitly to the stages that need
// the main body style.
type FontStats struct {
	// Main is the style carrying the most text; the body text style.
	Main StyleKey
	// Lengths is the total element text length per style, in runes.
	Lengths map[StyleKey]int
	// Total is the text length of the whole document, in runes.
	Total int
	// Styles lists each distinct style once, in order of first appearance.
	Styles []StyleKey
}

// ComputeFontStats aggregates text length per style. Ties for the main
// style go to the style that appears first in the document.
func ComputeFontStats(elems []Element) FontStats {
	stats := FontStats{Lengths: make(map[StyleKey]int)}
	for _, e := range elems {
		if _, ok := stats.Lengths[e.Style]; !ok {
			stats.Styles = append(stats.Styles, e.Style)
		}
		n := utf8.RuneCountInString(e.Text)
		stats.Lengths[e.Style] += n
		stats.Total += n
	}

	best := -1
	for _, s := range stats.Styles {
		if stats.Lengths[s] > best {
			stats.Main, best = s, stats.Lengths[s]
		}
	}
	return stats
}

// Weight is the share of the document's text set in style s.
func (f FontStats) Weight(s StyleKey) float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Lengths[s]) / float64(f.Total)
}
