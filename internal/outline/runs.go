package outline

import (
	"strings"
	"unicode"
)

// lineNoise is removed from run text; line breaks and tabs are layout
// artefacts of the extraction, not content.
var lineNoise = strings.NewReplacer("\t", "", "\n", "", "\r", "")

// SegmentLine folds one line's glyphs into same-style runs. Style-less
// glyphs take the style of the nearest preceding glyph; style-less glyphs
// before the first authoritative one are dropped. A line without any
// authoritative glyph yields no runs.
func SegmentLine(line Line, pageIndex int) []Run {
	var (
		runs    []Run
		current strings.Builder
		style   StyleKey
		styled  bool
	)

	flush := func() {
		text := strings.TrimRightFunc(lineNoise.Replace(current.String()), unicode.IsSpace)
		if text != "" {
			runs = append(runs, Run{Text: text, Style: style, PageIndex: pageIndex})
		}
		current.Reset()
	}

	for _, g := range line {
		if g.Authoritative() {
			next := g.Style()
			if styled && next != style {
				flush()
			}
			style, styled = next, true
		}
		if !styled {
			continue
		}
		current.WriteString(g.Text)
	}
	if styled {
		flush()
	}
	return runs
}

// SegmentPage segments every line of a page, in order.
func SegmentPage(page Page, pageIndex int) []Run {
	var runs []Run
	for _, line := range page.Lines {
		runs = append(runs, SegmentLine(line, pageIndex)...)
	}
	return runs
}
