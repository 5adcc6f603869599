package outline

// NormalizeLine relabels stray fonts inside a line. The most common style
// among the line's authoritative glyphs wins; any authoritative glyph with
// that style's size but a different font name takes the winning font name.
// This keeps a single bold or italic glyph from splitting a run.
func NormalizeLine(line Line) Line {
	counts := make(map[StyleKey]int)
	var (
		order []StyleKey
		best  StyleKey
		most  int
	)
	for _, g := range line {
		if !g.Authoritative() {
			continue
		}
		k := g.Style()
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for _, k := range order {
		if counts[k] > most {
			best, most = k, counts[k]
		}
	}
	if most == 0 {
		return line
	}

	out := make(Line, len(line))
	copy(out, line)
	for i, g := range out {
		if g.Authoritative() && RoundSize(g.FontSize) == best.FontSize && g.FontName != best.FontName {
			out[i].FontName = best.FontName
		}
	}
	return out
}

// NormalizePage applies NormalizeLine to every line of a page.
func NormalizePage(page Page) Page {
	lines := make([]Line, len(page.Lines))
	for i, l := range page.Lines {
		lines[i] = NormalizeLine(l)
	}
	return Page{Lines: lines}
}
