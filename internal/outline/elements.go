package outline

// AssemblePage folds a page's runs into elements. Consecutive runs of the
// same style join with a single space, since they may come from different
// lines. Every element is tagged with the page's 1-based operational number.
func AssemblePage(runs []Run, operationalPage int) []Element {
	var elems []Element
	for _, r := range runs {
		if n := len(elems); n > 0 && elems[n-1].Style == r.Style {
			elems[n-1].Text += " " + r.Text
			continue
		}
		elems = append(elems, Element{
			Text:            r.Text,
			Style:           r.Style,
			OperationalPage: operationalPage,
		})
	}
	return elems
}

// Flatten concatenates per-page elements in page order. Blank pages
// contribute nothing.
func Flatten(pages [][]Element) []Element {
	var total int
	for _, p := range pages {
		total += len(p)
	}
	out := make([]Element, 0, total)
	for _, p := range pages {
		out = append(out, p...)
	}
	return out
}
