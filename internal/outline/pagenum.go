package outline

import (
	"strconv"
	"strings"
)

// TrimPage strips the running header and footer from one page's elements.
// The header is the longest leading sequence of elements set smaller than
// the body size, the footer the longest such trailing sequence; each is
// joined with spaces and recorded on every remaining element. When every
// element on the page is smaller than the body size (a cover page, say),
// nothing is stripped.
func TrimPage(elems []Element, bodySize float64) []Element {
	if len(elems) == 0 {
		return nil
	}
	small := func(e Element) bool { return e.Style.FontSize < bodySize }

	start := 0
	for start < len(elems) && small(elems[start]) {
		start++
	}
	if start == len(elems) {
		out := make([]Element, len(elems))
		copy(out, elems)
		return out
	}
	end := len(elems)
	for end > start && small(elems[end-1]) {
		end--
	}

	header := joinTexts(elems[:start])
	footer := joinTexts(elems[end:])
	out := make([]Element, 0, end-start)
	for _, e := range elems[start:end] {
		e.Header = header
		e.Footer = footer
		out = append(out, e)
	}
	return out
}

func joinTexts(elems []Element) string {
	if len(elems) == 0 {
		return ""
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.Text
	}
	return strings.Join(parts, " ")
}

// PageCandidate extracts the printed page number candidate from a page's
// header and footer: all their digits, header digits first. It reports
// false when there are no digits or the number does not fit an int.
func PageCandidate(header, footer string) (int, bool) {
	var digits strings.Builder
	for _, s := range []string{header, footer} {
		for i := 0; i < len(s); i++ {
			if s[i] >= '0' && s[i] <= '9' {
				digits.WriteByte(s[i])
			}
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// maxMissingCandidates is the largest share of pages allowed to lack a page
// number candidate before recovery is abandoned.
const maxMissingCandidates = 0.5

// PageOffset computes the document's page number offset from each page's
// operational number and its candidate (nil when the page had none). The
// offset is the most frequent operational-minus-printed difference, ties
// going to the first one seen. It reports false when more than half the
// pages have no candidate.
func PageOffset(operational []int, candidates []*int) (int, bool) {
	if len(operational) == 0 || len(operational) != len(candidates) {
		return 0, false
	}

	var (
		missing int
		order   []int
		counts  = make(map[int]int)
	)
	for i, c := range candidates {
		if c == nil {
			missing++
			continue
		}
		d := operational[i] - *c
		if counts[d] == 0 {
			order = append(order, d)
		}
		counts[d]++
	}
	if float64(missing)/float64(len(candidates)) > maxMissingCandidates || len(order) == 0 {
		return 0, false
	}

	mode, best := 0, 0
	for _, d := range order {
		if counts[d] > best {
			mode, best = d, counts[d]
		}
	}
	return mode, true
}

// RecoverPageNumbers assigns logical page numbers to trimmed pages in place
// using a single document-wide offset. Pages must be non-empty and in
// document order. It returns the offset, or nil when recovery was
// abandoned and no element received a page number.
func RecoverPageNumbers(pages [][]Element) *int {
	operational := make([]int, 0, len(pages))
	candidates := make([]*int, 0, len(pages))
	for _, p := range pages {
		if len(p) == 0 {
			continue
		}
		operational = append(operational, p[0].OperationalPage)
		if n, ok := PageCandidate(p[0].Header, p[0].Footer); ok {
			candidates = append(candidates, &n)
		} else {
			candidates = append(candidates, nil)
		}
	}

	offset, ok := PageOffset(operational, candidates)
	if !ok {
		return nil
	}
	for _, p := range pages {
		for i := range p {
			if n := p[i].OperationalPage - offset; n > 0 {
				p[i].PageNumber = &n
			}
		}
	}
	return &offset
}
