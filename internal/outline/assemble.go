package outline

import (
	"slices"
	"strconv"
	"strings"
)

// TitleSeparator joins breadcrumb entries in a record's title path.
const TitleSeparator = " -> "

// headingLevelGap is how much larger an earlier heading's font must be for
// it to count as an ancestor.
const headingLevelGap = 0.5

// valueSet collects distinct non-empty values in first-seen order.
type valueSet []string

func (v *valueSet) add(s string) {
	if s == "" || slices.Contains(*v, s) {
		return
	}
	*v = append(*v, s)
}

func (v valueSet) String() string {
	return strings.Join(v, ", ")
}

type sectionAcc struct {
	text        strings.Builder
	style       StyleKey
	structure   Structure
	operational valueSet
	pageNumber  valueSet
	header      valueSet
	footer      valueSet
}

func (a *sectionAcc) add(e Element) {
	a.operational.add(strconv.Itoa(e.OperationalPage))
	if e.PageNumber != nil {
		a.pageNumber.add(strconv.Itoa(*e.PageNumber))
	}
	a.header.add(e.Header)
	a.footer.add(e.Footer)
}

func (a *sectionAcc) section() Section {
	return Section{
		Text:            a.text.String(),
		Style:           a.style,
		Structure:       a.structure,
		OperationalPage: a.operational.String(),
		PageNumber:      a.pageNumber.String(),
		Header:          a.header.String(),
		Footer:          a.footer.String(),
	}
}

// StripPageNumber removes the first occurrence of the element's recovered
// page number from its header and footer.
func StripPageNumber(e Element) Element {
	if e.PageNumber == nil {
		return e
	}
	num := strconv.Itoa(*e.PageNumber)
	e.Header = strings.TrimSpace(strings.Replace(e.Header, num, "", 1))
	e.Footer = strings.TrimSpace(strings.Replace(e.Footer, num, "", 1))
	return e
}

// MergeSections folds tagged elements into sections. Consecutive Text
// elements merge into one section, their texts joined by a space; every
// Heading stays a section of its own, even next to another Heading.
func MergeSections(elems []Element) []Section {
	var (
		sections []Section
		open     *sectionAcc
	)
	closeOpen := func() {
		if open != nil {
			sections = append(sections, open.section())
			open = nil
		}
	}

	for _, e := range elems {
		e = StripPageNumber(e)
		if e.Structure == Text && open != nil && open.structure == Text {
			open.text.WriteString(" ")
			open.text.WriteString(e.Text)
			open.add(e)
			continue
		}
		closeOpen()
		open = &sectionAcc{style: e.Style, structure: e.Structure}
		open.text.WriteString(e.Text)
		open.add(e)
	}
	closeOpen()
	return sections
}

// Breadcrumbs computes the full title path of every Heading section, keyed
// by section index. A heading's ancestors are the earlier headings whose
// font is more than half a point larger, keeping only the latest heading
// per font size, in document order; the heading's own text comes last.
func Breadcrumbs(sections []Section) map[int][]string {
	paths := make(map[int][]string)
	lastBySize := make(map[float64]int)

	for i, s := range sections {
		if s.Structure != Heading {
			continue
		}
		var ancestors []int
		for size, idx := range lastBySize {
			if size > s.Style.FontSize+headingLevelGap {
				ancestors = append(ancestors, idx)
			}
		}
		slices.Sort(ancestors)

		path := make([]string, 0, len(ancestors)+1)
		for _, idx := range ancestors {
			path = append(path, sections[idx].Text)
		}
		paths[i] = append(path, s.Text)
		lastBySize[s.Style.FontSize] = i
	}
	return paths
}

// EmitRecords produces one record per Heading that is immediately followed
// by a non-empty Text section. Headings without following text emit
// nothing but still serve as ancestors of later headings.
func EmitRecords(sections []Section, fileName string) []Record {
	paths := Breadcrumbs(sections)
	records := []Record{}
	for i, s := range sections {
		if s.Structure != Heading || i+1 >= len(sections) {
			continue
		}
		body := sections[i+1]
		if body.Structure != Text || body.Text == "" {
			continue
		}

		var crumbs []string
		for _, c := range paths[i] {
			if c != "" {
				crumbs = append(crumbs, c)
			}
		}
		records = append(records, Record{
			FileName:        fileName,
			TitlePath:       strings.Join(crumbs, TitleSeparator),
			Text:            body.Text,
			OperationalPage: body.OperationalPage,
			PageNumber:      body.PageNumber,
			Header:          body.Header,
			Footer:          body.Footer,
			Breadcrumb:      crumbs,
		})
	}
	return records
}
