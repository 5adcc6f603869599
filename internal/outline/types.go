// Package outline infers the heading/body structure of a document from the
// typography of its glyphs and emits titled paragraph records.
//
// The pipeline runs in six stages: glyphs are folded into same-style runs per
// line, runs into page elements, font statistics pick the main body style,
// running headers and footers are stripped while logical page numbers are
// recovered, each style is classified as Heading or Text, and finally the
// tagged elements are assembled into breadcrumb-titled records.
package outline

import "math"

// Glyph is one rendered character as supplied by the layout engine.
type Glyph struct {
	Text     string  `json:"text"`
	FontName string  `json:"fontName"`
	FontSize float64 `json:"fontSize"`
	ColorKey string  `json:"colorKey"`
}

// Authoritative reports whether the glyph's style can be trusted. Only a
// single ASCII letter or digit qualifies; punctuation, bullets and
// non-Latin glyphs inherit the style of the nearest preceding glyph.
func (g Glyph) Authoritative() bool {
	if len(g.Text) != 1 {
		return false
	}
	c := g.Text[0]
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Style returns the glyph's style with its size rounded to two decimals.
func (g Glyph) Style() StyleKey {
	return StyleKey{FontName: g.FontName, FontSize: RoundSize(g.FontSize), ColorKey: g.ColorKey}
}

// Line is an ordered run of glyphs in reading order.
type Line []Glyph

// Page is one physical page of the source document.
type Page struct {
	Lines []Line `json:"lines"`
}

// RoundSize rounds a font size to two decimals.
func RoundSize(size float64) float64 {
	return math.Round(size*100) / 100
}

// StyleKey identifies a visual style. Two keys are the same style only if
// all three fields are equal.
type StyleKey struct {
	FontName string  `json:"fontName"`
	FontSize float64 `json:"fontSize"`
	ColorKey string  `json:"colorKey"`
}

// Run is a maximal same-style glyph sequence within one line.
type Run struct {
	Text      string
	Style     StyleKey
	PageIndex int
}

// Structure tags an element as a heading or as body text.
type Structure int

const (
	Text Structure = iota
	Heading
)

func (s Structure) String() string {
	if s == Heading {
		return "Heading"
	}
	return "Text"
}

// MarshalText implements encoding.TextMarshaler.
func (s Structure) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Element is a maximal same-style run sequence within one page. Header,
// Footer and PageNumber are filled by header/footer recovery and Structure
// by classification.
type Element struct {
	Text            string    `json:"text"`
	Style           StyleKey  `json:"style"`
	OperationalPage int       `json:"operationalPageNumber"`
	Header          string    `json:"header,omitempty"`
	Footer          string    `json:"footer,omitempty"`
	PageNumber      *int      `json:"pageNumber,omitempty"`
	Structure       Structure `json:"structure"`
}

// Section is either a single Heading element or a merge of consecutive Text
// elements. The metadata fields hold comma-joined distinct values when a
// merge spans pages.
type Section struct {
	Text            string
	Style           StyleKey
	Structure       Structure
	OperationalPage string
	PageNumber      string
	Header          string
	Footer          string
}

// Record is one titled paragraph of the outline.
type Record struct {
	FileName        string `json:"fileName"`
	TitlePath       string `json:"titlePath"`
	Text            string `json:"text"`
	OperationalPage string `json:"operationalPageNumber,omitempty"`
	PageNumber      string `json:"pageNumber,omitempty"`
	Header          string `json:"header,omitempty"`
	Footer          string `json:"footer,omitempty"`

	// Breadcrumb holds the non-empty title path entries, outermost first.
	Breadcrumb []string `json:"-"`
}
