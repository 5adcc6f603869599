package parser

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/dgallion1/pdfoutline/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
)

// ColorKey is assigned to every PDF glyph: the PDF library does not report
// fill colour, so all glyphs share one colour.
const ColorKey = "0"

// PDFParser extracts positioned glyphs from a PDF with ledongthuc/pdf and
// groups them into lines by baseline.
type PDFParser struct {
	Log *slog.Logger
}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]outline.Page, error) {
	// ledongthuc/pdf needs a ReaderAt and the total size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filename, err)
	}

	numPages := reader.NumPage()
	pages := make([]outline.Page, numPages)
	for i := 1; i <= numPages; i++ {
		texts, err := pageTexts(reader, i)
		if err != nil {
			// A page the library cannot decode stays blank.
			if p.Log != nil {
				p.Log.Warn("skipping undecodable page", "file", filename, "page", i, "error", err)
			}
			continue
		}
		pages[i-1] = outline.Page{Lines: GroupLines(texts)}
	}
	return pages, nil
}

func pageTexts(reader *pdflib.Reader, num int) (texts []pdflib.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts, err = nil, fmt.Errorf("decode page content: %v", r)
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return nil, nil
	}
	return page.Content().Text, nil
}

// GroupLines turns positioned text spans into lines of glyphs. A span
// whose baseline moves by more than half its font size starts a new line.
// Spans keep content-stream order within a line. A horizontal gap wider
// than 30% of the font size becomes a space glyph, since many PDFs
// position words without emitting spaces.
func GroupLines(texts []pdflib.Text) []outline.Line {
	var (
		lines   []outline.Line
		current outline.Line
		lineY   float64
		lastEnd float64
	)
	for _, t := range texts {
		runes := []rune(t.S)
		if len(runes) == 0 {
			continue
		}
		tolerance := math.Max(t.FontSize, 1) * 0.5
		if len(current) > 0 && math.Abs(t.Y-lineY) > tolerance {
			lines = append(lines, current)
			current = nil
		}
		if len(current) == 0 {
			lineY = t.Y
		} else if t.X-lastEnd > t.FontSize*0.3 && current[len(current)-1].Text != " " && runes[0] != ' ' {
			current = append(current, outline.Glyph{Text: " "})
		}

		for _, r := range runes {
			current = append(current, outline.Glyph{
				Text:     string(r),
				FontName: t.Font,
				FontSize: t.FontSize,
				ColorKey: ColorKey,
			})
		}
		lastEnd = t.X + t.W
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}
