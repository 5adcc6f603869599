package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/pdfoutline/internal/outline"
)

// GlyphStream is the JSON form of a layout engine's output: pages of lines
// of glyphs, each glyph carrying text, fontName, fontSize and colorKey.
type GlyphStream struct {
	Pages []outline.Page `json:"pages"`
}

// GlyphJSONParser reads a pre-extracted glyph stream.
type GlyphJSONParser struct{}

func (p *GlyphJSONParser) Parse(r io.Reader, filename string) ([]outline.Page, error) {
	var stream GlyphStream
	if err := json.NewDecoder(r).Decode(&stream); err != nil {
		return nil, fmt.Errorf("decode glyph stream %s: %w", filename, err)
	}
	return stream.Pages, nil
}
