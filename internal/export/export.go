// Package export renders outline records for consumers: JSON for indexing,
// Markdown and HTML for reading.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/yuin/goldmark"
)

// Formats lists the accepted format names.
var Formats = []string{"json", "markdown", "html"}

// maxHeadingLevel is the deepest Markdown heading.
const maxHeadingLevel = 6

// JSON writes records as a JSON array. A nil slice is written as [].
func JSON(w io.Writer, records []outline.Record) error {
	if records == nil {
		records = []outline.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Markdown renders records as a Markdown document. Each breadcrumb entry
// becomes a heading at its depth; entries shared with the previous record
// are not repeated.
func Markdown(title string, records []outline.Record) string {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	base := 1
	if title != "" {
		base = 2
	}

	var prev []string
	for _, rec := range records {
		common := 0
		for common < len(prev) && common < len(rec.Breadcrumb) && prev[common] == rec.Breadcrumb[common] {
			common++
		}
		if common == len(rec.Breadcrumb) && common > 0 {
			// Same heading again: reopen the deepest one.
			common--
		}
		for depth := common; depth < len(rec.Breadcrumb); depth++ {
			level := min(base+depth, maxHeadingLevel)
			fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", level), rec.Breadcrumb[depth])
		}
		sb.WriteString(rec.Text)
		sb.WriteString("\n\n")
		if pages := pageLabel(rec); pages != "" {
			fmt.Fprintf(&sb, "*%s*\n\n", pages)
		}
		prev = rec.Breadcrumb
	}
	return sb.String()
}

func pageLabel(rec outline.Record) string {
	switch {
	case rec.PageNumber != "":
		return "Page " + rec.PageNumber
	case rec.OperationalPage != "":
		return "PDF page " + rec.OperationalPage
	}
	return ""
}

// HTML renders the Markdown form of the records to HTML with goldmark.
func HTML(title string, records []outline.Record) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(title, records)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
