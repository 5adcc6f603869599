// Package doctree nests outline records into a tree keyed by their title
// path and defines the chunk type used for retrieval.
package doctree

import (
	"strconv"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/outline"
)

// DocTree is the root of an outlined document.
type DocTree struct {
	Title    string     `json:"title"`              // Document title (from the filename)
	Children []*DocNode `json:"children,omitempty"` // Top-level headings
}

// DocNode is one heading of the outline.
type DocNode struct {
	Title    string     `json:"title"`              // Heading text
	Text     string     `json:"text,omitempty"`     // Paragraph text under this heading
	Page     int        `json:"page,omitempty"`     // First printed (or operational) page, 0 if unknown
	Children []*DocNode `json:"children,omitempty"` // Sub-headings
}

// Chunk is a sized text segment with structural context, ready for indexing.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`      // Sequence number within document
	Breadcrumb []string `json:"breadcrumb"` // Heading hierarchy, e.g. ["Terms", "Coverage", "Exclusions"]
	PageStart  int      `json:"pageStart,omitempty"`
	PageEnd    int      `json:"pageEnd,omitempty"`
}

// FromRecords builds a tree from records in document order. Records that
// share a breadcrumb prefix share the corresponding nodes; a record whose
// full path already has text appends to it.
func FromRecords(title string, records []outline.Record) *DocTree {
	tree := &DocTree{Title: title}
	for _, rec := range records {
		if len(rec.Breadcrumb) == 0 {
			tree.Children = append(tree.Children, &DocNode{Text: rec.Text, Page: FirstPage(rec)})
			continue
		}

		siblings := &tree.Children
		var node *DocNode
		for _, crumb := range rec.Breadcrumb {
			node = lastChild(*siblings, crumb)
			if node == nil {
				node = &DocNode{Title: crumb}
				*siblings = append(*siblings, node)
			}
			siblings = &node.Children
		}
		if node.Text != "" {
			node.Text += "\n\n" + rec.Text
		} else {
			node.Text = rec.Text
			node.Page = FirstPage(rec)
		}
	}
	return tree
}

// lastChild returns the most recent sibling titled title. Only the last
// sibling is considered so that a repeated heading later in the document
// opens a new node rather than rejoining an old one.
func lastChild(nodes []*DocNode, title string) *DocNode {
	if n := len(nodes); n > 0 && nodes[n-1].Title == title {
		return nodes[n-1]
	}
	return nil
}

// FirstPage returns the first printed page of a record, falling back to
// its first operational page, or 0.
func FirstPage(rec outline.Record) int {
	for _, v := range []string{rec.PageNumber, rec.OperationalPage} {
		first, _, _ := strings.Cut(v, ",")
		if n, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
			return n
		}
	}
	return 0
}

// LastPage is FirstPage for the last listed page.
func LastPage(rec outline.Record) int {
	for _, v := range []string{rec.PageNumber, rec.OperationalPage} {
		parts := strings.Split(v, ",")
		if n, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return n
		}
	}
	return 0
}
