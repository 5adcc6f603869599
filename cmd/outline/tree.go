package main

import (
	"encoding/json"
	"io"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

func writeTree(w io.Writer, tree *doctree.DocTree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}
