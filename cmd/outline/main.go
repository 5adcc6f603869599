// Command outline extracts a titled paragraph outline from a PDF or a
// glyph-stream JSON file.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
