package outline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPageDocument() []Page {
	para := strings.Repeat("lorem ", 24) + "ipsum!"
	return []Page{
		{Lines: []Line{
			line("Introduction", "Arial-Bold", 20, "0"),
			line(para, "Arial", 10, "0"),
			line("Page 1", "Arial", 8, "0"),
		}},
		{Lines: []Line{
			line("More text continues here.", "Arial", 10, "0"),
			line("Page 2", "Arial", 8, "0"),
		}},
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	res, err := Process(context.Background(), twoPageDocument(), "report.pdf", Options{})
	require.NoError(t, err)

	// Both pages carry a footer number, so coverage is 100% and the mode of
	// operational-minus-printed differences is 0.
	require.NotNil(t, res.PageOffset)
	assert.Equal(t, 0, *res.PageOffset)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "report.pdf", rec.FileName)
	assert.Equal(t, "Introduction", rec.TitlePath)
	assert.Equal(t, strings.Repeat("lorem ", 24)+"ipsum! More text continues here.", rec.Text)
	assert.Equal(t, "1, 2", rec.OperationalPage)
	assert.Equal(t, "1, 2", rec.PageNumber)
	assert.Equal(t, "Page", rec.Footer)
	assert.Empty(t, rec.Header)

	assert.Equal(t, StyleKey{FontName: "Arial", FontSize: 10, ColorKey: "0"}, res.Stats.Main)
}

func TestProcess_FooterOnlySecondPage(t *testing.T) {
	pages := twoPageDocument()
	pages[1].Lines = pages[1].Lines[1:]

	res, err := Process(context.Background(), pages, "report.pdf", Options{})
	require.NoError(t, err)

	// Page 2 is entirely small text, so the guard keeps "Page 2" as body and
	// the page has no candidate. One of two pages missing is exactly 50%,
	// which still allows recovery.
	require.NotNil(t, res.PageOffset)
	assert.Equal(t, 0, *res.PageOffset)

	require.Len(t, res.Records, 1)
	assert.Equal(t, strings.Repeat("lorem ", 24)+"ipsum! Page 2", res.Records[0].Text)
	assert.Equal(t, "1, 2", res.Records[0].PageNumber)
}

func TestProcess_Empty(t *testing.T) {
	res, err := Process(context.Background(), nil, "empty.pdf", Options{})
	require.NoError(t, err)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Nil(t, res.PageOffset)

	res, err = Process(context.Background(), []Page{{}, {Lines: []Line{nil}}}, "blank.pdf", Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestProcess_ParallelMatchesSequential(t *testing.T) {
	var pages []Page
	for i := range 25 {
		pages = append(pages, Page{Lines: []Line{
			line(fmt.Sprintf("Chapter %d", i+1), "Times-Bold", 18, "0"),
			line(strings.Repeat("words on a page ", 8), "Times", 11, "0"),
			line(fmt.Sprintf("%d", i+3), "Times", 9, "0"),
		}})
		if i%5 == 0 {
			pages = append(pages, Page{})
		}
	}

	seq, err := Process(context.Background(), pages, "book.pdf", Options{Workers: 1})
	require.NoError(t, err)
	par, err := Process(context.Background(), pages, "book.pdf", Options{Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, seq.Records, par.Records)
	assert.Equal(t, seq.Elements, par.Elements)
	require.Len(t, seq.Records, 25)
	assert.Equal(t, "Chapter 1", seq.Records[0].TitlePath)
}

func TestProcess_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Process(ctx, twoPageDocument(), "report.pdf", Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestProcess_NormalizeLineFonts(t *testing.T) {
	l := line("Statement", "Arial", 10, "0")
	l[3].FontName = "Arial-Bold"
	pages := []Page{{Lines: []Line{l}}}

	plain, err := Process(context.Background(), pages, "x.pdf", Options{})
	require.NoError(t, err)
	assert.Len(t, plain.Elements, 3)

	normalized, err := Process(context.Background(), pages, "x.pdf", Options{NormalizeLineFonts: true})
	require.NoError(t, err)
	require.Len(t, normalized.Elements, 1)
	assert.Equal(t, "Statement", normalized.Elements[0].Text)
}
