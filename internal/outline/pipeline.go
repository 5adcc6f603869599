package outline

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
)

// Options controls a pipeline run.
type Options struct {
	// Workers bounds page-level parallelism. Zero means runtime.NumCPU().
	Workers int
	// NormalizeLineFonts relabels stray fonts inside each line before
	// segmentation. See NormalizeLine.
	NormalizeLineFonts bool
	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Records is never nil.
	Records []Record
	// Elements is the trimmed, tagged element sequence the records were
	// built from.
	Elements []Element
	// Stats are the font statistics the structure classification used.
	Stats FontStats
	// PageOffset is operational minus printed page number, or nil when
	// page numbers could not be recovered.
	PageOffset *int
}

// Process runs the full structure inference pipeline over one document.
// Page-local stages run in parallel; the cross-page stages run in order
// once every page is done. The only error is a cancelled context.
func Process(ctx context.Context, pages []Page, fileName string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perPage := make([][]Element, len(pages))
	forEachPage(len(pages), workers, func(i int) {
		page := pages[i]
		if opts.NormalizeLineFonts {
			page = NormalizePage(page)
		}
		perPage[i] = AssemblePage(SegmentPage(page, i), i+1)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bodyStyle := ComputeFontStats(Flatten(perPage)).Main
	log.Debug("main body style", "font", bodyStyle.FontName, "size", bodyStyle.FontSize, "color", bodyStyle.ColorKey)

	forEachPage(len(perPage), workers, func(i int) {
		perPage[i] = TrimPage(perPage[i], bodyStyle.FontSize)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := RecoverPageNumbers(perPage)
	if offset != nil {
		log.Debug("page numbers recovered", "offset", *offset)
	} else {
		log.Debug("page numbers not recovered")
	}

	elems := Flatten(perPage)
	stats := ComputeFontStats(elems)
	tags := Classify(elems, stats)
	ApplyStructure(elems, tags)
	for _, s := range stats.Styles {
		log.Debug("style classified", "font", s.FontName, "size", s.FontSize, "color", s.ColorKey, "structure", tags[s].String())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := EmitRecords(MergeSections(elems), fileName)
	log.Debug("outline assembled", "elements", len(elems), "records", len(records))

	return &Result{
		Records:    records,
		Elements:   elems,
		Stats:      stats,
		PageOffset: offset,
	}, nil
}

// forEachPage calls fn for every index in [0, n) with at most workers
// calls in flight.
func forEachPage(n, workers int, fn func(i int)) {
	if workers == 1 || n <= 1 {
		for i := range n {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range n {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}
