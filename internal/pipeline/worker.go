package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/store"
)

// RecordStore persists outline records. *store.Client implements it.
type RecordStore interface {
	PutRecord(ctx context.Context, docID string, index int, rec outline.Record) error
	PutMeta(ctx context.Context, docID string, meta store.Meta) error
}

// Worker processes a single document job.
type Worker struct {
	store RecordStore
	log   *slog.Logger
	opts  outline.Options
	stats *Stats

	maxConcurrentStore int
	backoff            func(attempt int) time.Duration
}

// NewWorker creates a worker. A nil store skips persistence.
func NewWorker(st RecordStore, log *slog.Logger, opts outline.Options, stats *Stats, maxStore int) *Worker {
	if maxStore <= 0 {
		maxStore = 1
	}
	return &Worker{
		store:              st,
		log:                log,
		opts:               opts,
		stats:              stats,
		maxConcurrentStore: maxStore,
		backoff:            Backoff,
	}
}

// Outline parses a file and runs structure inference over it. It returns
// the number of pages parsed.
func (w *Worker) Outline(ctx context.Context, filename string, data []byte) (int, *outline.Result, error) {
	log := w.log.With("filename", filename)

	p, err := parser.ForFile(filename, log)
	if err != nil {
		return 0, nil, err
	}
	pages, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return 0, nil, fmt.Errorf("parse: %w", err)
	}

	opts := w.opts
	opts.Logger = log
	start := time.Now()
	res, err := outline.Process(ctx, pages, filename, opts)
	if err != nil {
		return len(pages), nil, fmt.Errorf("outline: %w", err)
	}
	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed, len(pages), len(res.Records))
	}
	log.Info("outlined document", "pages", len(pages), "records", len(res.Records), "duration_ms", elapsed.Milliseconds())
	return len(pages), res, nil
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse and outline.
	job.SetStatus(StatusParsing, "parsing")
	if !parser.IsSupportedExtension(job.Filename) {
		err := fmt.Errorf("unsupported file: %s", job.Filename)
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.SetStatus(StatusOutlining, "outlining")
	pages, res, err := w.Outline(ctx, job.Filename, job.FileData())
	if err != nil {
		log.Error("outline failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "outlining")
		return
	}
	job.SetOutline(pages, res)

	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2: Store records with bounded concurrency.
	job.SetStatus(StatusStoring, "storing")
	type storeResult struct {
		idx int
		err error
	}
	results := make(chan storeResult, len(res.Records))
	sem := make(chan struct{}, w.maxConcurrentStore)

	for i, rec := range res.Records {
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			err := w.withRetry(ctx, log, func() error {
				return w.store.PutRecord(ctx, job.DocID, i, rec)
			})
			results <- storeResult{idx: i, err: err}
		}()
	}

	stored := 0
	hadErrors := false
	for range res.Records {
		r := <-results
		if r.err != nil {
			log.Error("store failed", "record", r.idx, "error", r.err)
			job.AddError(fmt.Sprintf("record %d: %s", r.idx, r.err))
			hadErrors = true
			continue
		}
		stored++
		job.IncrStored()
	}
	log.Info("storage complete", "stored", stored, "total", len(res.Records))

	title := job.Title
	if title == "" {
		title = parser.Title(job.Filename)
	}
	metaErr := w.withRetry(ctx, log, func() error {
		return w.store.PutMeta(ctx, job.DocID, store.Meta{
			FileName:    job.Filename,
			Title:       title,
			ContentHash: job.ContentHash,
			Pages:       pages,
			Records:     stored,
			PageOffset:  res.PageOffset,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
		})
	})
	if metaErr != nil {
		log.Error("meta write failed", "error", metaErr)
		job.AddError(fmt.Sprintf("meta: %s", metaErr))
		hadErrors = true
	}

	switch {
	case !hadErrors:
		job.SetStatus(StatusCompleted, "done")
	case stored > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "storing")
	}
}

// withRetry runs fn, retrying transient store errors with backoff.
func (w *Worker) withRetry(ctx context.Context, log *slog.Logger, fn func() error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) || attempt == MaxRetries-1 {
			return lastErr
		}
		log.Warn("retryable store error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
