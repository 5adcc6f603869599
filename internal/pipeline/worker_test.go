package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func glyphLine(text, font string, size float64) outline.Line {
	var l outline.Line
	for _, r := range text {
		l = append(l, outline.Glyph{Text: string(r), FontName: font, FontSize: size, ColorKey: "0"})
	}
	return l
}

// sampleDocument is a two-page glyph stream: one heading, a paragraph
// continuing onto page two, and a "Page N" footer on both pages.
func sampleDocument(t *testing.T) []byte {
	t.Helper()
	para := strings.Repeat("lorem ", 24) + "ipsum!"
	stream := parser.GlyphStream{Pages: []outline.Page{
		{Lines: []outline.Line{
			glyphLine("Introduction", "Arial-Bold", 20),
			glyphLine(para, "Arial", 10),
			glyphLine("Page 1", "Arial", 8),
		}},
		{Lines: []outline.Line{
			glyphLine("More text continues here.", "Arial", 10),
			glyphLine("Page 2", "Arial", 8),
		}},
	}}
	data, err := json.Marshal(stream)
	if err != nil {
		t.Fatalf("marshal glyph stream: %v", err)
	}
	return data
}

// fakeStore records writes and can fail a fixed number of times.
type fakeStore struct {
	mu       sync.Mutex
	records  map[int]outline.Record
	meta     *store.Meta
	failures int
	failErr  error
	calls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int]outline.Record)}
}

func (f *fakeStore) PutRecord(ctx context.Context, docID string, index int, rec outline.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures != 0 {
		if f.failures > 0 {
			f.failures--
		}
		return f.failErr
	}
	f.records[index] = rec
	return nil
}

func (f *fakeStore) PutMeta(ctx context.Context, docID string, meta store.Meta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta.DocID = docID
	f.meta = &meta
	return nil
}

func newTestWorker(st RecordStore) *Worker {
	w := NewWorker(st, discardLogger(), outline.Options{Workers: 2}, NewStats(10, time.Hour), 2)
	w.backoff = func(int) time.Duration { return time.Millisecond }
	return w
}

func TestWorker_Outline(t *testing.T) {
	w := newTestWorker(nil)
	pages, res, err := w.Outline(context.Background(), "report.json", sampleDocument(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages != 2 {
		t.Errorf("expected 2 pages, got %d", pages)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if res.Records[0].TitlePath != "Introduction" {
		t.Errorf("expected title path %q, got %q", "Introduction", res.Records[0].TitlePath)
	}
	if res.Records[0].FileName != "report.json" {
		t.Errorf("expected file name %q, got %q", "report.json", res.Records[0].FileName)
	}
	if snap := w.stats.Snapshot(); snap.Count != 1 || snap.Pages != 2 {
		t.Errorf("expected one stats sample over 2 pages, got count=%d pages=%d", snap.Count, snap.Pages)
	}
}

func TestWorker_OutlineErrors(t *testing.T) {
	w := newTestWorker(nil)
	if _, _, err := w.Outline(context.Background(), "notes.txt", []byte("x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, _, err := w.Outline(context.Background(), "bad.json", []byte("{")); err == nil {
		t.Error("expected error for malformed glyph stream")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := w.Outline(ctx, "report.json", sampleDocument(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWorker_ProcessWithoutStore(t *testing.T) {
	job := NewJob("report.json", "", sampleDocument(t))
	newTestWorker(nil).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Pages != 2 || snap.Progress.Records != 1 {
		t.Errorf("expected 2 pages and 1 record, got %d and %d", snap.Progress.Pages, snap.Progress.Records)
	}
	if snap.Progress.RecordsStored != 0 {
		t.Errorf("expected nothing stored, got %d", snap.Progress.RecordsStored)
	}
	if len(job.Records()) != 1 {
		t.Errorf("expected records kept on job, got %d", len(job.Records()))
	}
}

func TestWorker_ProcessStoresRecords(t *testing.T) {
	st := newFakeStore()
	job := NewJob("report.json", "Annual report", sampleDocument(t))
	newTestWorker(st).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.RecordsStored != 1 {
		t.Errorf("expected 1 record stored, got %d", snap.Progress.RecordsStored)
	}
	if _, ok := st.records[0]; !ok {
		t.Error("expected record 0 in store")
	}
	if st.meta == nil {
		t.Fatal("expected meta to be written")
	}
	if st.meta.Title != "Annual report" || st.meta.Pages != 2 || st.meta.Records != 1 {
		t.Errorf("unexpected meta: %+v", *st.meta)
	}
	if st.meta.ContentHash != job.ContentHash {
		t.Errorf("expected content hash %q, got %q", job.ContentHash, st.meta.ContentHash)
	}
}

func TestWorker_ProcessRetriesTransientErrors(t *testing.T) {
	st := newFakeStore()
	st.failures = 2
	st.failErr = &store.RetryableError{StatusCode: 503, Message: "busy"}

	job := NewJob("report.json", "", sampleDocument(t))
	newTestWorker(st).Process(context.Background(), job)

	if snap := job.Snapshot(); snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if st.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", st.calls)
	}
}

func TestWorker_ProcessStoreFailure(t *testing.T) {
	st := newFakeStore()
	st.failures = -1
	st.failErr = errors.New("bad request")

	job := NewJob("report.json", "", sampleDocument(t))
	newTestWorker(st).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if st.calls != 1 {
		t.Errorf("expected no retry for permanent error, got %d calls", st.calls)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected errors to be recorded")
	}
}

func TestWorker_ProcessUnsupported(t *testing.T) {
	job := NewJob("notes.docx", "", []byte("x"))
	newTestWorker(nil).Process(context.Background(), job)
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failed in parsing, got %q in %q", snap.Status, snap.Phase)
	}
}
