package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/chunker"
	"github.com/dgallion1/pdfoutline/internal/doctree"
	"github.com/dgallion1/pdfoutline/internal/export"
	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
)

// defaultStreamName names a glyph stream posted as a raw JSON body.
const defaultStreamName = "document.json"

// upload is a file received by an endpoint.
type upload struct {
	filename string
	title    string
	data     []byte
}

// statusError carries the HTTP status for a rejected request.
type statusError struct {
	msg  string
	code int
}

func (e *statusError) Error() string { return e.msg }

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.orchestrator.Outline(r.Context(), up.filename, up.data)
	if err != nil {
		s.log.Error("outline failed", "filename", up.filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.render(w, r, up.title, res.Records)
}

// readUpload accepts either a multipart form with a "file" field or a raw
// glyph stream JSON body.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	// Limit total request size; extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		data, err := readLimited(r.Body, s.cfg.MaxUploadBytes)
		if err != nil {
			return nil, err
		}
		name := sanitizeFilename(r.URL.Query().Get("name"))
		if name == "unnamed" {
			name = defaultStreamName
		}
		if filepath.Ext(name) != ".json" {
			name += ".json"
		}
		return &upload{filename: name, title: titleOr(r.URL.Query().Get("title"), name), data: data}, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, &statusError{"invalid multipart form: " + err.Error(), http.StatusBadRequest}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &statusError{"file is required: " + err.Error(), http.StatusBadRequest}
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, &statusError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}
	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	return &upload{filename: filename, title: titleOr(r.FormValue("title"), filename), data: data}, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &statusError{fmt.Sprintf("file exceeds max size (%d bytes)", limit), http.StatusRequestEntityTooLarge}
		}
		return nil, &statusError{"failed to read file", http.StatusBadRequest}
	}
	if int64(len(data)) > limit {
		return nil, &statusError{fmt.Sprintf("file exceeds max size (%d bytes)", limit), http.StatusRequestEntityTooLarge}
	}
	return data, nil
}

func titleOr(title, filename string) string {
	if title != "" {
		return title
	}
	return parser.Title(filename)
}

// render writes records in the format named by the "format" query
// parameter: json (default), markdown, html, tree or chunks.
func (s *Server) render(w http.ResponseWriter, r *http.Request, title string, records []outline.Record) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		_ = export.JSON(w, records)

	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, export.Markdown(title, records))

	case "html":
		html, err := export.HTML(title, records)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)

	case "tree":
		writeJSON(w, doctree.FromRecords(title, records))

	case "chunks":
		cfg := chunker.Config{
			ChunkSize:    queryInt(r, "chunk_size", s.cfg.DefaultChunkSize),
			ChunkOverlap: queryInt(r, "overlap", s.cfg.DefaultChunkOverlap),
			MinChunk:     chunker.DefaultConfig().MinChunk,
		}
		chunks := chunker.ChunkRecords(records, cfg)
		if chunks == nil {
			chunks = []doctree.Chunk{}
		}
		writeJSON(w, map[string]any{"chunks": chunks})

	default:
		jsonError(w, "unsupported format: "+format, http.StatusBadRequest)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var se *statusError
	if errors.As(err, &se) {
		jsonError(w, se.msg, se.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
