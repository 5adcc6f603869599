package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists every stored document.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	docs, err := s.docs.ListDocuments(r.Context())
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"documents": docs})
}

// handleDocumentRecords returns a stored document's records.
func (s *Server) handleDocumentRecords(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	docID := chi.URLParam(r, "docID")
	meta, err := s.docs.GetMeta(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if meta == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	records, err := s.docs.ListRecords(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to read records: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.render(w, r, meta.Title, records)
}

// handleDeleteDocument deletes a document and all its stored records.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	ctx := r.Context()
	docID := chi.URLParam(r, "docID")

	meta, err := s.docs.GetMeta(ctx, docID)
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if meta == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err := s.docs.DeleteDocument(ctx, docID); err != nil {
		s.log.Error("delete document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("document deleted", "doc_id", docID, "records", meta.Records)
	writeJSON(w, map[string]any{
		"doc_id":          docID,
		"records_deleted": meta.Records,
	})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.docs == nil {
		jsonError(w, "record store is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}
