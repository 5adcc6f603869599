package api

import "net/http"

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"outline":       s.orchestrator.Stats().Snapshot(),
		"queue_depth":   s.orchestrator.QueueDepth(),
		"store_enabled": s.docs != nil,
	})
}
