package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.checker.Stats()
	if stats == nil {
		jsonError(w, "scan stats unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{
		"scan": stats.Snapshot(),
	}
	if s.orchestrator != nil {
		resp["queue_depth"] = s.orchestrator.QueueDepth()
	}
	if s.cache != nil {
		resp["cache_entries"] = s.cache.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
