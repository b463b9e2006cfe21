package handlers

import "net/http"

// handleHealth reports whether the service can reach its database
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.Health.Ping(r.Context()); err != nil {
		h.log.Warn("Health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", DB: "unreachable"})
		return
	}
	respondOK(w, HealthResponse{Status: "ok", DB: "ok"})
}
