package api

import (
	"fmt"
	"net/http"
)

// handleRetrieval implements GET /file?filename=<name>: the reconstructed
// file is streamed back as an octet-stream attachment.
func (h *Handler) handleRetrieval(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.authenticate(r)
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "missing required query parameter \"filename\"", http.StatusBadRequest)
		return
	}

	data, err := h.orchestrator.Retrieval(r.Context(), ownerID, filename)
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
