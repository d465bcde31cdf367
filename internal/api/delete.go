package api

import "net/http"

// handleDelete implements DELETE /file?filename=<name>.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.orchestrator.Delete(r.Context(), ownerID, filename); err != nil {
		writeOrchestratorError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("File deleted successfully"))
}
