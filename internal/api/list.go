package api

import (
	"net/http"

	"github.com/zzenonn/zstore/internal/domain"
)

// handleList implements GET /file/list: a JSON array of file summaries
// for the authenticated owner.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.authenticate(r)
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	summaries, err := h.orchestrator.List(r.Context(), ownerID)
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}
	if summaries == nil {
		summaries = []domain.FileSummary{}
	}

	writeJSON(w, http.StatusOK, summaries)
}
