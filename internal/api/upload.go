package api

import (
	"io"
	"net/http"
)

// handleUpload implements POST /file: multipart field "file" is erasure
// coded and stored under its own filename for the authenticated owner.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.authenticate(r)
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing form field \"file\"", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		http.Error(w, "failed to read upload body", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > h.maxUpload {
		http.Error(w, "file exceeds maximum upload size", http.StatusBadRequest)
		return
	}

	if err := h.orchestrator.Upload(r.Context(), ownerID, header.Filename, data); err != nil {
		writeOrchestratorError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("File successfully encoded and stored"))
}
