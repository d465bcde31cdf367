package api

import (
	"encoding/json"
	"net/http"
	"strings"

	zerrors "github.com/zzenonn/zstore/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// authenticate extracts and resolves the bearer token, returning the
// owner_id it maps to or ErrAuthFailure.
func (h *Handler) authenticate(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return 0, zerrors.ErrAuthFailure
	}

	ownerID, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		return 0, zerrors.Wrap(zerrors.ErrAuthFailure, "%v", err)
	}
	return ownerID, nil
}

// writeOrchestratorError maps an orchestrator error to the exact status
// and body the file endpoints are contracted to return.
func writeOrchestratorError(w http.ResponseWriter, err error) {
	switch zerrors.Kind(err) {
	case zerrors.KindAlreadyExists:
		http.Error(w, "File already exists", http.StatusBadRequest)
	case zerrors.KindNotFound:
		http.Error(w, "File not found or shards missing", http.StatusNotFound)
	case zerrors.KindUnrecoverable:
		http.Error(w, "Not enough shards to reconstruct the file", http.StatusBadRequest)
	case zerrors.KindAuthFailure:
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
