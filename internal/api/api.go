// Package api implements the Boundary: the HTTP surface that turns
// bearer-authenticated multipart requests into ShardOrchestrator calls
// and orchestrator errors back into status codes. It holds no state of
// its own beyond the collaborators it was built with.
package api

import (
	"context"
	"net/http"

	"github.com/zzenonn/zstore/internal/auth"
	"github.com/zzenonn/zstore/internal/domain"
)

// Orchestrator is the subset of ShardOrchestrator the Boundary calls.
type Orchestrator interface {
	Upload(ctx context.Context, ownerID int64, originalFilename string, data []byte) error
	Retrieval(ctx context.Context, ownerID int64, originalFilename string) ([]byte, error)
	List(ctx context.Context, ownerID int64) ([]domain.FileSummary, error)
	Delete(ctx context.Context, ownerID int64, originalFilename string) error
}

// Handler serves the file endpoints (POST /file, GET /file, GET /file/list,
// DELETE /file) plus GET /healthz.
type Handler struct {
	orchestrator Orchestrator
	resolver     auth.TokenResolver
	maxUpload    int64
}

// NewHandler builds a Handler. maxUpload bounds the multipart body size
// accepted by POST /file, in bytes.
func NewHandler(orchestrator Orchestrator, resolver auth.TokenResolver, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	return &Handler{orchestrator: orchestrator, resolver: resolver, maxUpload: maxUpload}
}

// Routes builds the ServeMux the server listens with.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /file", h.handleUpload)
	mux.HandleFunc("GET /file", h.handleRetrieval)
	mux.HandleFunc("GET /file/list", h.handleList)
	mux.HandleFunc("DELETE /file", h.handleDelete)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	return mux
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
