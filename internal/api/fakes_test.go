package api

import (
	"context"
	"strconv"
	"sync"

	"github.com/zzenonn/zstore/internal/domain"
	zerrors "github.com/zzenonn/zstore/internal/errors"
)

// fakeOrchestrator is an in-memory Orchestrator used to exercise the
// Boundary's routing, auth, and error-mapping without a real
// ShardOrchestrator behind it.
type fakeOrchestrator struct {
	mu        sync.Mutex
	files     map[string][]byte // key: filename#ownerID
	summaries map[int64][]domain.FileSummary
	failWith  error // if set, every call fails with this error
}

func newFakeOrchestrator() *fakeOrchestrator {
	return &fakeOrchestrator{
		files:     make(map[string][]byte),
		summaries: make(map[int64][]domain.FileSummary),
	}
}

func key(ownerID int64, filename string) string {
	return filename + "#" + strconv.FormatInt(ownerID, 10)
}

func (f *fakeOrchestrator) Upload(ctx context.Context, ownerID int64, originalFilename string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	k := key(ownerID, originalFilename)
	if _, ok := f.files[k]; ok {
		return zerrors.ErrAlreadyExists
	}
	f.files[k] = append([]byte(nil), data...)
	return nil
}

func (f *fakeOrchestrator) Retrieval(ctx context.Context, ownerID int64, originalFilename string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	data, ok := f.files[key(ownerID, originalFilename)]
	if !ok {
		return nil, zerrors.ErrNotFound
	}
	return data, nil
}

func (f *fakeOrchestrator) List(ctx context.Context, ownerID int64) ([]domain.FileSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.summaries[ownerID], nil
}

// Delete is idempotent: removing an absent file is not an error.
func (f *fakeOrchestrator) Delete(ctx context.Context, ownerID int64, originalFilename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.files, key(ownerID, originalFilename))
	return nil
}
