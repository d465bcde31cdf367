package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/zzenonn/zstore/internal/domain"
	"github.com/zzenonn/zstore/internal/repository/objectstore"
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fakeAdapter is an in-memory BackendAdapter used to exercise the
// orchestrator without real cloud storage.
type fakeAdapter struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	location string
}

func newFakeAdapter(location string) *fakeAdapter {
	return &fakeAdapter{blobs: make(map[string][]byte), location: location}
}

func (f *fakeAdapter) Location() string { return f.location }

func (f *fakeAdapter) Put(ctx context.Context, shardName string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.blobs[shardName] = cp
	return nil
}

func (f *fakeAdapter) Get(ctx context.Context, shardName string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[shardName]
	if !ok {
		return nil, objectstore.ErrBlobNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (f *fakeAdapter) Exists(ctx context.Context, shardName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[shardName]
	return ok, nil
}

func (f *fakeAdapter) Delete(ctx context.Context, shardName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, shardName)
	return nil
}

// deleteBlobDirect simulates backend data loss, bypassing the adapter
// contract (tests only).
func (f *fakeAdapter) deleteBlobDirect(shardName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, shardName)
}

// failingAdapter always fails Put, used to test upload atomicity.
type failingAdapter struct {
	*fakeAdapter
}

func (f *failingAdapter) Put(ctx context.Context, shardName string, data []byte) error {
	return fmt.Errorf("simulated backend failure")
}

// fakeMetadataStore is an in-memory MetadataStore whose rows are keyed by
// shard name; InsertShard rejects a second row with the same
// (original_filename, shard_index), regardless of owner.
type fakeMetadataStore struct {
	mu   sync.Mutex
	rows map[string]domain.ShardRecord // key: shardName
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{rows: make(map[string]domain.ShardRecord)}
}

func (s *fakeMetadataStore) InsertShard(ctx context.Context, record domain.ShardRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.OriginalFilename == record.OriginalFilename && r.ShardIndex == record.ShardIndex {
			return fmt.Errorf("primary key conflict on (filename=%s, shard_index=%d)", record.OriginalFilename, record.ShardIndex)
		}
	}
	s.rows[record.ShardName] = record
	return nil
}

func (s *fakeMetadataStore) FindShards(ctx context.Context, ownerID int64, originalFilename string) ([]domain.ShardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ShardRecord
	for _, r := range s.rows {
		if r.OwnerID == ownerID && r.OriginalFilename == originalFilename {
			out = append(out, r)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ShardIndex < out[i].ShardIndex {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *fakeMetadataStore) ListOwnedFilenames(ctx context.Context, ownerID int64) ([]domain.ShardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []domain.ShardRecord
	for _, r := range s.rows {
		if r.OwnerID == ownerID && !seen[r.OriginalFilename] {
			seen[r.OriginalFilename] = true
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeMetadataStore) DeleteFile(ctx context.Context, ownerID int64, originalFilename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, r := range s.rows {
		if r.OwnerID == ownerID && r.OriginalFilename == originalFilename {
			delete(s.rows, name)
		}
	}
	return nil
}

func (s *fakeMetadataStore) DeleteShard(ctx context.Context, ownerID int64, shardName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, shardName)
	return nil
}

func (s *fakeMetadataStore) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
