// Package service implements the ShardOrchestrator: the behavioural heart
// of the store. It drives encode+upload, download+verify+decode,
// self-healing, listing, and deletion, and owns all of the system's
// parallelism via a bounded worker pool per operation.
//
// Architecture:
// - Codec produces/consumes the n equal-length shards of a file.
// - MetadataStore persists and queries ShardRecord rows.
// - placement.Placer resolves a shard index to the BackendAdapter that
//   owns it.
// All three are shared, immutable process-wide state after
// initialization; the orchestrator itself holds no mutable state beyond
// those references and its configuration.
package service

import (
	"context"
	"time"

	"github.com/zzenonn/zstore/internal/domain"
	"github.com/zzenonn/zstore/internal/placement"
)

// Codec is the subset of internal/codec.Codec the orchestrator depends
// on, named here so the orchestrator can be tested against a fake.
type Codec interface {
	DataShards() int
	ParityShards() int
	TotalShards() int
	ShardSize(originalSize int) int
	Encode(data []byte) ([][]byte, error)
	Decode(slots [][]byte, originalSize int) ([]byte, error)
}

// MetadataStore is the subset of db.MetadataStore the orchestrator
// depends on.
type MetadataStore interface {
	InsertShard(ctx context.Context, record domain.ShardRecord) error
	FindShards(ctx context.Context, ownerID int64, originalFilename string) ([]domain.ShardRecord, error)
	ListOwnedFilenames(ctx context.Context, ownerID int64) ([]domain.ShardRecord, error)
	DeleteFile(ctx context.Context, ownerID int64, originalFilename string) error
	DeleteShard(ctx context.Context, ownerID int64, shardName string) error
}

// ShardOrchestrator owns the n configured backend adapters (through
// placer) and the metadata store, and exposes Upload/Retrieval/List/Delete.
type ShardOrchestrator struct {
	placer         placement.Placer
	metadata       MetadataStore
	codec          Codec
	workerPoolSize int
	perCallTimeout time.Duration
}

// New builds a ShardOrchestrator. workerPoolSize bounds concurrent
// in-flight backend/metadata calls per operation; perCallTimeout is the
// deadline applied to each individual backend call.
func New(placer placement.Placer, metadata MetadataStore, codec Codec, workerPoolSize int, perCallTimeout time.Duration) *ShardOrchestrator {
	if workerPoolSize <= 0 {
		workerPoolSize = codec.TotalShards()
	}
	return &ShardOrchestrator{
		placer:         placer,
		metadata:       metadata,
		codec:          codec,
		workerPoolSize: workerPoolSize,
		perCallTimeout: perCallTimeout,
	}
}
