// Package objectstore implements the BackendAdapter contract against
// concrete cloud object stores. Each adapter instance owns exactly one
// logical location (one bucket, one region/client pair) and performs no
// digest verification of its own — that is the orchestrator's job.
package objectstore

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by Get when no object exists under the
// given shard name. Delete treats the same condition as success.
var ErrBlobNotFound = errors.New("objectstore: blob not found")

// BackendAdapter abstracts a single logical storage location. All
// operations are blocking; callers supply their own parallelism and
// per-call deadlines via ctx.
type BackendAdapter interface {
	// Put is create-or-overwrite of an opaque blob; it must be durable
	// before returning success.
	Put(ctx context.Context, shardName string, data []byte) error
	// Get returns the exact bytes last successfully written under
	// shardName, or ErrBlobNotFound.
	Get(ctx context.Context, shardName string) ([]byte, error)
	// Exists reports whether a blob is currently reachable under shardName.
	Exists(ctx context.Context, shardName string) (bool, error)
	// Delete is idempotent; a missing blob is not an error.
	Delete(ctx context.Context, shardName string) error
	// Location describes the backend for logging, e.g. "s3://bucket".
	Location() string
}
