package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Delete removes a file's metadata first, which is the authoritative
// boundary a concurrent retrieval observes, then best-effort deletes the
// underlying blobs. Blob deletion failures are logged, not returned —
// the file is already logically gone from the user's perspective.
// Idempotent: deleting an absent or already-deleted file succeeds.
func (o *ShardOrchestrator) Delete(ctx context.Context, ownerID int64, originalFilename string) error {
	records, err := o.metadata.FindShards(ctx, ownerID, originalFilename)
	if err != nil {
		return fmt.Errorf("find shards for %s: %w", originalFilename, err)
	}

	if err := o.metadata.DeleteFile(ctx, ownerID, originalFilename); err != nil {
		return fmt.Errorf("delete metadata for %s: %w", originalFilename, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerPoolSize)
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			adapter, err := o.placer.Place(rec.ShardIndex)
			if err != nil {
				log.WithError(err).WithField("shard_index", rec.ShardIndex).Warn("delete: backend resolution failed")
				return nil
			}
			delCtx, cancel := context.WithTimeout(gctx, o.perCallTimeout)
			defer cancel()
			if err := adapter.Delete(delCtx, rec.ShardName); err != nil {
				log.WithError(err).WithField("shard", rec.ShardName).Warn("delete: best-effort blob delete failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return nil
}
