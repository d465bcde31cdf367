package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zzenonn/zstore/internal/domain"
	zerrors "github.com/zzenonn/zstore/internal/errors"
)

// Retrieval reconstructs a file from whichever shards are currently
// present and digest-valid, then silently repairs any shard found
// missing or corrupted. Self-heal failures never fail the read — the
// bytes have already been reconstructed by the time repair runs.
func (o *ShardOrchestrator) Retrieval(ctx context.Context, ownerID int64, originalFilename string) ([]byte, error) {
	records, err := o.metadata.FindShards(ctx, ownerID, originalFilename)
	if err != nil {
		return nil, fmt.Errorf("find shards for %s: %w", originalFilename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", originalFilename, zerrors.ErrNotFound)
	}

	n := o.codec.TotalShards()
	slots := make([][]byte, n)
	byIndex := make([]*domain.ShardRecord, n)
	for i := range records {
		r := records[i]
		if r.ShardIndex >= 0 && r.ShardIndex < n {
			byIndex[r.ShardIndex] = &r
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerPoolSize)
	for idx, rec := range byIndex {
		idx, rec := idx, rec
		g.Go(func() error {
			if rec == nil {
				return nil
			}
			adapter, err := o.placer.Place(idx)
			if err != nil {
				log.WithError(err).WithField("shard_index", idx).Warn("backend resolution failed, treating slot as absent")
				return nil
			}

			getCtx, cancel := context.WithTimeout(gctx, o.perCallTimeout)
			defer cancel()
			data, err := adapter.Get(getCtx, rec.ShardName)
			if err != nil {
				log.WithError(err).WithField("shard_index", idx).Debug("shard download failed, treating slot as absent")
				return nil
			}

			sum := sha256.Sum256(data)
			if hex.EncodeToString(sum[:]) != rec.ShardSHA256 {
				log.WithField("shard_index", idx).Warn("shard digest mismatch, treating slot as absent")
				return nil
			}
			slots[idx] = data
			return nil
		})
	}
	_ = g.Wait() // per-shard failures are absences, never fatal to the group

	present := 0
	for _, s := range slots {
		if s != nil {
			present++
		}
	}
	if present < o.codec.DataShards() {
		return nil, fmt.Errorf("%s: %w", originalFilename, zerrors.ErrUnrecoverable)
	}

	originalSize := int(records[0].OriginalFileSize)
	reconstructed, err := o.codec.Decode(slots, originalSize)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", originalFilename, zerrors.ErrInternal, err)
	}

	if present < n {
		o.selfHeal(ctx, ownerID, originalFilename, byIndex, slots, reconstructed)
	}

	return reconstructed, nil
}

// selfHeal re-derives the canonical n shards from the already-reconstructed
// file and rewrites every absent slot under a fresh shard name. Failures
// are logged and retried on the next access; they never surface to the
// caller of Retrieval.
func (o *ShardOrchestrator) selfHeal(ctx context.Context, ownerID int64, originalFilename string, byIndex []*domain.ShardRecord, slots [][]byte, reconstructed []byte) {
	canonical, err := o.codec.Encode(reconstructed)
	if err != nil {
		log.WithError(err).WithField("file", originalFilename).Warn("self-heal: re-encode failed")
		return
	}

	n := o.codec.TotalShards()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerPoolSize)
	for idx := 0; idx < n; idx++ {
		idx := idx
		if slots[idx] != nil {
			continue
		}
		g.Go(func() error {
			newName := fmt.Sprintf("%s.%d.%s", originalFilename, idx, uuid.NewString())
			sum := sha256.Sum256(canonical[idx])

			if old := byIndex[idx]; old != nil {
				if err := o.metadata.DeleteShard(gctx, ownerID, old.ShardName); err != nil {
					log.WithError(err).WithField("shard_index", idx).Warn("self-heal: delete stale metadata row failed")
				}
			}

			record := domain.ShardRecord{
				OwnerID:          ownerID,
				OriginalFilename: originalFilename,
				ShardName:        newName,
				ShardIndex:       idx,
				ShardSHA256:      hex.EncodeToString(sum[:]),
				ShardByteSize:    int64(len(canonical[idx])),
				OriginalFileSize: int64(len(reconstructed)),
			}
			if err := o.metadata.InsertShard(gctx, record); err != nil {
				log.WithError(err).WithField("shard_index", idx).Warn("self-heal: insert new metadata row failed")
				return nil
			}

			adapter, err := o.placer.Place(idx)
			if err != nil {
				log.WithError(err).WithField("shard_index", idx).Warn("self-heal: backend resolution failed")
				return nil
			}
			putCtx, cancel := context.WithTimeout(gctx, o.perCallTimeout)
			defer cancel()
			if err := adapter.Put(putCtx, newName, canonical[idx]); err != nil {
				log.WithError(err).WithField("shard_index", idx).Warn("self-heal: blob upload failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}
