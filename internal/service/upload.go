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

// Upload encodes data into n shards and writes all n metadata rows and
// all n blobs. On any failure it performs a best-effort compensating
// delete of whatever it managed to write, then fails with ErrUploadFailed.
func (o *ShardOrchestrator) Upload(ctx context.Context, ownerID int64, originalFilename string, data []byte) error {
	existing, err := o.metadata.FindShards(ctx, ownerID, originalFilename)
	if err != nil {
		return fmt.Errorf("check existing shards for %s: %w", originalFilename, err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%s: %w", originalFilename, zerrors.ErrAlreadyExists)
	}

	shards, err := o.codec.Encode(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", originalFilename, zerrors.ErrInternal)
	}

	n := o.codec.TotalShards()
	shardNames := make([]string, n)
	for i := range shardNames {
		shardNames[i] = fmt.Sprintf("%s.%d.%s", originalFilename, i, uuid.NewString())
	}

	inserted := make([]bool, n)
	uploaded := make([]bool, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerPoolSize)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			sum := sha256.Sum256(shards[i])
			record := domain.ShardRecord{
				OwnerID:          ownerID,
				OriginalFilename: originalFilename,
				ShardName:        shardNames[i],
				ShardIndex:       i,
				ShardSHA256:      hex.EncodeToString(sum[:]),
				ShardByteSize:    int64(len(shards[i])),
				OriginalFileSize: int64(len(data)),
			}

			if err := o.metadata.InsertShard(gctx, record); err != nil {
				return fmt.Errorf("insert shard %d metadata: %w", i, err)
			}
			inserted[i] = true

			adapter, err := o.placer.Place(i)
			if err != nil {
				return fmt.Errorf("resolve backend for shard %d: %w", i, err)
			}

			putCtx, cancel := context.WithTimeout(gctx, o.perCallTimeout)
			defer cancel()
			if err := adapter.Put(putCtx, shardNames[i], shards[i]); err != nil {
				return fmt.Errorf("upload shard %d: %w", i, err)
			}
			uploaded[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).WithField("file", originalFilename).Warn("upload failed, rolling back")
		o.compensate(ctx, ownerID, shardNames, inserted, uploaded)
		return fmt.Errorf("%s: %w: %v", originalFilename, zerrors.ErrUploadFailed, err)
	}

	log.WithFields(log.Fields{"file": originalFilename, "shards": n, "size": len(data)}).Debug("upload complete")
	return nil
}

// compensate best-effort removes any metadata rows and blobs this upload
// managed to write before failing. Failures here are logged, never
// returned — the upload has already failed and the caller cannot act on
// cleanup errors beyond what is logged for janitorial follow-up.
func (o *ShardOrchestrator) compensate(ctx context.Context, ownerID int64, shardNames []string, inserted, uploaded []bool) {
	for i, name := range shardNames {
		if inserted[i] {
			if err := o.metadata.DeleteShard(ctx, ownerID, name); err != nil {
				log.WithError(err).WithField("shard", name).Warn("compensating metadata delete failed")
			}
		}
		if uploaded[i] {
			if adapter, err := o.placer.Place(i); err == nil {
				if err := adapter.Delete(ctx, name); err != nil {
					log.WithError(err).WithField("shard", name).Warn("compensating blob delete failed")
				}
			}
		}
	}
}
