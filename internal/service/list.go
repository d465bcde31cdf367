package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/zzenonn/zstore/internal/domain"
)

// List returns one summary per file owned by ownerID, with
// shards_retrievable reflecting current backend presence only (not
// digest validity). Probing fans out across shards within a file and
// across files, both bounded by the same worker pool size.
func (o *ShardOrchestrator) List(ctx context.Context, ownerID int64) ([]domain.FileSummary, error) {
	representatives, err := o.metadata.ListOwnedFilenames(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned filenames: %w", err)
	}

	summaries := make([]domain.FileSummary, len(representatives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerPoolSize)
	for i, rep := range representatives {
		i, rep := i, rep
		g.Go(func() error {
			records, err := o.metadata.FindShards(gctx, ownerID, rep.OriginalFilename)
			if err != nil {
				return fmt.Errorf("find shards for %s: %w", rep.OriginalFilename, err)
			}

			retrievable := o.countRetrievable(gctx, records)
			summaries[i] = domain.FileSummary{
				OriginalFilename:  rep.OriginalFilename,
				OriginalFileSize:  rep.OriginalFileSize,
				ShardsTotal:       o.codec.TotalShards(),
				ShardsRetrievable: retrievable,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (o *ShardOrchestrator) countRetrievable(ctx context.Context, records []domain.ShardRecord) int {
	results := make([]bool, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerPoolSize)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			adapter, err := o.placer.Place(rec.ShardIndex)
			if err != nil {
				return nil
			}
			existsCtx, cancel := context.WithTimeout(gctx, o.perCallTimeout)
			defer cancel()
			ok, err := adapter.Exists(existsCtx, rec.ShardName)
			if err == nil && ok {
				results[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, ok := range results {
		if ok {
			count++
		}
	}
	return count
}
