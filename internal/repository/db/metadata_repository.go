package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/zzenonn/zstore/internal/domain"
	zerrors "github.com/zzenonn/zstore/internal/errors"
)

// MetadataStore is the PostgreSQL-backed implementation of the
// ShardRecord persistence operations. Every operation is a single
// statement; there are no exposed transactions, matching the interface
// the orchestrator expects.
type MetadataStore struct {
	db *Database
}

// NewMetadataStore builds a MetadataStore over an already-opened Database.
func NewMetadataStore(db *Database) *MetadataStore {
	return &MetadataStore{db: db}
}

// InsertShard inserts one ShardRecord. It fails on a primary-key
// ((filename, shard_index)) conflict, surfaced as ErrAlreadyExists.
func (s *MetadataStore) InsertShard(ctx context.Context, record domain.ShardRecord) error {
	const query = `
		INSERT INTO file (user_id, filename, original_filename, original_file_size, shard_index, filesha256, byte_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Conn.ExecContext(ctx, query,
		record.OwnerID,
		record.ShardName,
		record.OriginalFilename,
		record.OriginalFileSize,
		record.ShardIndex,
		record.ShardSHA256,
		record.ShardByteSize,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("shard %s index %d: %w", record.ShardName, record.ShardIndex, zerrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert shard: %w", err)
	}
	return nil
}

// FindShards returns all rows for (ownerID, originalFilename), ordered by
// shard_index ascending — the orchestrator relies on this ordering to
// align rows with Codec decode slots.
func (s *MetadataStore) FindShards(ctx context.Context, ownerID int64, originalFilename string) ([]domain.ShardRecord, error) {
	const query = `
		SELECT user_id, filename, original_filename, original_file_size, shard_index, filesha256, byte_size, created_at
		FROM file
		WHERE user_id = $1 AND original_filename = $2
		ORDER BY shard_index ASC`

	rows, err := s.db.Conn.QueryContext(ctx, query, ownerID, originalFilename)
	if err != nil {
		return nil, fmt.Errorf("find shards: %w", err)
	}
	defer rows.Close()

	var records []domain.ShardRecord
	for rows.Next() {
		var r domain.ShardRecord
		if err := rows.Scan(&r.OwnerID, &r.ShardName, &r.OriginalFilename, &r.OriginalFileSize,
			&r.ShardIndex, &r.ShardSHA256, &r.ShardByteSize, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shard row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find shards: %w", err)
	}
	return records, nil
}

// ListOwnedFilenames returns one representative row per distinct
// original_filename owned by ownerID.
func (s *MetadataStore) ListOwnedFilenames(ctx context.Context, ownerID int64) ([]domain.ShardRecord, error) {
	const query = `
		SELECT DISTINCT ON (original_filename) user_id, filename, original_filename, original_file_size, shard_index, filesha256, byte_size, created_at
		FROM file
		WHERE user_id = $1
		ORDER BY original_filename, shard_index ASC`

	rows, err := s.db.Conn.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned filenames: %w", err)
	}
	defer rows.Close()

	var records []domain.ShardRecord
	for rows.Next() {
		var r domain.ShardRecord
		if err := rows.Scan(&r.OwnerID, &r.ShardName, &r.OriginalFilename, &r.OriginalFileSize,
			&r.ShardIndex, &r.ShardSHA256, &r.ShardByteSize, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shard row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list owned filenames: %w", err)
	}
	return records, nil
}

// DeleteFile removes all rows for (ownerID, originalFilename). Idempotent.
func (s *MetadataStore) DeleteFile(ctx context.Context, ownerID int64, originalFilename string) error {
	const query = `DELETE FROM file WHERE user_id = $1 AND original_filename = $2`
	_, err := s.db.Conn.ExecContext(ctx, query, ownerID, originalFilename)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// DeleteShard removes a single row by its unique (owner, shard_name) key.
// Idempotent.
func (s *MetadataStore) DeleteShard(ctx context.Context, ownerID int64, shardName string) error {
	const query = `DELETE FROM file WHERE user_id = $1 AND filename = $2`
	_, err := s.db.Conn.ExecContext(ctx, query, ownerID, shardName)
	if err != nil {
		return fmt.Errorf("delete shard: %w", err)
	}
	return nil
}

// isUniqueViolation recognizes PostgreSQL's unique_violation SQLSTATE
// (23505) as reported by lib/pq's *pq.Error.Code.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
