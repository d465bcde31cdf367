package migrate

import (
	"context"
	"database/sql"
)

const (
	FileTableName = "file"
	FileTableVersion = "20260731000000_file_table"
)

// CreateFileTable creates the relational schema backing the
// MetadataStore: one row per shard, primary-keyed on (filename,
// shard_index) (filename holds the per-upload shard_name, not the
// caller-supplied name), with a separate unique index on (user_id,
// original_filename, shard_index) enforcing that a shard index is
// never duplicated within one owner's file.
type CreateFileTable struct{}

func (m *CreateFileTable) Version() string {
	return FileTableVersion
}

func (m *CreateFileTable) TableName() string {
	return FileTableName
}

func (m *CreateFileTable) Up(ctx context.Context, conn *sql.DB) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS file (
			user_id             BIGINT      NOT NULL,
			filename            VARCHAR     NOT NULL,
			original_filename   VARCHAR     NOT NULL,
			original_file_size  BIGINT      NOT NULL,
			shard_index         INT         NOT NULL,
			filesha256          CHAR(64)    NOT NULL,
			byte_size           INT         NOT NULL,
			created_at          TIMESTAMP   NOT NULL DEFAULT now(),
			PRIMARY KEY (filename, shard_index)
		)`
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return err
	}

	const index = `
		CREATE UNIQUE INDEX IF NOT EXISTS file_owner_filename_idx
		ON file (user_id, original_filename, shard_index)`
	_, err := conn.ExecContext(ctx, index)
	return err
}

func (m *CreateFileTable) Down(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, `DROP TABLE IF EXISTS file`)
	return err
}
