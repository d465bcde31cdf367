package domain

import "time"

// ShardRecord is one persisted row describing a single erasure-coded
// shard of a stored file. A complete file owns exactly n rows, one per
// ShardIndex in [0, n), all sharing OriginalFileSize.
type ShardRecord struct {
	OwnerID          int64     `json:"owner_id"`
	OriginalFilename string    `json:"original_filename"`
	ShardName        string    `json:"shard_name"`
	ShardIndex       int       `json:"shard_index"`
	ShardSHA256      string    `json:"shard_sha256"`
	ShardByteSize    int64     `json:"shard_byte_size"`
	OriginalFileSize int64     `json:"original_file_size"`
	CreatedAt        time.Time `json:"created_at"`
}

// FileSummary is one entry in a file listing: a file's identity plus how
// many of its n shards currently resolve to a reachable blob.
type FileSummary struct {
	OriginalFilename  string `json:"original_filename"`
	OriginalFileSize  int64  `json:"original_file_size"`
	ShardsTotal       int    `json:"shards_total"`
	ShardsRetrievable int    `json:"shards_retrievable"`
}
