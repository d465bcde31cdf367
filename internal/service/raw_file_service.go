// Package service: this file implements DirectBlobClient, a debugging
// escape hatch that talks to a single backend location directly, bypassing
// the orchestrator, erasure coding, and metadata entirely. It exists for
// operators who need to inspect or hand-repair one physical shard blob
// without reconstructing the whole file.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/zstore/internal/repository/objectstore"
)

// DirectBlobClient resolves a single raw location string (e.g.
// "s3://bucket?region=us-east-1" or "gs://bucket") to one BackendAdapter
// and performs unsharded, unverified blob operations against it.
type DirectBlobClient struct {
	factory *objectstore.Factory
}

// NewDirectBlobClient builds a DirectBlobClient from the same factory the
// orchestrator's backends are built from.
func NewDirectBlobClient(factory *objectstore.Factory) *DirectBlobClient {
	return &DirectBlobClient{factory: factory}
}

func (c *DirectBlobClient) resolve(location string) (objectstore.BackendAdapter, error) {
	adapters, err := c.factory.Build([]string{location})
	if err != nil {
		return nil, fmt.Errorf("resolve backend %s: %w", location, err)
	}
	return adapters[0], nil
}

// PutBlob writes reader's contents verbatim to shardName at location, with
// no encoding, no digest, and no metadata row.
func (c *DirectBlobClient) PutBlob(ctx context.Context, location, shardName string, reader io.Reader, size int64, quiet bool) error {
	adapter, err := c.resolve(location)
	if err != nil {
		return err
	}

	var progressReader io.Reader = reader
	if !quiet && size > 0 {
		bar := progressbar.DefaultBytes(size, "uploading")
		pbReader := progressbar.NewReader(reader, bar)
		progressReader = &pbReader
	}

	data, err := io.ReadAll(progressReader)
	if err != nil {
		return fmt.Errorf("read blob body: %w", err)
	}

	log.WithField("shard", shardName).WithField("location", location).Debug("direct blob put")
	return adapter.Put(ctx, shardName, data)
}

// GetBlob reads shardName back from location verbatim.
func (c *DirectBlobClient) GetBlob(ctx context.Context, location, shardName string, quiet bool) (io.ReadCloser, error) {
	adapter, err := c.resolve(location)
	if err != nil {
		return nil, err
	}

	log.WithField("shard", shardName).WithField("location", location).Debug("direct blob get")
	data, err := adapter.Get(ctx, shardName)
	if err != nil {
		return nil, err
	}

	if !quiet {
		bar := progressbar.DefaultBytes(int64(len(data)), "downloading")
		pbReader := progressbar.NewReader(bytes.NewReader(data), bar)
		return io.NopCloser(&pbReader), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
