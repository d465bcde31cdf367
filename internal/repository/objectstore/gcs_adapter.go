package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSAdapter stores shards as objects in a single Google Cloud Storage bucket.
type GCSAdapter struct {
	client     *storage.Client
	bucketName string
}

// NewGCSAdapter builds an adapter bound to one GCS bucket.
func NewGCSAdapter(client *storage.Client, bucketName string) *GCSAdapter {
	return &GCSAdapter{client: client, bucketName: bucketName}
}

func (a *GCSAdapter) Location() string {
	return fmt.Sprintf("gs://%s", a.bucketName)
}

func (a *GCSAdapter) Put(ctx context.Context, shardName string, data []byte) error {
	obj := a.client.Bucket(a.bucketName).Object(shardName)
	w := obj.NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs put %s: %w", shardName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs put %s: %w", shardName, err)
	}
	return nil
}

func (a *GCSAdapter) Get(ctx context.Context, shardName string) ([]byte, error) {
	obj := a.client.Bucket(a.bucketName).Object(shardName)
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("gcs get %s: %w", shardName, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs get %s: %w", shardName, err)
	}
	return data, nil
}

func (a *GCSAdapter) Exists(ctx context.Context, shardName string) (bool, error) {
	obj := a.client.Bucket(a.bucketName).Object(shardName)
	_, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("gcs attrs %s: %w", shardName, err)
	}
	return true, nil
}

func (a *GCSAdapter) Delete(ctx context.Context, shardName string) error {
	obj := a.client.Bucket(a.bucketName).Object(shardName)
	err := obj.Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", shardName, err)
	}
	return nil
}
