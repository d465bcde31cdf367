package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Adapter stores shards as objects in a single S3 bucket.
type S3Adapter struct {
	client     *s3.Client
	bucketName string
	region     string
}

// NewS3Adapter builds an adapter bound to one bucket in one region.
func NewS3Adapter(client *s3.Client, bucketName, region string) *S3Adapter {
	return &S3Adapter{client: client, bucketName: bucketName, region: region}
}

func (a *S3Adapter) Location() string {
	return fmt.Sprintf("s3://%s?region=%s", a.bucketName, a.region)
}

func (a *S3Adapter) Put(ctx context.Context, shardName string, data []byte) error {
	uploader := manager.NewUploader(a.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(shardName),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", shardName, err)
	}
	return nil
}

func (a *S3Adapter) Get(ctx context.Context, shardName string) ([]byte, error) {
	downloader := manager.NewDownloader(a.client)
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(shardName),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrBlobNotFound
		}
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", shardName, err)
	}
	return buf.Bytes(), nil
}

func (a *S3Adapter) Exists(ctx context.Context, shardName string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(shardName),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s: %w", shardName, err)
	}
	return true, nil
}

func (a *S3Adapter) Delete(ctx context.Context, shardName string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(shardName),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", shardName, err)
	}
	return nil
}
