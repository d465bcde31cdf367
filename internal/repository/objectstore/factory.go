package objectstore

import (
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// RepositoryType identifies which cloud provider a location string names.
type RepositoryType string

const (
	S3Type  RepositoryType = "s3"
	GCSType RepositoryType = "gcs"
)

// LocationConfig is a parsed backend_locations entry.
type LocationConfig struct {
	Type   RepositoryType
	Bucket string
	Region string // S3 only
}

// ParseLocation parses one backend_locations entry, e.g.
// "s3://shardvault-shard-0?region=us-east-1" or "gs://shardvault-shard-2".
func ParseLocation(raw string) (LocationConfig, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return LocationConfig{}, fmt.Errorf("invalid backend location %q: %w", raw, err)
	}

	bucket := strings.TrimPrefix(u.Opaque, "//")
	if bucket == "" {
		bucket = u.Host
	}
	if bucket == "" {
		return LocationConfig{}, fmt.Errorf("backend location %q has no bucket name", raw)
	}

	switch strings.ToLower(u.Scheme) {
	case "s3":
		region := u.Query().Get("region")
		if region == "" {
			return LocationConfig{}, fmt.Errorf("s3 backend location %q requires ?region=", raw)
		}
		return LocationConfig{Type: S3Type, Bucket: bucket, Region: region}, nil
	case "gs":
		return LocationConfig{Type: GCSType, Bucket: bucket}, nil
	default:
		return LocationConfig{}, fmt.Errorf("unsupported backend scheme %q in %q", u.Scheme, raw)
	}
}

// Factory builds one BackendAdapter per parsed location, caching S3
// clients per region so regional adapters share a connection.
type Factory struct {
	awsConfig aws.Config
	gcsClient *storage.Client
	s3Clients map[string]*s3.Client
}

// NewFactory builds a Factory. gcsClient may be nil if no gs:// locations
// are configured.
func NewFactory(awsConfig aws.Config, gcsClient *storage.Client) *Factory {
	return &Factory{
		awsConfig: awsConfig,
		gcsClient: gcsClient,
		s3Clients: make(map[string]*s3.Client),
	}
}

// Build parses every entry in locations and returns one adapter per entry,
// in order — LogicalLocation i is adapters[i].
func (f *Factory) Build(locations []string) ([]BackendAdapter, error) {
	adapters := make([]BackendAdapter, len(locations))
	for i, raw := range locations {
		cfg, err := ParseLocation(raw)
		if err != nil {
			return nil, err
		}
		adapter, err := f.build(cfg)
		if err != nil {
			return nil, fmt.Errorf("backend location %d (%q): %w", i, raw, err)
		}
		adapters[i] = adapter
	}
	return adapters, nil
}

func (f *Factory) build(cfg LocationConfig) (BackendAdapter, error) {
	switch cfg.Type {
	case S3Type:
		client := f.s3ClientForRegion(cfg.Region)
		return NewS3Adapter(client, cfg.Bucket, cfg.Region), nil
	case GCSType:
		if f.gcsClient == nil {
			return nil, fmt.Errorf("gcs backend requested but no GCS client configured")
		}
		return NewGCSAdapter(f.gcsClient, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported repository type: %s", cfg.Type)
	}
}

func (f *Factory) s3ClientForRegion(region string) *s3.Client {
	if client, ok := f.s3Clients[region]; ok {
		return client
	}
	cfg := f.awsConfig.Copy()
	cfg.Region = region
	client := s3.NewFromConfig(cfg)
	f.s3Clients[region] = client
	return client
}
