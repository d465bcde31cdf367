package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, "backend_locations:\n  - s3://a?region=us-east-1\n  - s3://b?region=us-east-1\n  - s3://c?region=us-east-1\n  - s3://d?region=us-east-1\n  - s3://e?region=us-east-1\n  - s3://f?region=us-east-1\nmetadata_dsn: postgres://localhost/zstore\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.DataShards)
	assert.Equal(t, 2, cfg.ParityShards)
	assert.Equal(t, 6, cfg.WorkerPoolSize)
	assert.Equal(t, 30*time.Second, cfg.PerCallTimeout)
	assert.Equal(t, 6, cfg.TotalShards())
}

func TestLoadConfig_MismatchedBackendCount(t *testing.T) {
	path := writeConfigFile(t, "backend_locations:\n  - s3://a\nmetadata_dsn: postgres://localhost/zstore\n")

	_, err := LoadConfig(path, nil)
	assert.ErrorContains(t, err, "backend_locations must have exactly")
}

func TestLoadConfig_MissingMetadataDSN(t *testing.T) {
	path := writeConfigFile(t, "backend_locations:\n  - s3://a\n  - s3://b\n  - s3://c\n  - s3://d\n  - s3://e\n  - s3://f\n")

	_, err := LoadConfig(path, nil)
	assert.ErrorContains(t, err, "metadata_dsn")
}

func TestLoadConfig_SSMParamSatisfiesMetadataDSN(t *testing.T) {
	path := writeConfigFile(t, "backend_locations:\n  - s3://a\n  - s3://b\n  - s3://c\n  - s3://d\n  - s3://e\n  - s3://f\nmetadata_dsn_ssm_param: /zstore/prod/dsn\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.MetadataDSN)
	assert.Equal(t, "/zstore/prod/dsn", cfg.MetadataDSNSSMParam)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, "backend_locations:\n  - s3://a\n  - s3://b\n  - s3://c\n  - s3://d\n  - s3://e\n  - s3://f\nmetadata_dsn: postgres://localhost/zstore\n")
	t.Setenv("ZSTORE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_FlagOverride(t *testing.T) {
	path := writeConfigFile(t, "backend_locations:\n  - s3://a\n  - s3://b\n  - s3://c\n  - s3://d\n  - s3://e\n  - s3://f\nmetadata_dsn: postgres://localhost/zstore\n")

	root := &cobra.Command{Use: "test"}
	root.PersistentFlags().String("log_level", "", "")
	require.NoError(t, root.PersistentFlags().Set("log_level", "warn"))

	cfg, err := LoadConfig(path, root)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestCredentialsProvider_Unset(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.CredentialsProvider())
}

func TestCredentialsProvider_Set(t *testing.T) {
	cfg := &Config{AWSAccessKeyID: "id", AWSSecretAccessKey: "secret"}
	provider := cfg.CredentialsProvider()
	require.NotNil(t, provider)

	creds, err := provider.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

func TestResolveSecrets_NoopWhenDSNAlreadySet(t *testing.T) {
	cfg := &Config{MetadataDSN: "postgres://already-set"}
	require.NoError(t, cfg.ResolveSecrets(context.Background(), nil))
	assert.Equal(t, "postgres://already-set", cfg.MetadataDSN)
}

func TestResolveSecrets_NoopWhenNoParamConfigured(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ResolveSecrets(context.Background(), nil))
	assert.Empty(t, cfg.MetadataDSN)
}
