// Package config loads application configuration from a YAML file, with
// ZSTORE_-prefixed environment-variable overrides and optional bound CLI
// flags, layered through viper.
package config

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds everything the orchestrator and boundary need at startup.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Port     int    `mapstructure:"port"`

	DataShards     int `mapstructure:"data_shards"`
	ParityShards   int `mapstructure:"parity_shards"`
	WorkerPoolSize int `mapstructure:"worker_pool_size"`

	PerCallTimeout time.Duration `mapstructure:"per_call_timeout"`

	BackendLocations []string `mapstructure:"backend_locations"`

	// MetadataDSN is the PostgreSQL connection string. At least one of
	// MetadataDSN or MetadataDSNSSMParam must be set; when MetadataDSN is
	// empty, ResolveSecrets fills it from the SSM parameter.
	MetadataDSN         string `mapstructure:"metadata_dsn"`
	MetadataDSNSSMParam string `mapstructure:"metadata_dsn_ssm_param"`

	// AWSAccessKeyID/AWSSecretAccessKey override the default AWS SDK
	// credential chain with a static pair, for deployments that inject
	// credentials through config rather than the environment or an
	// instance role.
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
}

// LoadConfig reads configPath (if non-empty) as a YAML file, layers
// ZSTORE_-prefixed environment variables on top, applies defaults, and
// validates the result. rootCmd's persistent flags (if any were bound by
// the caller) are consulted before environment variables, completing the
// precedence file < env < flag.
func LoadConfig(configPath string, rootCmd *cobra.Command) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8080)
	v.SetDefault("data_shards", 4)
	v.SetDefault("parity_shards", 2)
	v.SetDefault("worker_pool_size", 6)
	v.SetDefault("per_call_timeout", 30*time.Second)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("ZSTORE")
	v.AutomaticEnv()

	if rootCmd != nil {
		if err := v.BindPFlags(rootCmd.PersistentFlags()); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.BackendLocations) != c.DataShards+c.ParityShards {
		return fmt.Errorf("backend_locations must have exactly %d entries (data_shards + parity_shards), got %d",
			c.DataShards+c.ParityShards, len(c.BackendLocations))
	}
	if c.MetadataDSN == "" && c.MetadataDSNSSMParam == "" {
		return fmt.Errorf("metadata_dsn or metadata_dsn_ssm_param must be set")
	}
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = c.DataShards + c.ParityShards
	}
	return nil
}

// TotalShards returns n = data_shards + parity_shards.
func (c *Config) TotalShards() int {
	return c.DataShards + c.ParityShards
}

// CredentialsProvider returns a static AWS credentials provider when
// AWSAccessKeyID/AWSSecretAccessKey are set in config, or nil when the
// caller should fall back to the default SDK credential chain.
func (c *Config) CredentialsProvider() awssdk.CredentialsProvider {
	if c.AWSAccessKeyID == "" || c.AWSSecretAccessKey == "" {
		return nil
	}
	return credentials.NewStaticCredentialsProvider(c.AWSAccessKeyID, c.AWSSecretAccessKey, "")
}

// ResolveSecrets fills in MetadataDSN from AWS Systems Manager Parameter
// Store when MetadataDSNSSMParam is set and MetadataDSN was left empty.
// Parameters are fetched with decryption, so SecureString values work for
// DSNs holding database passwords.
func (c *Config) ResolveSecrets(ctx context.Context, ssmClient *ssm.Client) error {
	if c.MetadataDSN != "" || c.MetadataDSNSSMParam == "" {
		return nil
	}
	out, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           awssdk.String(c.MetadataDSNSSMParam),
		WithDecryption: awssdk.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("fetch metadata_dsn_ssm_param %s: %w", c.MetadataDSNSSMParam, err)
	}
	c.MetadataDSN = awssdk.ToString(out.Parameter.Value)
	return nil
}
