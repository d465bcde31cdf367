package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/zstore/internal/api"
	"github.com/zzenonn/zstore/internal/auth"
	"github.com/zzenonn/zstore/internal/codec"
	"github.com/zzenonn/zstore/internal/config"
	"github.com/zzenonn/zstore/internal/logging"
	"github.com/zzenonn/zstore/internal/placement"
	"github.com/zzenonn/zstore/internal/repository/db"
	"github.com/zzenonn/zstore/internal/repository/migrate"
	"github.com/zzenonn/zstore/internal/repository/objectstore"
	"github.com/zzenonn/zstore/internal/service"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "zstore-server",
	Short: "HTTP server for the erasure-coded object store",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (YAML; no file is read when omitted)")
	rootCmd.PersistentFlags().String("log_level", "", "log level override (trace, debug, info, warn, error)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP boundary and block until shutdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath, rootCmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logging.InitLogger(cfg)

		awsCfg, err := loadAWSConfig(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		if err := cfg.ResolveSecrets(cmd.Context(), ssm.NewFromConfig(awsCfg)); err != nil {
			return fmt.Errorf("resolve secrets: %w", err)
		}

		database, err := db.NewDatabase(cfg.MetadataDSN)
		if err != nil {
			return fmt.Errorf("connect to metadata store: %w", err)
		}
		defer database.Close()

		placer, err := buildPlacer(cmd.Context(), awsCfg, cfg)
		if err != nil {
			return err
		}

		c, err := codec.New(cfg.DataShards, cfg.ParityShards)
		if err != nil {
			return fmt.Errorf("build codec: %w", err)
		}

		orchestrator := service.New(placer, db.NewMetadataStore(database), c, cfg.WorkerPoolSize, cfg.PerCallTimeout)
		resolver := auth.NewStaticResolver(tokensFromEnv())
		handler := api.NewHandler(orchestrator, resolver, 0)

		return run(cmd.Context(), cfg, handler.Routes())
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "migrate-up",
	Short: "Apply all pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath, rootCmd)
		if err != nil {
			return err
		}
		logging.InitLogger(cfg)

		database, err := db.NewDatabase(cfg.MetadataDSN)
		if err != nil {
			return fmt.Errorf("connect to metadata store: %w", err)
		}
		defer database.Close()

		return migrate.Up(cmd.Context(), database.Conn)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "migrate-down",
	Short: "Revert all applied schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath, rootCmd)
		if err != nil {
			return err
		}
		logging.InitLogger(cfg)

		database, err := db.NewDatabase(cfg.MetadataDSN)
		if err != nil {
			return fmt.Errorf("connect to metadata store: %w", err)
		}
		defer database.Close()

		return migrate.Down(cmd.Context(), database.Conn)
	},
}

// loadAWSConfig builds the AWS SDK config, substituting a static
// credentials provider when cfg carries an explicit access key pair.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (awssdk.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if provider := cfg.CredentialsProvider(); provider != nil {
		opts = append(opts, awsconfig.WithCredentialsProvider(provider))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("load AWS SDK config: %w", err)
	}
	return awsCfg, nil
}

// buildPlacer resolves every configured backend location to a live
// adapter and wires it into a FixedTablePlacer at its table index.
func buildPlacer(ctx context.Context, awsCfg awssdk.Config, cfg *config.Config) (*placement.FixedTablePlacer, error) {
	var err error
	var gcsClient *storage.Client
	for _, loc := range cfg.BackendLocations {
		if strings.HasPrefix(loc, "gs://") {
			gcsClient, err = storage.NewClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("init GCS client: %w", err)
			}
			break
		}
	}

	factory := objectstore.NewFactory(awsCfg, gcsClient)
	adapters, err := factory.Build(cfg.BackendLocations)
	if err != nil {
		return nil, fmt.Errorf("build backend adapters: %w", err)
	}
	return placement.NewFixedTablePlacerFromAdapters(adapters), nil
}

// tokensFromEnv builds a minimal bearer-token table from ZSTORE_TOKEN_*
// environment variables, each shaped "<owner_id>:<token>". It is a
// placeholder good enough for single-operator deployments and local
// runs; production deployments plug in their own auth.TokenResolver.
func tokensFromEnv() map[string]int64 {
	tokens := make(map[string]int64)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "ZSTORE_TOKEN_") {
			continue
		}
		ownerStr, token, ok := strings.Cut(value, ":")
		if !ok {
			continue
		}
		ownerID, err := strconv.ParseInt(ownerStr, 10, 64)
		if err != nil {
			log.WithField("var", name).Warn("ZSTORE_TOKEN_* value must be \"<owner_id>:<token>\"")
			continue
		}
		tokens[token] = ownerID
	}
	return tokens
}

// run starts the HTTP server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests before returning.
func run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("zstore server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown timed out")
		return err
	}
	log.Info("zstore server stopped gracefully")
	return nil
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateUpCmd, migrateDownCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
