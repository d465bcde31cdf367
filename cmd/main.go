package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/zstore/internal/codec"
	"github.com/zzenonn/zstore/internal/config"
	"github.com/zzenonn/zstore/internal/logging"
	"github.com/zzenonn/zstore/internal/placement"
	"github.com/zzenonn/zstore/internal/repository/db"
	"github.com/zzenonn/zstore/internal/repository/migrate"
	"github.com/zzenonn/zstore/internal/repository/objectstore"
	"github.com/zzenonn/zstore/internal/service"
)

var (
	cfg              *config.Config
	orchestrator     *service.ShardOrchestrator
	directBlobClient *service.DirectBlobClient
	configPath       string
	ownerID          int64
)

var rootCmd = &cobra.Command{
	Use:   "zstore",
	Short: "CLI for the erasure-coded object store",
	Long:  "A CLI application for uploading, retrieving, listing, and deleting erasure-coded files, plus low-level per-shard debugging.",
}

func init() {
	cobra.OnInitialize(initConfig)
	setupFlags()
}

// setupFlags defines CLI flags
func setupFlags() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (YAML; no file is read when omitted)")
	rootCmd.PersistentFlags().String("log_level", "", "log level override (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Int64Var(&ownerID, "owner-id", 1, "owner id to act as")
}

var migrateUpCmd = &cobra.Command{
	Use:   "migrate-up",
	Short: "Apply all pending schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := db.NewDatabase(cfg.MetadataDSN)
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			return
		}
		defer database.Close()

		if err := migrate.Up(context.Background(), database.Conn); err != nil {
			fmt.Printf("Failed to migrate the database: %v\n", err)
			return
		}
		fmt.Println("Database migrated successfully")
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "migrate-down",
	Short: "Revert all applied schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := db.NewDatabase(cfg.MetadataDSN)
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			return
		}
		defer database.Close()

		if err := migrate.Down(context.Background(), database.Conn); err != nil {
			fmt.Printf("Failed to roll back migrations: %v\n", err)
			return
		}
		fmt.Println("Database migrations rolled back successfully")
	},
}

var debugConfigCmd = &cobra.Command{
	Use:   "debug-config",
	Short: "Show the loaded configuration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Configuration:\n")
		fmt.Printf("  Log Level:        %s\n", cfg.LogLevel)
		fmt.Printf("  Port:             %d\n", cfg.Port)
		fmt.Printf("  Data Shards:      %d\n", cfg.DataShards)
		fmt.Printf("  Parity Shards:    %d\n", cfg.ParityShards)
		fmt.Printf("  Worker Pool Size: %d\n", cfg.WorkerPoolSize)
		fmt.Printf("  Per-Call Timeout: %s\n", cfg.PerCallTimeout)
		fmt.Printf("  Backend Locations:\n")
		for i, loc := range cfg.BackendLocations {
			fmt.Printf("    [%d] %s\n", i, loc)
		}
	},
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(configPath, rootCmd)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logging.InitLogger(cfg)

	ctx := context.Background()
	awsOpts := []func(*awsconfig.LoadOptions) error{}
	if provider := cfg.CredentialsProvider(); provider != nil {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(provider))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		log.Fatalf("Failed to load AWS SDK config: %v", err)
	}

	if err := cfg.ResolveSecrets(ctx, ssm.NewFromConfig(awsCfg)); err != nil {
		log.Fatalf("Failed to resolve secrets: %v", err)
	}

	var gcsClient *storage.Client
	for _, loc := range cfg.BackendLocations {
		if strings.HasPrefix(loc, "gs://") {
			gcsClient, err = storage.NewClient(ctx)
			if err != nil {
				log.Fatalf("Failed to init GCS client: %v", err)
			}
			break
		}
	}

	factory := objectstore.NewFactory(awsCfg, gcsClient)
	adapters, err := factory.Build(cfg.BackendLocations)
	if err != nil {
		log.Fatalf("Failed to build backend adapters: %v", err)
	}
	placer := placement.NewFixedTablePlacerFromAdapters(adapters)

	c, err := codec.New(cfg.DataShards, cfg.ParityShards)
	if err != nil {
		log.Fatalf("Failed to build codec: %v", err)
	}

	database, err := db.NewDatabase(cfg.MetadataDSN)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}

	orchestrator = service.New(placer, db.NewMetadataStore(database), c, cfg.WorkerPoolSize, cfg.PerCallTimeout)
	directBlobClient = service.NewDirectBlobClient(factory)
}

func init() {
	rootCmd.AddCommand(migrateUpCmd)
	rootCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(debugConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
