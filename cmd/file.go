package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var quiet bool

var uploadCmd = &cobra.Command{
	Use:   "upload [file-path] [name]",
	Short: "Erasure-code and upload a file (destination name optional, defaults to the source filename)",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		filePath := args[0]
		name := filepath.Base(filePath)
		if len(args) == 2 {
			name = args[1]
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			return
		}

		if err := orchestrator.Upload(context.Background(), ownerID, name, data); err != nil {
			fmt.Printf("Error uploading file: %v\n", err)
			return
		}
		fmt.Printf("File uploaded successfully: %s -> %s\n", filePath, name)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [name] [output-path]",
	Short: "Reconstruct and download a stored file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, outputPath := args[0], args[1]

		data, err := orchestrator.Retrieval(context.Background(), ownerID, name)
		if err != nil {
			fmt.Printf("Error downloading file: %v\n", err)
			return
		}

		if stat, err := os.Stat(outputPath); err == nil && stat.IsDir() {
			outputPath = filepath.Join(outputPath, name)
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			fmt.Printf("Error creating output directory: %v\n", err)
			return
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Printf("Error writing file: %v\n", err)
			return
		}
		fmt.Printf("File downloaded successfully: %s -> %s\n", name, outputPath)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		if err := orchestrator.Delete(context.Background(), ownerID, name); err != nil {
			fmt.Printf("Error deleting file: %v\n", err)
			return
		}
		fmt.Printf("File deleted successfully: %s\n", name)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored files and their shard health",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		summaries, err := orchestrator.List(context.Background(), ownerID)
		if err != nil {
			fmt.Printf("Error listing files: %v\n", err)
			return
		}
		if len(summaries) == 0 {
			fmt.Println("No files found")
			return
		}
		for _, s := range summaries {
			fmt.Printf("  %-40s %10d bytes  %d/%d shards retrievable\n",
				s.OriginalFilename, s.OriginalFileSize, s.ShardsRetrievable, s.ShardsTotal)
		}
	},
}

var debugPutCmd = &cobra.Command{
	Use:   "debug-put [file-path] [s3://bucket?region=x | gs://bucket] [shard-name]",
	Short: "Write one raw blob directly to a single backend, bypassing erasure coding",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		filePath, location, shardName := args[0], args[1], args[2]

		file, err := os.Open(filePath)
		if err != nil {
			fmt.Printf("Error opening file: %v\n", err)
			return
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil {
			fmt.Printf("Error reading file info: %v\n", err)
			return
		}

		if err := directBlobClient.PutBlob(context.Background(), location, shardName, file, stat.Size(), quiet); err != nil {
			fmt.Printf("Error putting blob: %v\n", err)
			return
		}
		fmt.Printf("Blob written successfully: %s -> %s/%s\n", filePath, location, shardName)
	},
}

var debugGetCmd = &cobra.Command{
	Use:   "debug-get [s3://bucket?region=x | gs://bucket] [shard-name] [output-path]",
	Short: "Read one raw blob directly from a single backend, bypassing erasure coding",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		location, shardName, outputPath := args[0], args[1], args[2]

		reader, err := directBlobClient.GetBlob(context.Background(), location, shardName, quiet)
		if err != nil {
			fmt.Printf("Error getting blob: %v\n", err)
			return
		}
		defer reader.Close()

		outFile, err := os.Create(outputPath)
		if err != nil {
			fmt.Printf("Error creating output file: %v\n", err)
			return
		}
		defer outFile.Close()

		if _, err := io.Copy(outFile, reader); err != nil {
			fmt.Printf("Error writing file: %v\n", err)
			return
		}
		fmt.Printf("Blob read successfully: %s/%s -> %s\n", location, shardName, outputPath)
	},
}

func init() {
	debugPutCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress bars")
	debugGetCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress bars")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(debugPutCmd)
	rootCmd.AddCommand(debugGetCmd)
}
