// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/saga-engine/internal/pipeline"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Manage the full-text chunk store (store, retrieve)",
	Long: `Chunks manages a local SQLite store of corpus chunks with FTS5
indexing. The query command uses the store to attach supporting
passages to graph answers; retrieve queries it directly.`,
}

var chunksStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest the JSONL corpus chunks into the store",
	RunE:  runChunksStore,
}

func runChunksStore(cmd *cobra.Command, args []string) error {
	chunksPath, _ := cmd.Flags().GetString("chunks")
	if chunksPath == "" {
		chunksPath = viper.GetString("chunks_path")
	}

	chunks, err := pipeline.LoadChunks(chunksPath)
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), chunks, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d chunk(s) failed ingestion", summary.Failed)
	}
	return nil
}

var chunksRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Full-text search over the stored chunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChunksRetrieve,
}

func runChunksRetrieve(cmd *cobra.Command, args []string) error {
	queryText := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(context.Background(), queryText, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(os.Stdout, results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, chunk := range results {
		text := chunk.Text
		if len(text) > 120 {
			text = text[:117] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-14s  %-20s  %s\n", i+1, chunk.ChunkID, chunk.Parva, text)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func init() {
	chunksCmd.PersistentFlags().String("store-dir", "", "directory holding the chunk store")

	chunksStoreCmd.Flags().String("chunks", "", "JSONL corpus chunk file")

	chunksRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	chunksRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	chunksCmd.AddCommand(chunksStoreCmd)
	chunksCmd.AddCommand(chunksRetrieveCmd)

	rootCmd.AddCommand(chunksCmd)
}
