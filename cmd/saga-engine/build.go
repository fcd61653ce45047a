// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/saga-engine/internal/pipeline"
	"github.com/pdiddy/saga-engine/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Construct the knowledge graph from the corpus chunks",
	Long: `Build runs the full construction pipeline: event detection over every
chunk, argument extraction with MESO validation, alias resolution,
entity admission, edge assembly, postprocessing, and validation. The
resulting graph documents are written to the graph directory.

When the persisted graph is newer than the chunk file the build is
skipped; use --force to rebuild anyway.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	cfg := pipelineConfig(cmd)

	_, summary, err := pipeline.Build(cfg, force, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nchunks: %d, detected: %d, admitted: %d, entities: %d, edges: %d\n",
		summary.Chunks, summary.EventsDetected, summary.EventsAdmitted, summary.Entities, summary.Edges)

	if summary.Validation.ErrorCount > 0 {
		return fmt.Errorf("graph validation reported %d error(s), see %s",
			summary.Validation.ErrorCount, cfg.GraphDir)
	}
	return nil
}

// pipelineConfig assembles the pipeline settings from flags, falling
// back to config-file and environment values.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	chunksPath, _ := cmd.Flags().GetString("chunks")
	if chunksPath == "" {
		chunksPath = viper.GetString("chunks_path")
	}
	graphDir, _ := cmd.Flags().GetString("graph-dir")
	if graphDir == "" {
		graphDir = viper.GetString("graph_dir")
	}
	rulesPath, _ := cmd.Flags().GetString("rules")
	if rulesPath == "" {
		rulesPath = viper.GetString("rules_path")
	}

	return types.PipelineConfig{
		ChunksPath: chunksPath,
		GraphDir:   graphDir,
		RulesPath:  rulesPath,
		Meso:       types.DefaultMesoConfig(),
		Alias:      types.DefaultAliasConfig(),
	}
}

func init() {
	buildCmd.Flags().String("chunks", "", "JSONL corpus chunk file")
	buildCmd.Flags().String("graph-dir", "", "output directory for graph documents")
	buildCmd.Flags().String("rules", "", "YAML rules file overriding the built-in event patterns")
	buildCmd.Flags().Bool("force", false, "rebuild even when the persisted graph is up to date")

	rootCmd.AddCommand(buildCmd)
}
