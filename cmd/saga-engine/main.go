// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the saga-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the saga-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "saga-engine",
	Short: "Event-centric knowledge graph construction and query over a narrative corpus",
	Long: `saga-engine builds an event-centric knowledge graph from a chunked
narrative corpus and answers questions against it with deterministic,
rule-based traversal. No model calls happen anywhere in the pipeline:
the same corpus always produces the same graph, and the same question
always produces the same answer evidence.

Each stage is a subcommand: build constructs and validates the graph,
chunks manages the full-text chunk store, query plans and executes
questions, and validate re-checks a persisted graph.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./saga-engine.yaml or ~/.config/saga-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("saga-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "saga-engine"))
		}
	}

	viper.SetEnvPrefix("SAGA_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("chunks_path", "corpus/chunks.jsonl")
	viper.SetDefault("graph_dir", "graph")
	viper.SetDefault("store_dir", "corpus/index")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
