// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-check a persisted graph for structural problems",
	Long: `Validate reloads the graph documents and runs the structural checks
the build runs: entity type validity, orphan entities, event evidence
completeness, alias collisions, and name length. Errors make the
command fail; warnings are reported but do not.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	g, err := loadGraph(cmd)
	if err != nil {
		return err
	}

	report := g.Validate()

	if jsonOutput {
		if err := writeJSON(os.Stdout, report); err != nil {
			return err
		}
	} else {
		stats := report.Stats
		fmt.Fprintf(os.Stdout, "entities: %d, events: %d, edges: %d\n",
			stats.EntityCount, stats.EventCount, stats.EdgeCount)
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stdout, "error:   %s\n", e)
		}
		for _, w := range report.Warnings {
			fmt.Fprintf(os.Stdout, "warning: %s\n", w)
		}
		fmt.Fprintf(os.Stdout, "%d error(s), %d warning(s)\n", report.ErrorCount, report.WarningCount)
	}

	if !report.Valid {
		return fmt.Errorf("graph validation failed with %d error(s)", report.ErrorCount)
	}
	return nil
}

func init() {
	validateCmd.Flags().String("graph-dir", "", "directory holding the persisted graph documents")
	validateCmd.Flags().String("rules", "", "YAML rules file used at build time")
	validateCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(validateCmd)
}
