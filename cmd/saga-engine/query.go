// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/saga-engine/internal/alias"
	"github.com/pdiddy/saga-engine/internal/chunkstore"
	"github.com/pdiddy/saga-engine/internal/graph"
	"github.com/pdiddy/saga-engine/internal/query"
	"github.com/pdiddy/saga-engine/internal/registry"
	"github.com/pdiddy/saga-engine/internal/rules"
	"github.com/pdiddy/saga-engine/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question against the knowledge graph",
	Long: `Query plans the question (intent, seed entities, target event types,
constraints) and executes the plan against the persisted graph. The
result carries matched events, matched entities, and a full debug trace
of every resolution hit and miss.

With --evidence the top full-text matches from the chunk store are
attached to the result. With --plan-only the plan is printed without
execution.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	planOnly, _ := cmd.Flags().GetBool("plan-only")
	withEvidence, _ := cmd.Flags().GetBool("evidence")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	showTrace, _ := cmd.Flags().GetBool("show-trace")
	budget, _ := cmd.Flags().GetInt("budget")
	topK, _ := cmd.Flags().GetInt("top-k")

	g, err := loadGraph(cmd)
	if err != nil {
		return err
	}

	planner := query.NewPlanner(g.Registry.List())
	plan := planner.Plan(question)

	if planOnly {
		return writeJSON(os.Stdout, plan)
	}

	executor := query.NewExecutor(g, budget)

	var retriever query.ChunkRetriever
	if withEvidence {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		retriever = store
	}

	collector := query.NewEvidenceCollector(executor, retriever, topK)
	evidence, err := collector.Collect(context.Background(), plan, question)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(os.Stdout, evidence)
	}
	return formatQueryOutput(evidence, showTrace)
}

func formatQueryOutput(ev query.Evidence, showTrace bool) error {
	result := ev.Result

	fmt.Fprintf(os.Stdout, "question: %s\n", result.QueryText)
	fmt.Fprintf(os.Stdout, "intent:   %s  depth: %d  found: %t\n",
		result.Intent, result.TraversalInfo.MaxDepth, result.Found)
	if len(result.SeedEntities) > 0 {
		fmt.Fprintf(os.Stdout, "seeds:    %s\n", strings.Join(result.SeedEntities, ", "))
	}
	if len(result.ConstraintsApplied) > 0 {
		fmt.Fprintf(os.Stdout, "constraints: %s\n", strings.Join(result.ConstraintsApplied, ", "))
	}

	if len(result.MatchedEvents) > 0 {
		fmt.Fprintln(os.Stdout, "\nmatched events:")
		for _, event := range result.MatchedEvents {
			sentence := event.Sentence
			if len(sentence) > 100 {
				sentence = sentence[:97] + "..."
			}
			fmt.Fprintf(os.Stdout, "  %-6s  %-12s  %s\n", event.ID, event.Type, sentence)
		}
	}
	if len(result.MatchedEntities) > 0 {
		fmt.Fprintln(os.Stdout, "\nmatched entities:")
		for _, entity := range result.MatchedEntities {
			fmt.Fprintf(os.Stdout, "  %-30s  %-8s  %d event(s)\n",
				entity.CanonicalName, entity.Type, entity.EventCount)
		}
	}
	if !result.Found {
		fmt.Fprintln(os.Stdout, "\nno matching events in the graph")
	}

	if len(ev.Chunks) > 0 {
		fmt.Fprintln(os.Stdout, "\nsupporting passages:")
		for _, chunk := range ev.Chunks {
			text := chunk.Text
			if len(text) > 120 {
				text = text[:117] + "..."
			}
			fmt.Fprintf(os.Stdout, "  [%s] %s\n", chunk.ChunkID, text)
		}
	}

	if showTrace {
		fmt.Fprintln(os.Stdout, "\ntrace:")
		for _, line := range result.DebugTrace {
			fmt.Fprintf(os.Stdout, "  %s\n", line)
		}
	}
	return nil
}

// loadGraph reconstructs the persisted graph using the same rules file
// the build used, so alias resolution is identical on both sides.
func loadGraph(cmd *cobra.Command) (*graph.Graph, error) {
	graphDir, _ := cmd.Flags().GetString("graph-dir")
	if graphDir == "" {
		graphDir = viper.GetString("graph_dir")
	}
	rulesPath, _ := cmd.Flags().GetString("rules")
	if rulesPath == "" {
		rulesPath = viper.GetString("rules_path")
	}

	ruleSet, err := loadRules(rulesPath)
	if err != nil {
		return nil, err
	}

	resolver := alias.NewResolver(ruleSet.AliasSeeds)
	reg := registry.New(resolver)
	return graph.Load(graphDir, reg)
}

func loadRules(rulesPath string) (rules.Rules, error) {
	if rulesPath == "" {
		return rules.Default(), nil
	}
	return rules.Load(rulesPath)
}

func openStore(cmd *cobra.Command) (*chunkstore.Store, error) {
	storeDir, _ := cmd.Flags().GetString("store-dir")
	if storeDir == "" {
		storeDir = viper.GetString("store_dir")
	}
	return chunkstore.NewStore(types.ChunkStoreConfig{StoreDir: storeDir})
}

func writeJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	queryCmd.Flags().String("graph-dir", "", "directory holding the persisted graph documents")
	queryCmd.Flags().String("rules", "", "YAML rules file used at build time")
	queryCmd.Flags().String("store-dir", "", "directory holding the chunk store")
	queryCmd.Flags().Bool("plan-only", false, "print the query plan without executing")
	queryCmd.Flags().Bool("evidence", false, "attach supporting passages from the chunk store")
	queryCmd.Flags().Bool("json", false, "output the full result as JSON")
	queryCmd.Flags().Bool("show-trace", false, "print the execution debug trace")
	queryCmd.Flags().Int("budget", 0, "traversal edge budget (0 = default)")
	queryCmd.Flags().Int("top-k", 0, "supporting passages to attach (0 = default)")

	rootCmd.AddCommand(queryCmd)
}
