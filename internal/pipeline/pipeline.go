// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives event-centric graph construction end to end:
// load chunks, detect events, extract arguments, admit entities, refine,
// validate, persist.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/saga-engine/internal/alias"
	"github.com/pdiddy/saga-engine/internal/detect"
	"github.com/pdiddy/saga-engine/internal/extract"
	"github.com/pdiddy/saga-engine/internal/graph"
	"github.com/pdiddy/saga-engine/internal/registry"
	"github.com/pdiddy/saga-engine/internal/rules"
	"github.com/pdiddy/saga-engine/pkg/types"
)

const validationReportFile = "validation_report.json"

// BuildSummary holds counts from one pipeline run.
type BuildSummary struct {
	Chunks         int
	EventsDetected int
	EventsAdmitted int
	Entities       int
	Edges          int

	Postprocess graph.PostprocessStats
	Validation  graph.ValidationReport
}

// Build runs the full construction pipeline and persists the graph to
// cfg.GraphDir. A missing chunks file is fatal: building a graph from
// nothing silently would hide an upstream failure. When force is false
// and the persisted graph is newer than the chunks file, the build is
// skipped.
func Build(cfg types.PipelineConfig, force bool, w io.Writer) (*graph.Graph, BuildSummary, error) {
	var summary BuildSummary

	if !force && upToDate(cfg.ChunksPath, cfg.GraphDir) {
		fmt.Fprintf(w, "graph in %s is current, skipping build (use --force to rebuild)\n", cfg.GraphDir)
		reg := registry.New(alias.NewResolver(rules.Default().AliasSeeds))
		g, err := graph.Load(cfg.GraphDir, reg)
		if err != nil {
			return nil, summary, err
		}
		return g, summary, nil
	}

	ruleSet := rules.Default()
	if cfg.RulesPath != "" {
		var err error
		ruleSet, err = rules.Load(cfg.RulesPath)
		if err != nil {
			return nil, summary, err
		}
	}

	detector, err := detect.New(ruleSet)
	if err != nil {
		return nil, summary, err
	}
	recognizer := extract.NewLexiconRecognizer(ruleSet.AliasSeeds)
	extractor, err := extract.NewExtractor(ruleSet, recognizer, cfg.Meso)
	if err != nil {
		return nil, summary, err
	}
	resolver := alias.NewResolver(ruleSet.AliasSeeds)

	chunks, err := LoadChunks(cfg.ChunksPath)
	if err != nil {
		return nil, summary, err
	}
	summary.Chunks = len(chunks)
	fmt.Fprintf(w, "loaded %d chunks from %s\n", len(chunks), cfg.ChunksPath)

	var detected []types.DetectedEvent
	for _, chunk := range chunks {
		detected = append(detected, detector.Detect(chunk)...)
	}
	summary.EventsDetected = len(detected)
	fmt.Fprintf(w, "detected %d events\n", len(detected))

	extracted := extractor.Batch(detected)

	// Cluster the surface forms the seed lexicon does not cover, so
	// spelling variants collapse before admission.
	learnAliases(resolver, extracted, chunks, cfg.Alias)

	reg := registry.New(resolver)
	g := graph.New(reg)
	for _, ev := range extracted {
		g.AddEvent(ev)
	}
	summary.EventsAdmitted = g.EventCount()
	fmt.Fprintf(w, "admitted %d events, %d entities, %d edges\n",
		g.EventCount(), g.EntityCount(), g.EdgeCount())

	summary.Postprocess = g.Postprocess()
	fmt.Fprintf(w, "postprocess: %d downgraded, %d places recovered, %d entities pruned, %d edges removed\n",
		summary.Postprocess.Downgraded, summary.Postprocess.PlacesRecovered,
		summary.Postprocess.EntitiesRemoved, summary.Postprocess.EdgesRemoved)

	summary.Validation = g.Validate()
	if summary.Validation.Valid {
		fmt.Fprintf(w, "validation passed (%d warnings)\n", summary.Validation.WarningCount)
	} else {
		fmt.Fprintf(w, "validation found %d errors\n", summary.Validation.ErrorCount)
	}

	if err := g.Save(cfg.GraphDir); err != nil {
		return nil, summary, err
	}
	if err := writeReport(filepath.Join(cfg.GraphDir, validationReportFile), summary.Validation); err != nil {
		return nil, summary, err
	}

	summary.Entities = g.EntityCount()
	summary.Edges = g.EdgeCount()
	fmt.Fprintf(w, "saved graph to %s\n", cfg.GraphDir)
	return g, summary, nil
}

// LoadChunks reads the structured corpus chunks, one JSON object per
// line. Blank lines are skipped; a malformed line is an error, not a
// skip, because silent data loss here corrupts every downstream count.
func LoadChunks(path string) ([]types.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chunks file %s: %w", path, err)
	}
	defer f.Close()

	var chunks []types.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var chunk types.Chunk
		if err := json.Unmarshal(raw, &chunk); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, line, err)
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chunks file %s: %w", path, err)
	}
	return chunks, nil
}

// learnAliases clusters argument surface forms and teaches the resolver
// the resulting canonical mapping. Seed entries always win; only forms
// outside the seed lexicon are clustered.
func learnAliases(resolver *alias.Resolver, extracted []types.ExtractedEvent, chunks []types.Chunk, cfg types.AliasConfig) {
	inferrer := registry.New(resolver)

	var mentions []alias.Mention
	for _, ev := range extracted {
		for _, arg := range ev.Arguments {
			if resolver.Known(arg.Text) {
				continue
			}
			mentions = append(mentions, alias.Mention{
				Text:    arg.Text,
				Type:    inferrer.InferType(arg.Text),
				ChunkID: ev.ChunkID,
			})
		}
	}
	if len(mentions) == 0 {
		return
	}

	canonical := alias.NewClusterer(cfg).Resolve(mentions, chunks)
	for norm, surface := range canonical {
		resolver.Learn(norm, alias.Normalize(surface))
	}
}

// upToDate reports whether the persisted graph is newer than the
// chunks file.
func upToDate(chunksPath, graphDir string) bool {
	chunksInfo, err := os.Stat(chunksPath)
	if err != nil {
		return false
	}
	graphInfo, err := os.Stat(filepath.Join(graphDir, "entities.json"))
	if err != nil {
		return false
	}
	return graphInfo.ModTime().After(chunksInfo.ModTime())
}

func writeReport(path string, report graph.ValidationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling validation report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
