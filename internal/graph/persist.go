// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/saga-engine/internal/registry"
	"github.com/pdiddy/saga-engine/pkg/types"
)

const (
	entitiesFile = "entities.json"
	eventsFile   = "events.json"
	edgesFile    = "edges.json"
	statsFile    = "graph_stats.json"
)

// entityDoc is the on-disk shape of one entity. Participation is not
// duplicated here; event ids are reconstructed from the events document
// on load.
type entityDoc struct {
	CanonicalName  string           `json:"canonical_name"`
	EntityType     types.EntityType `json:"entity_type"`
	Aliases        []string         `json:"aliases"`
	EventCount     int              `json:"event_count"`
	EvidenceChunks []string         `json:"evidence_chunks"`
}

type entitiesDoc struct {
	Entities map[string]entityDoc `json:"entities"`
}

type locationDoc struct {
	Chunk   string `json:"chunk"`
	Parva   string `json:"parva"`
	Section string `json:"section"`
}

type eventDoc struct {
	Type         string          `json:"type"`
	Tier         types.EventTier `json:"tier"`
	Sentence     string          `json:"sentence"`
	Location     locationDoc     `json:"location"`
	Participants []string        `json:"participants"`
}

type eventsDoc struct {
	Events map[string]eventDoc `json:"events"`
}

type edgesDoc struct {
	Edges []*types.Edge `json:"edges"`
}

// GraphStats summarizes a persisted graph.
type GraphStats struct {
	EntityCount    int            `json:"entity_count"`
	EventCount     int            `json:"event_count"`
	EdgeCount      int            `json:"edge_count"`
	EntitiesByType map[string]int `json:"entities_by_type"`
	EventsByType   map[string]int `json:"events_by_type"`
	EventsByTier   map[string]int `json:"events_by_tier"`
}

// Stats computes summary statistics for the graph.
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{
		EntityCount:    g.EntityCount(),
		EventCount:     g.EventCount(),
		EdgeCount:      g.EdgeCount(),
		EntitiesByType: make(map[string]int),
		EventsByType:   make(map[string]int),
		EventsByTier:   make(map[string]int),
	}
	for _, e := range g.Registry.List() {
		stats.EntitiesByType[string(e.Type)]++
	}
	for _, ev := range g.Events() {
		stats.EventsByType[ev.Type]++
		stats.EventsByTier[string(ev.Tier)]++
	}
	return stats
}

// Save writes the graph as three JSON documents plus summary stats into
// dir, creating it as needed. Output is deterministic: maps marshal
// with sorted keys and edge order follows insertion order.
func (g *Graph) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating graph directory: %w", err)
	}

	entities := entitiesDoc{Entities: make(map[string]entityDoc)}
	for _, e := range g.Registry.List() {
		chunks := make([]string, 0, len(e.Evidence))
		for chunkID := range e.Evidence {
			chunks = append(chunks, chunkID)
		}
		sort.Strings(chunks)
		entities.Entities[e.ID] = entityDoc{
			CanonicalName:  e.CanonicalName,
			EntityType:     e.Type,
			Aliases:        e.Aliases,
			EventCount:     len(e.EventIDs),
			EvidenceChunks: chunks,
		}
	}

	events := eventsDoc{Events: make(map[string]eventDoc)}
	for _, ev := range g.Events() {
		events.Events[ev.ID] = eventDoc{
			Type:     ev.Type,
			Tier:     ev.Tier,
			Sentence: ev.Sentence,
			Location: locationDoc{
				Chunk:   ev.ChunkID,
				Parva:   ev.Parva,
				Section: ev.Section,
			},
			Participants: ev.Participants,
		}
	}

	files := []struct {
		name string
		doc  any
	}{
		{entitiesFile, entities},
		{eventsFile, events},
		{edgesFile, edgesDoc{Edges: g.edges}},
		{statsFile, g.Stats()},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.doc); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a persisted graph back into memory. Entity participation
// lists are rebuilt from the events document in narrative order, so a
// save/load round trip reproduces the same node and edge counts and
// edge weights.
func Load(dir string, reg *registry.Registry) (*Graph, error) {
	g := New(reg)

	var entities entitiesDoc
	if err := readJSON(filepath.Join(dir, entitiesFile), &entities); err != nil {
		return nil, err
	}
	var events eventsDoc
	if err := readJSON(filepath.Join(dir, eventsFile), &events); err != nil {
		return nil, err
	}
	var edges edgesDoc
	if err := readJSON(filepath.Join(dir, edgesFile), &edges); err != nil {
		return nil, err
	}

	// Restore events in sequence order.
	ids := make([]string, 0, len(events.Events))
	for id := range events.Events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return eventSeq(ids[i]) < eventSeq(ids[j]) })

	participation := make(map[string][]string)
	for _, id := range ids {
		doc := events.Events[id]
		g.restoreEvent(&types.Event{
			ID:           id,
			Seq:          eventSeq(id),
			Type:         doc.Type,
			Tier:         doc.Tier,
			Sentence:     doc.Sentence,
			ChunkID:      doc.Location.Chunk,
			Parva:        doc.Location.Parva,
			Section:      doc.Location.Section,
			Participants: doc.Participants,
		})
		for _, entityID := range doc.Participants {
			participation[entityID] = append(participation[entityID], id)
		}
	}

	entityIDs := make([]string, 0, len(entities.Entities))
	for id := range entities.Entities {
		entityIDs = append(entityIDs, id)
	}
	sort.Strings(entityIDs)
	for _, id := range entityIDs {
		doc := entities.Entities[id]
		evidence := make(map[string]int, len(doc.EvidenceChunks))
		for _, chunkID := range doc.EvidenceChunks {
			evidence[chunkID] = 1
		}
		reg.Restore(&types.Entity{
			ID:            id,
			CanonicalName: doc.CanonicalName,
			Type:          doc.EntityType,
			Aliases:       doc.Aliases,
			EventIDs:      participation[id],
			Evidence:      evidence,
		})
	}

	for _, edge := range edges.Edges {
		g.restoreEdge(edge)
	}
	return g, nil
}

// eventSeq parses the numeric sequence out of an "E<n>" event id.
func eventSeq(eventID string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(eventID, "E"))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, doc any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
