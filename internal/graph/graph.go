// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph holds the event-centric knowledge graph: entity and
// event nodes joined by PARTICIPATED_IN and OCCURRED_AT edges. Events
// are the primary nodes; entities attach to the graph only through the
// events they participate in.
package graph

import (
	"fmt"
	"sort"

	"github.com/pdiddy/saga-engine/internal/registry"
	"github.com/pdiddy/saga-engine/pkg/types"
)

type edgeKey struct {
	source string
	target string
	kind   types.EdgeType
}

// Graph is the in-memory knowledge graph under construction or loaded
// from disk. Not safe for concurrent mutation.
type Graph struct {
	Registry *registry.Registry

	events     map[string]*types.Event
	eventOrder []string
	edges      []*types.Edge
	edgeIndex  map[edgeKey]*types.Edge
	bySource   map[string][]*types.Edge
	byTarget   map[string][]*types.Edge

	// nextSeq is the monotonic event sequence counter. Assignment order
	// follows source-processing order and stands in for narrative
	// chronology; it never decreases and removed events leave gaps.
	nextSeq int
}

// New builds an empty graph over the given registry.
func New(reg *registry.Registry) *Graph {
	return &Graph{
		Registry:  reg,
		events:    make(map[string]*types.Event),
		edgeIndex: make(map[edgeKey]*types.Edge),
		bySource:  make(map[string][]*types.Edge),
		byTarget:  make(map[string][]*types.Edge),
		nextSeq:   1,
	}
}

// AddEvent admits an extracted event into the graph. The event node is
// always created, even with zero admitted participants: narrative
// evidence survives argument rejection. Each admitted participant gets
// a PARTICIPATED_IN edge; edges repeating (source, target, type) merge
// by weight.
func (g *Graph) AddEvent(ext types.ExtractedEvent) *types.Event {
	seq := g.nextSeq
	g.nextSeq++

	event := &types.Event{
		ID:       fmt.Sprintf("E%d", seq),
		Seq:      seq,
		Type:     ext.Type,
		Tier:     ext.Tier,
		Sentence: ext.Sentence,
		ChunkID:  ext.ChunkID,
		Parva:    ext.Parva,
		Section:  ext.Section,
	}

	for _, arg := range ext.Arguments {
		entityID := g.Registry.CreateFromArgument(arg, event.ID, ext.ChunkID)
		if entityID == "" {
			continue
		}
		if !containsString(event.Participants, entityID) {
			event.Participants = append(event.Participants, entityID)
		}
		g.MergeEdge(entityID, event.ID, types.EdgeParticipatedIn, event.ID, event.Type, ext.ChunkID)
	}

	g.events[event.ID] = event
	g.eventOrder = append(g.eventOrder, event.ID)
	return g.events[event.ID]
}

// MergeEdge records an edge, merging with any existing edge of the same
// (source, target, type): weight increments and the chunk joins the
// evidence set. The first event to produce the edge keeps naming it.
func (g *Graph) MergeEdge(sourceID, targetID string, edgeType types.EdgeType, eventID, eventType, chunkID string) *types.Edge {
	key := edgeKey{source: sourceID, target: targetID, kind: edgeType}
	if edge, ok := g.edgeIndex[key]; ok {
		edge.Weight++
		edge.Evidence = insertSorted(edge.Evidence, chunkID)
		return edge
	}

	edge := &types.Edge{
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      edgeType,
		EventID:   eventID,
		EventType: eventType,
		Weight:    1,
		Evidence:  []string{chunkID},
	}
	g.edges = append(g.edges, edge)
	g.edgeIndex[key] = edge
	g.bySource[sourceID] = append(g.bySource[sourceID], edge)
	g.byTarget[targetID] = append(g.byTarget[targetID], edge)
	return edge
}

// Event returns the event with the given id, or nil.
func (g *Graph) Event(eventID string) *types.Event {
	return g.events[eventID]
}

// Events returns every event in admission order.
func (g *Graph) Events() []*types.Event {
	out := make([]*types.Event, 0, len(g.eventOrder))
	for _, id := range g.eventOrder {
		out = append(out, g.events[id])
	}
	return out
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []*types.Edge {
	return g.edges
}

// EdgesFrom returns the edges whose source is the given node.
func (g *Graph) EdgesFrom(id string) []*types.Edge {
	return g.bySource[id]
}

// EdgesTo returns the edges whose target is the given node.
func (g *Graph) EdgesTo(id string) []*types.Edge {
	return g.byTarget[id]
}

// EdgesTouching returns every edge referencing the node on either side.
func (g *Graph) EdgesTouching(id string) []*types.Edge {
	out := append([]*types.Edge(nil), g.bySource[id]...)
	for _, e := range g.byTarget[id] {
		if e.SourceID != id {
			out = append(out, e)
		}
	}
	return out
}

// EventCount, EntityCount, and EdgeCount size the graph.
func (g *Graph) EventCount() int  { return len(g.events) }
func (g *Graph) EntityCount() int { return g.Registry.Count() }
func (g *Graph) EdgeCount() int   { return len(g.edges) }

// RemoveEntity drops an entity and cascades: every edge touching it is
// removed and it leaves the participant lists of its events. Event
// nodes themselves stay.
func (g *Graph) RemoveEntity(entityID string) int {
	entity := g.Registry.Get(entityID)
	if entity == nil {
		return 0
	}

	for _, eventID := range entity.EventIDs {
		if event := g.events[eventID]; event != nil {
			event.Participants = removeString(event.Participants, entityID)
		}
	}
	g.Registry.Remove(entityID)

	removed := 0
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Touches(entityID) {
			delete(g.edgeIndex, edgeKey{source: e.SourceID, target: e.TargetID, kind: e.Type})
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	if removed > 0 {
		g.reindex()
	}
	return removed
}

// reindex rebuilds the adjacency maps from the edge list.
func (g *Graph) reindex() {
	g.bySource = make(map[string][]*types.Edge)
	g.byTarget = make(map[string][]*types.Edge)
	for _, e := range g.edges {
		g.bySource[e.SourceID] = append(g.bySource[e.SourceID], e)
		g.byTarget[e.TargetID] = append(g.byTarget[e.TargetID], e)
	}
}

// restoreEvent reinstates a persisted event without re-admitting
// arguments. The sequence counter advances past the restored event.
func (g *Graph) restoreEvent(event *types.Event) {
	g.events[event.ID] = event
	g.eventOrder = append(g.eventOrder, event.ID)
	if event.Seq >= g.nextSeq {
		g.nextSeq = event.Seq + 1
	}
}

// restoreEdge reinstates a persisted edge verbatim.
func (g *Graph) restoreEdge(edge *types.Edge) {
	key := edgeKey{source: edge.SourceID, target: edge.TargetID, kind: edge.Type}
	if _, ok := g.edgeIndex[key]; ok {
		return
	}
	g.edges = append(g.edges, edge)
	g.edgeIndex[key] = edge
	g.bySource[edge.SourceID] = append(g.bySource[edge.SourceID], edge)
	g.byTarget[edge.TargetID] = append(g.byTarget[edge.TargetID], edge)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// insertSorted adds s to a sorted set, keeping it sorted and unique.
func insertSorted(set []string, s string) []string {
	i := sort.SearchStrings(set, s)
	if i < len(set) && set[i] == s {
		return set
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = s
	return set
}
