package graph

import (
	"testing"

	"github.com/pdiddy/saga-engine/internal/alias"
	"github.com/pdiddy/saga-engine/internal/registry"
	"github.com/pdiddy/saga-engine/pkg/types"
)

func newTestGraph() *Graph {
	resolver := alias.NewResolver(map[string][]string{
		"arjuna": {"arjuna", "partha", "dhananjaya"},
		"karna":  {"karna", "radheya"},
	})
	return New(registry.New(resolver))
}

func extractedEvent(eventType, sentence string, args ...types.Argument) types.ExtractedEvent {
	return types.ExtractedEvent{
		DetectedEvent: types.DetectedEvent{
			Type:     eventType,
			Tier:     types.TierMacro,
			Sentence: sentence,
			ChunkID:  "chunk_0001",
			Parva:    "Karna Parva",
			Section:  "Section 91",
		},
		Arguments: args,
	}
}

func TestAddEventCreatesNodeAndEdges(t *testing.T) {
	g := newTestGraph()

	event := g.AddEvent(extractedEvent("KILL", "Arjuna slew Karna.",
		types.Argument{Role: "agent", Text: "Arjuna"},
		types.Argument{Role: "patient", Text: "Karna"},
	))

	if event.ID != "E1" || event.Seq != 1 {
		t.Errorf("event id/seq = %s/%d, want E1/1", event.ID, event.Seq)
	}
	if len(event.Participants) != 2 {
		t.Fatalf("participants = %v, want 2", event.Participants)
	}
	if g.EntityCount() != 2 || g.EdgeCount() != 2 {
		t.Errorf("entities=%d edges=%d, want 2/2", g.EntityCount(), g.EdgeCount())
	}

	edges := g.EdgesFrom("person_arjuna")
	if len(edges) != 1 {
		t.Fatalf("edges from person_arjuna = %d, want 1", len(edges))
	}
	edge := edges[0]
	if edge.Type != types.EdgeParticipatedIn || edge.TargetID != "E1" || edge.Weight != 1 {
		t.Errorf("unexpected edge: %+v", edge)
	}
	if len(edge.Evidence) != 1 || edge.Evidence[0] != "chunk_0001" {
		t.Errorf("edge evidence = %v, want [chunk_0001]", edge.Evidence)
	}
}

func TestAddEventAlwaysAdmitsEventNode(t *testing.T) {
	g := newTestGraph()

	// Zero admitted participants still produces an event node.
	event := g.AddEvent(extractedEvent("BATTLE", "A great battle raged."))
	if event == nil || g.EventCount() != 1 {
		t.Fatal("zero-participant event was not admitted")
	}
	if len(event.Participants) != 0 {
		t.Errorf("participants = %v, want none", event.Participants)
	}

	// Noise arguments are rejected without dropping the event.
	event = g.AddEvent(extractedEvent("KILL", "He slew them.",
		types.Argument{Role: "agent", Text: "he"},
		types.Argument{Role: "patient", Text: "them"},
	))
	if g.EventCount() != 2 {
		t.Fatal("event with rejected arguments was dropped")
	}
	if len(event.Participants) != 0 {
		t.Errorf("noise arguments admitted: %v", event.Participants)
	}
}

func TestEdgeMergeOnRepeatedMention(t *testing.T) {
	g := newTestGraph()

	// Two epithets of the same entity in one event merge into one
	// participant and one edge of weight two.
	event := g.AddEvent(extractedEvent("VOW", "Arjuna, that is Partha, vowed.",
		types.Argument{Role: "agent", Text: "Arjuna"},
		types.Argument{Role: "agent", Text: "Partha"},
	))

	if len(event.Participants) != 1 {
		t.Fatalf("participants = %v, want just person_arjuna", event.Participants)
	}
	edges := g.EdgesFrom("person_arjuna")
	if len(edges) != 1 {
		t.Fatalf("edge count = %d, want 1 merged edge", len(edges))
	}
	if edges[0].Weight != 2 {
		t.Errorf("merged edge weight = %d, want 2", edges[0].Weight)
	}
}

func TestMergeEdgeEvidenceSortedUnique(t *testing.T) {
	g := newTestGraph()

	g.MergeEdge("a", "b", types.EdgeParticipatedIn, "E1", "KILL", "c2")
	g.MergeEdge("a", "b", types.EdgeParticipatedIn, "E1", "KILL", "c1")
	edge := g.MergeEdge("a", "b", types.EdgeParticipatedIn, "E1", "KILL", "c2")

	if edge.Weight != 3 {
		t.Errorf("weight = %d, want 3", edge.Weight)
	}
	if len(edge.Evidence) != 2 || edge.Evidence[0] != "c1" || edge.Evidence[1] != "c2" {
		t.Errorf("evidence = %v, want [c1 c2]", edge.Evidence)
	}
}

func TestRemoveEntityCascades(t *testing.T) {
	g := newTestGraph()

	event := g.AddEvent(extractedEvent("KILL", "Arjuna slew Karna.",
		types.Argument{Role: "agent", Text: "Arjuna"},
		types.Argument{Role: "patient", Text: "Karna"},
	))

	removed := g.RemoveEntity("person_karna")
	if removed != 1 {
		t.Errorf("removed %d edges, want 1", removed)
	}
	if g.Registry.Get("person_karna") != nil {
		t.Error("entity survived removal")
	}
	if len(event.Participants) != 1 || event.Participants[0] != "person_arjuna" {
		t.Errorf("participants = %v, want [person_arjuna]", event.Participants)
	}
	if g.EventCount() != 1 {
		t.Error("event node removed with its participant")
	}
	if len(g.EdgesFrom("person_karna")) != 0 {
		t.Error("adjacency still lists removed entity")
	}
}

func TestValidateCleanGraph(t *testing.T) {
	g := newTestGraph()
	g.AddEvent(extractedEvent("KILL", "Arjuna slew Karna.",
		types.Argument{Role: "agent", Text: "Arjuna"},
		types.Argument{Role: "patient", Text: "Karna"},
	))

	report := g.Validate()
	if !report.Valid || report.ErrorCount != 0 {
		t.Errorf("clean graph invalid: %+v", report.Errors)
	}
	if report.Stats.EntityCount != 2 || report.Stats.EventCount != 1 || report.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", report.Stats)
	}
}

func TestValidateFindsOrphansAndMissingEvidence(t *testing.T) {
	g := newTestGraph()

	g.Registry.Restore(&types.Entity{
		ID:            "person_ghatotkacha",
		CanonicalName: "ghatotkacha",
		Type:          types.EntityPerson,
		Aliases:       []string{"Ghatotkacha"},
		Evidence:      map[string]int{},
	})
	g.restoreEvent(&types.Event{
		ID: "E1", Seq: 1, Type: "KILL", Tier: types.TierMacro,
		Sentence: "Karna slew Ghatotkacha.",
		ChunkID:  "c1", Parva: "", Section: "Section 154",
	})

	report := g.Validate()
	if report.Valid {
		t.Fatal("graph with orphan and missing parva reported valid")
	}
	if report.ErrorCount != 2 {
		t.Errorf("error count = %d, want 2: %v", report.ErrorCount, report.Errors)
	}
}

func TestValidateWarnsOnAliasCollision(t *testing.T) {
	g := newTestGraph()

	g.Registry.Restore(&types.Entity{
		ID: "person_vrisha", CanonicalName: "vrisha", Type: types.EntityPerson,
		Aliases: []string{"Vrisha"}, EventIDs: []string{"E1"}, Evidence: map[string]int{},
	})
	g.Registry.Restore(&types.Entity{
		ID: "group_vrisha", CanonicalName: "vrisha host", Type: types.EntityGroup,
		Aliases: []string{"Vrisha"}, EventIDs: []string{"E1"}, Evidence: map[string]int{},
	})
	g.restoreEvent(&types.Event{
		ID: "E1", Seq: 1, Type: "BATTLE", Tier: types.TierMacro,
		Sentence: "s", ChunkID: "c1", Parva: "p", Section: "s1",
	})

	report := g.Validate()
	if report.WarningCount == 0 {
		t.Error("shared alias produced no warning")
	}
	if !report.Valid {
		t.Errorf("warnings alone failed validation: %v", report.Errors)
	}
}
