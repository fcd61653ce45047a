package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/saga-engine/internal/alias"
	"github.com/pdiddy/saga-engine/internal/registry"
	"github.com/pdiddy/saga-engine/pkg/types"
)

func TestSaveWritesAllDocuments(t *testing.T) {
	g := newTestGraph()
	g.AddEvent(extractedEvent("KILL", "Arjuna slew Karna.",
		types.Argument{Role: "agent", Text: "Arjuna"},
		types.Argument{Role: "patient", Text: "Karna"},
	))

	dir := t.TempDir()
	if err := g.Save(dir); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"entities.json", "events.json", "edges.json", "graph_stats.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := newTestGraph()
	g.AddEvent(extractedEvent("KILL", "Arjuna slew Karna.",
		types.Argument{Role: "agent", Text: "Arjuna"},
		types.Argument{Role: "patient", Text: "Karna"},
	))
	g.AddEvent(extractedEvent("VOW", "Arjuna vowed vengeance.",
		types.Argument{Role: "agent", Text: "Partha"},
	))
	// Merged edge with weight above one must survive the round trip.
	g.AddEvent(extractedEvent("DEATH", "Karna perished, Radheya fell.",
		types.Argument{Role: "agent", Text: "Karna"},
		types.Argument{Role: "agent", Text: "Radheya"},
	))

	dir := t.TempDir()
	if err := g.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir, registry.New(alias.NewResolver(nil)))
	if err != nil {
		t.Fatal(err)
	}

	if loaded.EntityCount() != g.EntityCount() {
		t.Errorf("entity count = %d, want %d", loaded.EntityCount(), g.EntityCount())
	}
	if loaded.EventCount() != g.EventCount() {
		t.Errorf("event count = %d, want %d", loaded.EventCount(), g.EventCount())
	}
	if loaded.EdgeCount() != g.EdgeCount() {
		t.Errorf("edge count = %d, want %d", loaded.EdgeCount(), g.EdgeCount())
	}

	// Events come back in sequence order with their evidence intact.
	events := loaded.Events()
	for i, ev := range events {
		if ev.Seq != i+1 {
			t.Errorf("event %d has seq %d, want %d", i, ev.Seq, i+1)
		}
	}
	e1 := loaded.Event("E1")
	if e1 == nil || e1.Type != "KILL" || e1.Parva != "Karna Parva" {
		t.Fatalf("E1 not restored: %+v", e1)
	}
	if len(e1.Participants) != 2 {
		t.Errorf("E1 participants = %v, want 2", e1.Participants)
	}

	// Participation lists are rebuilt from the events document.
	arjuna := loaded.Registry.Get("person_arjuna")
	if arjuna == nil {
		t.Fatal("person_arjuna not restored")
	}
	if len(arjuna.EventIDs) != 2 {
		t.Errorf("arjuna events = %v, want [E1 E2]", arjuna.EventIDs)
	}

	// The weight-2 merged edge keeps its weight.
	var merged *types.Edge
	for _, edge := range loaded.EdgesFrom("person_karna") {
		if edge.TargetID == "E3" {
			merged = edge
		}
	}
	if merged == nil || merged.Weight != 2 {
		t.Errorf("merged edge not restored: %+v", merged)
	}

	// New events added after a load continue the sequence.
	next := loaded.AddEvent(extractedEvent("BATTLE", "The hosts clashed."))
	if next.Seq != 4 || next.ID != "E4" {
		t.Errorf("post-load event = %s seq %d, want E4 seq 4", next.ID, next.Seq)
	}
}
