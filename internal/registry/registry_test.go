package registry

import (
	"testing"

	"github.com/pdiddy/saga-engine/internal/alias"
	"github.com/pdiddy/saga-engine/pkg/types"
)

func newRegistry() *Registry {
	return New(alias.NewResolver(map[string][]string{
		"arjuna": {"arjuna", "partha", "dhananjaya"},
		"karna":  {"karna", "radheya"},
	}))
}

func TestCreateFromArgumentAdmission(t *testing.T) {
	r := newRegistry()

	id := r.CreateFromArgument(types.Argument{Role: "agent", Text: "Arjuna"}, "E1", "chunk_0001")
	if id != "person_arjuna" {
		t.Fatalf("entity id = %q, want person_arjuna", id)
	}

	entity := r.Get(id)
	if entity == nil {
		t.Fatal("admitted entity not retrievable")
	}
	if entity.CanonicalName != "arjuna" {
		t.Errorf("canonical name = %q, want arjuna", entity.CanonicalName)
	}
	if entity.Type != types.EntityPerson {
		t.Errorf("type = %s, want PERSON", entity.Type)
	}
	if len(entity.EventIDs) != 1 || entity.EventIDs[0] != "E1" {
		t.Errorf("event ids = %v, want [E1]", entity.EventIDs)
	}
	if entity.Evidence["chunk_0001"] != 1 {
		t.Errorf("evidence = %v, want chunk_0001:1", entity.Evidence)
	}
}

func TestCreateFromArgumentMergesEpithets(t *testing.T) {
	r := newRegistry()

	first := r.CreateFromArgument(types.Argument{Text: "Arjuna"}, "E1", "c1")
	second := r.CreateFromArgument(types.Argument{Text: "Partha"}, "E2", "c1")
	if first != second {
		t.Fatalf("epithet created a second entity: %q vs %q", first, second)
	}

	entity := r.Get(first)
	if len(entity.Aliases) != 2 {
		t.Errorf("aliases = %v, want [Arjuna Partha]", entity.Aliases)
	}
	if len(entity.EventIDs) != 2 {
		t.Errorf("event ids = %v, want [E1 E2]", entity.EventIDs)
	}
	if entity.Evidence["c1"] != 2 {
		t.Errorf("evidence count = %d, want 2", entity.Evidence["c1"])
	}

	// Same event twice does not duplicate the participation record.
	r.CreateFromArgument(types.Argument{Text: "Dhananjaya"}, "E2", "c2")
	if len(entity.EventIDs) != 2 {
		t.Errorf("event ids = %v after repeat event, want [E1 E2]", entity.EventIDs)
	}
}

func TestCreateFromArgumentRejectsNoise(t *testing.T) {
	r := newRegistry()

	rejected := []string{
		"he", "thou", "them",
		"1234",
		"the of in",
		"having done battle",
		"m03044.htm",
		"one", "many",
		"x",
		"a span of text that goes on far longer than any real name ever would in the corpus",
	}
	for _, text := range rejected {
		if id := r.CreateFromArgument(types.Argument{Text: text}, "E1", "c1"); id != "" {
			t.Errorf("noise %q was admitted as %q", text, id)
		}
	}
	if r.Count() != 0 {
		t.Errorf("registry count = %d after rejections, want 0", r.Count())
	}
}

func TestInferType(t *testing.T) {
	r := newRegistry()

	tests := []struct {
		text string
		want types.EntityType
	}{
		{"Radheya", types.EntityPerson},
		{"the Pandava host", types.EntityGroup},
		{"Kurukshetra", types.EntityPlace},
		{"that morning", types.EntityTime},
		{"Ghatotkacha", types.EntityPerson},
	}
	for _, tt := range tests {
		if got := r.InferType(tt.text); got != tt.want {
			t.Errorf("InferType(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestAdmitPlace(t *testing.T) {
	r := newRegistry()

	id := r.AdmitPlace("Kurukshetra", "kurukshetra", "E1")
	if id != "place_kurukshetra" {
		t.Fatalf("place id = %q, want place_kurukshetra", id)
	}

	// Re-admission merges the event instead of duplicating.
	again := r.AdmitPlace("Kurukshetra", "kurukshetra", "E2")
	if again != id {
		t.Fatalf("re-admission created %q, want %q", again, id)
	}
	entity := r.Get(id)
	if len(entity.EventIDs) != 2 {
		t.Errorf("event ids = %v, want [E1 E2]", entity.EventIDs)
	}
	if entity.Type != types.EntityPlace {
		t.Errorf("type = %s, want PLACE", entity.Type)
	}
}

func TestRemoveAndReplace(t *testing.T) {
	r := newRegistry()

	id := r.CreateFromArgument(types.Argument{Text: "Arjuna"}, "E1", "c1")
	r.Remove(id)
	if r.Get(id) != nil || r.Count() != 0 {
		t.Error("entity survived removal")
	}

	id = r.CreateFromArgument(types.Argument{Text: "Arjuna"}, "E1", "c1")
	entity := r.Get(id)
	downgraded := *entity
	downgraded.ID = "literal_arjuna"
	downgraded.Type = types.EntityLiteral
	r.Replace(id, &downgraded)

	if r.Get(id) != nil {
		t.Error("old id still resolves after Replace")
	}
	if got := r.Get("literal_arjuna"); got == nil || got.Type != types.EntityLiteral {
		t.Errorf("replacement not registered: %+v", got)
	}
}
