package query

import (
	"testing"

	"github.com/pdiddy/saga-engine/pkg/types"
)

func testEntities() []*types.Entity {
	return []*types.Entity{
		{ID: "person_karna", CanonicalName: "karna", Type: types.EntityPerson, Aliases: []string{"Karna", "Radheya"}},
		{ID: "person_arjuna", CanonicalName: "arjuna", Type: types.EntityPerson, Aliases: []string{"Arjuna", "Partha"}},
		{ID: "person_bhishma", CanonicalName: "bhishma", Type: types.EntityPerson, Aliases: []string{"Bhishma"}},
		{ID: "person_duryodhana", CanonicalName: "duryodhana", Type: types.EntityPerson, Aliases: []string{"Duryodhana"}},
		{ID: "person_abhimanyu", CanonicalName: "abhimanyu", Type: types.EntityPerson, Aliases: []string{"Abhimanyu"}},
		{ID: "person_drona", CanonicalName: "drona", Type: types.EntityPerson, Aliases: []string{"Drona"}},
		{ID: "group_kauravas", CanonicalName: "kauravas", Type: types.EntityGroup, Aliases: []string{"Kauravas"}},
	}
}

func TestPlanWhoKilled(t *testing.T) {
	p := NewPlanner(testEntities())
	plan := p.Plan("Who killed Karna?")

	if plan.Intent != types.IntentFact {
		t.Errorf("intent = %s, want FACT", plan.Intent)
	}
	if len(plan.SeedEntities) != 1 || plan.SeedEntities[0] != "karna" {
		t.Errorf("seeds = %v, want [karna]", plan.SeedEntities)
	}
	if len(plan.TargetEventTypes) == 0 || plan.TargetEventTypes[0] != "KILL" {
		t.Errorf("targets = %v, want KILL first", plan.TargetEventTypes)
	}
	if !plan.Constraints.AgentRequired {
		t.Error("kill verb did not set agent_required")
	}
	if plan.TraversalDepth != 1 {
		t.Errorf("depth = %d, want 1 for FACT", plan.TraversalDepth)
	}
}

func TestPlanWhyCausal(t *testing.T) {
	p := NewPlanner(testEntities())
	plan := p.Plan("Why did Bhishma support Duryodhana?")

	if plan.Intent != types.IntentCausal {
		t.Errorf("intent = %s, want CAUSAL", plan.Intent)
	}
	if !plan.Constraints.CausalChain {
		t.Error("why question did not set causal_chain")
	}
	if plan.TraversalDepth != 2 {
		t.Errorf("depth = %d, want 2", plan.TraversalDepth)
	}
	if len(plan.SeedEntities) != 2 {
		t.Errorf("seeds = %v, want bhishma and duryodhana", plan.SeedEntities)
	}
	for _, target := range plan.TargetEventTypes {
		if target == "DEATH" {
			t.Error("causal why plan still targets DEATH")
		}
	}
}

func TestPlanTemporalAfter(t *testing.T) {
	p := NewPlanner(testEntities())
	plan := p.Plan("What happened after Abhimanyu's death?")

	if plan.Intent != types.IntentTemporal {
		t.Errorf("intent = %s, want TEMPORAL", plan.Intent)
	}
	if plan.Constraints.TemporalOrder != types.OrderAfter {
		t.Errorf("temporal order = %s, want AFTER", plan.Constraints.TemporalOrder)
	}
	if len(plan.SeedEntities) != 1 || plan.SeedEntities[0] != "abhimanyu" {
		t.Errorf("seeds = %v, want [abhimanyu]", plan.SeedEntities)
	}
}

func TestPlanMultiHop(t *testing.T) {
	p := NewPlanner(testEntities())
	plan := p.Plan("Who benefited from Drona's death?")

	// MULTI_HOP outranks the who-rule.
	if plan.Intent != types.IntentMultiHop {
		t.Errorf("intent = %s, want MULTI_HOP", plan.Intent)
	}
	if len(plan.SeedEntities) != 1 || plan.SeedEntities[0] != "drona" {
		t.Errorf("seeds = %v, want [drona]", plan.SeedEntities)
	}
	if plan.TraversalDepth != 2 {
		t.Errorf("depth = %d, want 2", plan.TraversalDepth)
	}
}

func TestPlanCurseNarrowsTargets(t *testing.T) {
	p := NewPlanner(testEntities())
	plan := p.Plan("Who cursed Karna?")

	if len(plan.TargetEventTypes) != 1 || plan.TargetEventTypes[0] != "CURSE" {
		t.Errorf("targets = %v, want [CURSE]", plan.TargetEventTypes)
	}
}

func TestPlanSeedOrderingDeterministic(t *testing.T) {
	p := NewPlanner(testEntities())
	plan := p.Plan("Did Arjuna fight the Kauravas with Karna?")

	want := []string{"arjuna", "karna", "kauravas"}
	if len(plan.SeedEntities) != len(want) {
		t.Fatalf("seeds = %v, want %v", plan.SeedEntities, want)
	}
	for i, s := range plan.SeedEntities {
		if s != want[i] {
			t.Errorf("seed %d = %s, want %s (persons before groups, then by name)", i, s, want[i])
		}
	}
}

func TestPlanPronounsNeverSeed(t *testing.T) {
	entities := append(testEntities(), &types.Entity{
		ID: "person_he", CanonicalName: "he", Type: types.EntityPerson, Aliases: []string{"he"},
	})
	p := NewPlanner(entities)
	plan := p.Plan("Who did he strike?")

	for _, s := range plan.SeedEntities {
		if s == "he" {
			t.Error("pronoun admitted as seed entity")
		}
	}
}

func TestPlanUnknownQuestionDefaultsToFact(t *testing.T) {
	p := NewPlanner(testEntities())
	plan := p.Plan("Tell me about the battle.")

	if plan.Intent != types.IntentFact {
		t.Errorf("intent = %s, want FACT fallback", plan.Intent)
	}
	if len(plan.SeedEntities) != 0 {
		t.Errorf("seeds = %v, want none", plan.SeedEntities)
	}
}
