// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Intent is the question category driving plan construction and
// traversal routing.
type Intent string

const (
	IntentFact     Intent = "FACT"
	IntentCausal   Intent = "CAUSAL"
	IntentTemporal Intent = "TEMPORAL"
	IntentMultiHop Intent = "MULTI_HOP"
)

// TemporalOrder is the narrative-order constraint of a TEMPORAL query.
type TemporalOrder string

const (
	OrderBefore TemporalOrder = "BEFORE"
	OrderAfter  TemporalOrder = "AFTER"
	OrderDuring TemporalOrder = "DURING"
	OrderFirst  TemporalOrder = "FIRST"
	OrderLast   TemporalOrder = "LAST"
)

// Constraints narrow plan execution beyond event-type filtering.
type Constraints struct {
	// AgentRequired demands that matched events carry at least two
	// participants, so an agent can be distinguished from the patient.
	AgentRequired bool `json:"agent_required" yaml:"agent_required"`

	// TemporalOrder is empty when the question imposes no ordering.
	TemporalOrder TemporalOrder `json:"temporal_order,omitempty" yaml:"temporal_order,omitempty"`

	// CausalChain marks why-questions that need multi-hop traversal.
	CausalChain bool `json:"causal_chain" yaml:"causal_chain"`
}

// PlanDebug records how the planner arrived at its decisions.
type PlanDebug struct {
	MatchedRules []string `json:"matched_rules,omitempty" yaml:"matched_rules,omitempty"`
	LexicalHits  []string `json:"lexical_hits,omitempty" yaml:"lexical_hits,omitempty"`
}

// QueryPlan is the structured, deterministic form of a question,
// produced by the planner and consumed by the executor.
type QueryPlan struct {
	Intent           Intent      `json:"intent" yaml:"intent"`
	SeedEntities     []string    `json:"seed_entities" yaml:"seed_entities"`
	TargetEventTypes []string    `json:"target_event_types" yaml:"target_event_types"`
	Constraints      Constraints `json:"constraints" yaml:"constraints"`
	TraversalDepth   int         `json:"traversal_depth" yaml:"traversal_depth"`
	Debug            PlanDebug   `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// EntitySummary is the entity metadata attached to a query result.
type EntitySummary struct {
	EntityID      string     `json:"entity_id" yaml:"entity_id"`
	CanonicalName string     `json:"canonical_name" yaml:"canonical_name"`
	Type          EntityType `json:"entity_type" yaml:"entity_type"`
	EventCount    int        `json:"event_count" yaml:"event_count"`
}

// TraversalInfo summarizes the traversal performed for a query.
type TraversalInfo struct {
	MaxDepth      int `json:"max_depth" yaml:"max_depth"`
	EventsFound   int `json:"events_found" yaml:"events_found"`
	EntitiesFound int `json:"entities_found" yaml:"entities_found"`
}

// QueryResult is the executor's structured answer evidence. Found=false
// with an explanatory trace is a valid outcome, not a failure: the
// engine never invents results.
type QueryResult struct {
	QueryText          string          `json:"query_text" yaml:"query_text"`
	Intent             Intent          `json:"intent" yaml:"intent"`
	Found              bool            `json:"found" yaml:"found"`
	SeedEntities       []string        `json:"seed_entities" yaml:"seed_entities"`
	MatchedEvents      []Event         `json:"matched_events" yaml:"matched_events"`
	MatchedEntities    []EntitySummary `json:"matched_entities" yaml:"matched_entities"`
	ConstraintsApplied []string        `json:"constraints_applied" yaml:"constraints_applied"`
	TraversalInfo      TraversalInfo   `json:"traversal_info" yaml:"traversal_info"`

	// DebugTrace is an ordered, human-readable log of resolution hits,
	// misses, and accept/reject decisions for auditability.
	DebugTrace []string `json:"debug_trace" yaml:"debug_trace"`
}
