// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared records passed between pipeline stages.
package types

// EntityType categorizes a graph entity.
type EntityType string

const (
	EntityPerson  EntityType = "PERSON"
	EntityGroup   EntityType = "GROUP"
	EntityPlace   EntityType = "PLACE"
	EntityTime    EntityType = "TIME"
	EntityLiteral EntityType = "LITERAL"
)

// ValidEntityTypes is the closed set of admissible entity types.
var ValidEntityTypes = map[EntityType]bool{
	EntityPerson:  true,
	EntityGroup:   true,
	EntityPlace:   true,
	EntityTime:    true,
	EntityLiteral: true,
}

// Valid reports whether the type is one of the admissible entity types.
func (t EntityType) Valid() bool {
	return ValidEntityTypes[t]
}

// EventTier separates narrative pivots (MACRO) from tactical or
// relational actions (MESO). MESO events are lexically ambiguous and
// require stronger contextual corroboration before their participants
// are admitted.
type EventTier string

const (
	TierMacro EventTier = "MACRO"
	TierMeso  EventTier = "MESO"
)

// EdgeType categorizes a graph edge.
type EdgeType string

const (
	// EdgeParticipatedIn connects an entity to an event it took part in.
	EdgeParticipatedIn EdgeType = "PARTICIPATED_IN"

	// EdgeOccurredAt connects an event to the place it happened.
	EdgeOccurredAt EdgeType = "OCCURRED_AT"
)

// Entity is an admitted graph entity. Entities exist only because they
// appeared as a validated argument of at least one admitted event; the
// registry is the sole creation path.
type Entity struct {
	// ID is the deterministic canonical identifier,
	// {type}_{normalized canonical alias}.
	ID string `json:"entity_id" yaml:"entity_id"`

	// CanonicalName is the normalized canonical surface form.
	CanonicalName string `json:"canonical_name" yaml:"canonical_name"`

	// Type is one of PERSON, GROUP, PLACE, TIME, LITERAL.
	Type EntityType `json:"entity_type" yaml:"entity_type"`

	// Aliases lists every surface mention collapsed into this entity,
	// in first-seen order without duplicates.
	Aliases []string `json:"aliases" yaml:"aliases"`

	// EventIDs lists the events this entity participates in, in
	// admission order without duplicates.
	EventIDs []string `json:"event_ids" yaml:"event_ids"`

	// Evidence counts mentions per source chunk.
	Evidence map[string]int `json:"evidence" yaml:"evidence"`
}

// HasAlias reports whether the surface form is already recorded.
func (e *Entity) HasAlias(alias string) bool {
	for _, a := range e.Aliases {
		if a == alias {
			return true
		}
	}
	return false
}

// HasEvent reports whether the event is already recorded.
func (e *Entity) HasEvent(eventID string) bool {
	for _, id := range e.EventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// Event is an admitted event node. Events are created once per
// (sentence, matched type) and never mutated afterwards; an event may
// legitimately have zero participants, preserving narrative evidence
// even when argument extraction fails or is rejected.
type Event struct {
	// ID is "E<Seq>", globally unique.
	ID string `json:"event_id" yaml:"event_id"`

	// Seq is the monotonic assignment number. Assignment order follows
	// source-processing order and stands in for narrative chronology.
	Seq int `json:"seq" yaml:"seq"`

	// Type is the detected event type (KILL, BATTLE, RETREATED, ...).
	Type string `json:"type" yaml:"type"`

	// Tier is MACRO or MESO.
	Tier EventTier `json:"tier" yaml:"tier"`

	// Sentence is the cleaned evidence sentence.
	Sentence string `json:"sentence" yaml:"sentence"`

	// ChunkID, Parva, and Section locate the sentence in the corpus.
	// All three are always non-empty for an admitted event.
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`
	Parva   string `json:"parva" yaml:"parva"`
	Section string `json:"section" yaml:"section"`

	// Participants lists the admitted entity ids for this event.
	Participants []string `json:"participants" yaml:"participants"`
}

// Edge connects an entity to an event (PARTICIPATED_IN) or an event to
// a place (OCCURRED_AT). Edges sharing (source, target, type) are
// merged: weight increments and the evidence set grows.
type Edge struct {
	SourceID string   `json:"source_id" yaml:"source_id"`
	TargetID string   `json:"target_id" yaml:"target_id"`
	Type     EdgeType `json:"edge_type" yaml:"edge_type"`

	// EventID and EventType record the first event that produced the edge.
	EventID   string `json:"event_id" yaml:"event_id"`
	EventType string `json:"event_type" yaml:"event_type"`

	// Weight is the number of distinct merged event mentions.
	Weight int `json:"weight" yaml:"weight"`

	// Evidence holds the supporting chunk ids, sorted without duplicates.
	Evidence []string `json:"evidence" yaml:"evidence"`
}

// Touches reports whether the edge references the given node id.
func (e *Edge) Touches(id string) bool {
	return e.SourceID == id || e.TargetID == id
}
