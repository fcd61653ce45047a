// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry is the sole creation path for graph entities.
// Admission control: an entity exists only because it appeared as a
// validated argument of an admitted event. There is no mention-based or
// abstract entity creation.
package registry

import (
	"sort"
	"strings"

	"github.com/pdiddy/saga-engine/internal/alias"
	"github.com/pdiddy/saga-engine/pkg/types"
)

// maxArgumentLen rejects spans too long to be a name; they are almost
// always descriptions swallowed by a greedy template.
const maxArgumentLen = 50

// typeHints drives keyword-based type inference. Checked in a fixed
// order so inference is deterministic.
var typeHints = []struct {
	entityType types.EntityType
	keywords   []string
}{
	{types.EntityPerson, []string{
		"krishna", "arjuna", "bhima", "drona", "karna",
		"yudhishthira", "duryodhana", "bhishma", "draupadi",
	}},
	{types.EntityGroup, []string{
		"pandava", "kaurava", "warrior", "army", "clan", "tribe",
		"race", "kingdom",
	}},
	{types.EntityPlace, []string{
		"kurukshetra", "india", "hastinapura", "indraprastha",
		"forest", "city", "kingdom", "palace", "land",
	}},
	{types.EntityTime, []string{
		"morning", "evening", "night", "day", "year", "age",
	}},
}

// noiseWords are rejected outright as entity text.
var noiseWords = map[string]bool{
	"one": true, "two": true, "three": true, "many": true, "some": true,
	"other": true, "all": true,
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "with": true, "to": true, "in": true, "on": true,
	"at": true, "from": true, "for": true, "by": true, "of": true,
	"as": true,
}

var registryPronouns = map[string]bool{
	"he": true, "she": true, "it": true, "they": true, "them": true,
	"his": true, "her": true, "its": true, "their": true,
	"thou": true, "thee": true, "thy": true, "him": true, "whom": true,
	"whose": true, "hers": true,
	"i": true, "me": true, "my": true, "we": true, "us": true,
	"our": true, "you": true, "your": true,
}

var gerundPrefixes = []string{"having ", "being ", "doing ", "making "}

var glueWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"from": true, "for": true, "of": true, "with": true, "by": true,
}

// Registry holds every admitted entity, keyed by canonical id.
type Registry struct {
	resolver *alias.Resolver
	entities map[string]*types.Entity
	order    []string
}

// New builds a Registry over the given seed resolver.
func New(resolver *alias.Resolver) *Registry {
	return &Registry{
		resolver: resolver,
		entities: make(map[string]*types.Entity),
	}
}

// CreateFromArgument admits an entity from a validated event argument.
// Returns the entity id, or "" when the argument is rejected as noise.
// Repeat admissions of the same canonical id merge: the surface form
// joins the alias set, the event joins the participation list, and the
// chunk evidence count grows.
func (r *Registry) CreateFromArgument(arg types.Argument, eventID, chunkID string) string {
	if len(arg.Text) < 2 || r.reject(arg.Text) {
		return ""
	}

	entityType := r.InferType(arg.Text)
	entityID := r.resolver.CanonicalID(arg.Text, entityType)

	if entity, ok := r.entities[entityID]; ok {
		if !entity.HasAlias(arg.Text) {
			entity.Aliases = append(entity.Aliases, arg.Text)
		}
		if !entity.HasEvent(eventID) {
			entity.EventIDs = append(entity.EventIDs, eventID)
		}
		entity.Evidence[chunkID]++
		return entityID
	}

	entity := &types.Entity{
		ID:            entityID,
		CanonicalName: r.resolver.Resolve(arg.Text),
		Type:          entityType,
		Aliases:       []string{arg.Text},
		EventIDs:      []string{eventID},
		Evidence:      map[string]int{chunkID: 1},
	}
	r.entities[entityID] = entity
	r.order = append(r.order, entityID)
	return entityID
}

// InferType guesses the entity type of a surface form: seed lexicon
// names are persons, then keyword hints, then PERSON as the corpus
// default.
func (r *Registry) InferType(text string) types.EntityType {
	if r.resolver.Known(text) {
		return types.EntityPerson
	}

	norm := alias.Normalize(text)
	for _, hint := range typeHints {
		for _, keyword := range hint.keywords {
			if strings.Contains(norm, keyword) {
				return hint.entityType
			}
		}
	}
	return types.EntityPerson
}

// AdmitPlace admits a PLACE entity recovered from event context, or
// merges the event into an existing one. This is the only admission
// path besides event arguments; callers are responsible for whitelist
// gating.
func (r *Registry) AdmitPlace(surface, canonical, eventID string) string {
	entityID := "place_" + strings.ReplaceAll(canonical, " ", "_")

	if entity, ok := r.entities[entityID]; ok {
		if !entity.HasAlias(surface) {
			entity.Aliases = append(entity.Aliases, surface)
		}
		if !entity.HasEvent(eventID) {
			entity.EventIDs = append(entity.EventIDs, eventID)
		}
		return entityID
	}

	entity := &types.Entity{
		ID:            entityID,
		CanonicalName: canonical,
		Type:          types.EntityPlace,
		Aliases:       []string{surface},
		EventIDs:      []string{eventID},
		Evidence:      map[string]int{},
	}
	r.entities[entityID] = entity
	r.order = append(r.order, entityID)
	return entityID
}

// Restore reinstates a persisted entity verbatim. Load-time path only;
// live admission goes through CreateFromArgument.
func (r *Registry) Restore(entity *types.Entity) {
	if _, ok := r.entities[entity.ID]; ok {
		return
	}
	r.entities[entity.ID] = entity
	r.order = append(r.order, entity.ID)
}

// Resolver returns the seed resolver the registry admits through.
func (r *Registry) Resolver() *alias.Resolver {
	return r.resolver
}

// Get returns the entity with the given id, or nil.
func (r *Registry) Get(entityID string) *types.Entity {
	return r.entities[entityID]
}

// List returns every admitted entity in admission order.
func (r *Registry) List() []*types.Entity {
	out := make([]*types.Entity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entities[id])
	}
	return out
}

// Count returns the number of admitted entities.
func (r *Registry) Count() int {
	return len(r.entities)
}

// ByType returns the admitted entities of one type, in admission order.
func (r *Registry) ByType(entityType types.EntityType) []*types.Entity {
	var out []*types.Entity
	for _, id := range r.order {
		if e := r.entities[id]; e.Type == entityType {
			out = append(out, e)
		}
	}
	return out
}

// InEvent returns the entities participating in the given event.
func (r *Registry) InEvent(eventID string) []*types.Entity {
	var out []*types.Entity
	for _, id := range r.order {
		if e := r.entities[id]; e.HasEvent(eventID) {
			out = append(out, e)
		}
	}
	return out
}

// Remove drops an entity from the registry. Used by postprocessing when
// pruning; pipeline admission never removes.
func (r *Registry) Remove(entityID string) {
	if _, ok := r.entities[entityID]; !ok {
		return
	}
	delete(r.entities, entityID)
	for i, id := range r.order {
		if id == entityID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Replace swaps an entity record in place, keeping admission order.
// Used by postprocessing for the type downgrade.
func (r *Registry) Replace(oldID string, entity *types.Entity) {
	if oldID == entity.ID {
		r.entities[oldID] = entity
		return
	}
	delete(r.entities, oldID)
	r.entities[entity.ID] = entity
	for i, id := range r.order {
		if id == oldID {
			r.order[i] = entity.ID
			break
		}
	}
}

// IDs returns every admitted entity id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// reject applies the registry's own noise filters on top of the
// extractor's: pure numbers, pronouns, over-long spans, URL and
// filename fragments, noise words, gerund phrases, and glue-only
// multi-token spans.
func (r *Registry) reject(text string) bool {
	if len(text) > maxArgumentLen {
		return true
	}

	// URL and filename fragments are checked on the raw text: the dot
	// in ".htm"/".com" does not survive normalization.
	lower := strings.ToLower(text)
	for _, p := range []string{".htm", "http", "www", ".com"} {
		if strings.Contains(lower, p) {
			return true
		}
	}

	norm := alias.Normalize(text)
	if registryPronouns[norm] || noiseWords[norm] {
		return true
	}
	if norm != "" && isAllDigits(norm) {
		return true
	}
	for _, prefix := range gerundPrefixes {
		if strings.HasPrefix(norm, prefix) {
			return true
		}
	}
	tokens := strings.Fields(norm)
	if len(tokens) > 1 {
		allGlue := true
		for _, t := range tokens {
			if !glueWords[t] {
				allGlue = false
				break
			}
		}
		if allGlue {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
