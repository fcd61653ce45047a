// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/saga-engine/internal/alias"
	"github.com/pdiddy/saga-engine/internal/graph"
	"github.com/pdiddy/saga-engine/pkg/types"
)

// Executor runs query plans against a loaded graph. Execution never
// invents results: an empty match set with found=false and a trace
// explaining the misses is a correct answer.
type Executor struct {
	g          *graph.Graph
	resolver   *alias.Resolver
	aliasIndex map[string]string
	budget     int
}

// NewExecutor indexes the graph for execution. budget caps the number
// of edges examined per traversal; pass 0 for the default.
func NewExecutor(g *graph.Graph, budget int) *Executor {
	if budget <= 0 {
		budget = types.DefaultTraversalBudget
	}

	index := make(map[string]string)
	for _, e := range g.Registry.List() {
		if canonical := strings.ToLower(e.CanonicalName); canonical != "" {
			index[canonical] = e.ID
		}
		for _, a := range e.Aliases {
			if lower := strings.ToLower(a); lower != "" {
				index[lower] = e.ID
			}
		}
	}

	return &Executor{g: g, resolver: g.Registry.Resolver(), aliasIndex: index, budget: budget}
}

// Execute routes the plan by intent and returns the structured result
// with its full debug trace.
func (e *Executor) Execute(plan types.QueryPlan, queryText string) types.QueryResult {
	trace := []string{
		fmt.Sprintf("[START] executing %s query with max_depth=%d", plan.Intent, plan.TraversalDepth),
		fmt.Sprintf("[SEEDS] seed_entities=%v", plan.SeedEntities),
		fmt.Sprintf("[TARGET] event_types=%v", plan.TargetEventTypes),
		fmt.Sprintf("[CONSTRAINTS] agent_required=%t temporal_order=%s causal_chain=%t",
			plan.Constraints.AgentRequired, plan.Constraints.TemporalOrder, plan.Constraints.CausalChain),
	}

	var matched []*types.Event
	switch plan.Intent {
	case types.IntentFact:
		matched = e.executeFact(plan, &trace)
	case types.IntentTemporal:
		matched = e.executeTemporal(plan, &trace)
	case types.IntentCausal:
		matched = e.executeCausal(plan, &trace)
	case types.IntentMultiHop:
		matched = e.executeMultiHop(plan, &trace)
	default:
		trace = append(trace, fmt.Sprintf("[ERROR] unknown intent: %s", plan.Intent))
	}

	entities := e.entitiesOf(matched)
	trace = append(trace, fmt.Sprintf("[RESULT] found %d events, %d entities", len(matched), len(entities)))

	events := make([]types.Event, 0, len(matched))
	for _, ev := range matched {
		events = append(events, *ev)
	}

	return types.QueryResult{
		QueryText:          queryText,
		Intent:             plan.Intent,
		Found:              len(matched) > 0,
		SeedEntities:       plan.SeedEntities,
		MatchedEvents:      events,
		MatchedEntities:    entities,
		ConstraintsApplied: appliedConstraints(plan.Constraints),
		TraversalInfo: types.TraversalInfo{
			MaxDepth:      plan.TraversalDepth,
			EventsFound:   len(matched),
			EntitiesFound: len(entities),
		},
		DebugTrace: trace,
	}
}

// executeFact scans the outgoing edges of each resolved seed entity and
// keeps events matching the target types and constraints.
func (e *Executor) executeFact(plan types.QueryPlan, trace *[]string) []*types.Event {
	*trace = append(*trace, "[FACT] direct entity lookup")

	resolved := e.resolveSeeds(plan.SeedEntities, trace)
	if len(resolved) == 0 {
		*trace = append(*trace, "[FACT] no seed entities resolved")
		return nil
	}

	var matched []*types.Event
	seen := make(map[string]bool)
	for _, entityID := range resolved {
		edges := e.g.EdgesFrom(entityID)
		*trace = append(*trace, fmt.Sprintf("[FACT] entity %s: %d outgoing edges", entityID, len(edges)))

		for _, edge := range edges {
			event := e.g.Event(edge.EventID)
			if event == nil || seen[edge.EventID] {
				continue
			}
			if !typeAllowed(event.Type, plan.TargetEventTypes) {
				*trace = append(*trace, fmt.Sprintf("[FACT] event %s type %s not in targets", event.ID, event.Type))
				continue
			}
			if plan.Constraints.AgentRequired && len(event.Participants) < 2 {
				*trace = append(*trace, fmt.Sprintf("[FACT] event %s rejected: agent_required with %d participant(s)", event.ID, len(event.Participants)))
				continue
			}
			*trace = append(*trace, fmt.Sprintf("[FACT] event %s matched (%s)", event.ID, event.Type))
			matched = append(matched, event)
			seen[event.ID] = true
		}
	}

	*trace = append(*trace, fmt.Sprintf("[FACT] total matched: %d events", len(matched)))
	return matched
}

// executeTemporal orders by event sequence number, which tracks
// source-processing order and stands in for narrative chronology. With
// an AFTER/BEFORE constraint it returns events on the requested side of
// the seed events, capped at depth*10 results; without one it returns
// the seed events themselves.
func (e *Executor) executeTemporal(plan types.QueryPlan, trace *[]string) []*types.Event {
	order := plan.Constraints.TemporalOrder
	*trace = append(*trace, fmt.Sprintf("[TEMPORAL] lookup with temporal_order=%s", order))

	resolved := e.resolveSeeds(plan.SeedEntities, trace)
	if len(resolved) == 0 {
		*trace = append(*trace, "[TEMPORAL] no seed entities resolved")
		return nil
	}

	var seedEvents []*types.Event
	seen := make(map[string]bool)
	for _, entityID := range resolved {
		for _, edge := range e.g.EdgesFrom(entityID) {
			event := e.g.Event(edge.EventID)
			if event == nil || seen[event.ID] {
				continue
			}
			if typeAllowed(event.Type, plan.TargetEventTypes) {
				seedEvents = append(seedEvents, event)
				seen[event.ID] = true
			}
		}
	}
	*trace = append(*trace, fmt.Sprintf("[TEMPORAL] found %d seed events", len(seedEvents)))

	limit := plan.TraversalDepth * 10
	var matched []*types.Event

	switch order {
	case types.OrderAfter:
		pivot := 0
		for _, ev := range seedEvents {
			if ev.Seq > pivot {
				pivot = ev.Seq
			}
		}
		if pivot == 0 {
			break
		}
		for _, event := range e.eventsBySeq(false) {
			if len(matched) >= limit {
				break
			}
			if event.Seq > pivot && typeAllowed(event.Type, plan.TargetEventTypes) {
				matched = append(matched, event)
				*trace = append(*trace, fmt.Sprintf("[TEMPORAL] event %s is AFTER", event.ID))
			}
		}

	case types.OrderBefore:
		pivot := 0
		for _, ev := range seedEvents {
			if pivot == 0 || ev.Seq < pivot {
				pivot = ev.Seq
			}
		}
		if pivot == 0 {
			break
		}
		for _, event := range e.eventsBySeq(true) {
			if len(matched) >= limit {
				break
			}
			if event.Seq < pivot && typeAllowed(event.Type, plan.TargetEventTypes) {
				matched = append(matched, event)
				*trace = append(*trace, fmt.Sprintf("[TEMPORAL] event %s is BEFORE", event.ID))
			}
		}

	default:
		matched = seedEvents
		*trace = append(*trace, fmt.Sprintf("[TEMPORAL] no ordering constraint, returning %d seed events", len(matched)))
	}

	*trace = append(*trace, fmt.Sprintf("[TEMPORAL] total matched: %d events", len(matched)))
	return matched
}

// executeCausal runs a depth-limited breadth-first traversal from the
// seed entities, expanding through the participants of each matched
// event. The visited set prevents cycles and the edge budget bounds
// pathological graphs.
func (e *Executor) executeCausal(plan types.QueryPlan, trace *[]string) []*types.Event {
	*trace = append(*trace, "[CAUSAL] depth-limited causal traversal")

	resolved := e.resolveSeeds(plan.SeedEntities, trace)
	if len(resolved) == 0 {
		*trace = append(*trace, "[CAUSAL] no seed entities resolved")
		return nil
	}

	type frame struct {
		entityID string
		depth    int
	}
	var queue []frame
	visited := make(map[string]bool)
	for _, entityID := range resolved {
		queue = append(queue, frame{entityID: entityID, depth: 0})
		visited[entityID] = true
	}

	var matched []*types.Event
	matchedIDs := make(map[string]bool)
	examined := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth > plan.TraversalDepth {
			continue
		}

		for _, edge := range e.g.EdgesFrom(cur.entityID) {
			examined++
			if examined > e.budget {
				*trace = append(*trace, fmt.Sprintf("[CAUSAL] traversal budget %d exhausted", e.budget))
				*trace = append(*trace, fmt.Sprintf("[CAUSAL] total matched: %d events", len(matched)))
				return matched
			}

			event := e.g.Event(edge.EventID)
			if event == nil || matchedIDs[edge.EventID] {
				continue
			}
			if !typeAllowed(event.Type, plan.TargetEventTypes) {
				continue
			}

			matched = append(matched, event)
			matchedIDs[event.ID] = true
			*trace = append(*trace, fmt.Sprintf("[CAUSAL] depth %d: event %s matched (%s)", cur.depth, event.ID, event.Type))

			if cur.depth < plan.TraversalDepth {
				for _, p := range event.Participants {
					if !visited[p] {
						visited[p] = true
						queue = append(queue, frame{entityID: p, depth: cur.depth + 1})
						*trace = append(*trace, fmt.Sprintf("[CAUSAL] enqueue entity %s at depth %d", p, cur.depth+1))
					}
				}
			}
		}
	}

	*trace = append(*trace, fmt.Sprintf("[CAUSAL] total matched: %d events", len(matched)))
	return matched
}

// multiHopTriggers are the event types that open a consequence chain.
var multiHopTriggers = map[string]bool{"KILL": true, "DEATH": true, "BATTLE": true}

// executeMultiHop models TRIGGER -> CONSEQUENCE chains: phase one finds
// trigger events (KILL/DEATH/BATTLE) on the seed entities, phase two
// scans the triggers' participants for further target events.
func (e *Executor) executeMultiHop(plan types.QueryPlan, trace *[]string) []*types.Event {
	*trace = append(*trace, "[MULTI_HOP] consequence chain traversal")

	resolved := e.resolveSeeds(plan.SeedEntities, trace)
	if len(resolved) == 0 {
		*trace = append(*trace, "[MULTI_HOP] no seed entities resolved")
		return nil
	}

	triggers := make(map[string]*types.Event)
	var triggerOrder []string
	for _, entityID := range resolved {
		for _, edge := range e.g.EdgesFrom(entityID) {
			event := e.g.Event(edge.EventID)
			if event == nil {
				continue
			}
			if _, ok := triggers[event.ID]; ok {
				continue
			}
			if typeAllowed(event.Type, plan.TargetEventTypes) && multiHopTriggers[event.Type] {
				triggers[event.ID] = event
				triggerOrder = append(triggerOrder, event.ID)
				*trace = append(*trace, fmt.Sprintf("[MULTI_HOP] phase 1: trigger event %s (%s)", event.ID, event.Type))
			}
		}
	}
	*trace = append(*trace, fmt.Sprintf("[MULTI_HOP] found %d trigger events", len(triggers)))

	participants := make(map[string]bool)
	for _, id := range triggerOrder {
		for _, p := range triggers[id].Participants {
			participants[p] = true
		}
	}
	participantIDs := make([]string, 0, len(participants))
	for p := range participants {
		participantIDs = append(participantIDs, p)
	}
	sort.Strings(participantIDs)
	*trace = append(*trace, fmt.Sprintf("[MULTI_HOP] phase 2: searching consequences among %d participants", len(participantIDs)))

	consequences := make(map[string]*types.Event)
	var consequenceOrder []string
	for _, entityID := range participantIDs {
		for _, edge := range e.g.EdgesFrom(entityID) {
			event := e.g.Event(edge.EventID)
			if event == nil {
				continue
			}
			if _, ok := triggers[event.ID]; ok {
				continue
			}
			if _, ok := consequences[event.ID]; ok {
				continue
			}
			if typeAllowed(event.Type, plan.TargetEventTypes) {
				consequences[event.ID] = event
				consequenceOrder = append(consequenceOrder, event.ID)
				*trace = append(*trace, fmt.Sprintf("[MULTI_HOP] phase 2: consequence event %s (%s)", event.ID, event.Type))
			}
		}
	}

	matched := make([]*types.Event, 0, len(triggerOrder)+len(consequenceOrder))
	for _, id := range triggerOrder {
		matched = append(matched, triggers[id])
	}
	for _, id := range consequenceOrder {
		matched = append(matched, consequences[id])
	}
	*trace = append(*trace, fmt.Sprintf("[MULTI_HOP] total matched: %d triggers + %d consequences", len(triggerOrder), len(consequenceOrder)))
	return matched
}

// resolveSeeds maps seed names to entity ids through the alias index,
// falling back to the seed lexicon so a known epithet resolves even
// when that surface form never appeared in the corpus. Misses are
// traced, not fatal.
func (e *Executor) resolveSeeds(seeds []string, trace *[]string) []string {
	var resolved []string
	for _, name := range seeds {
		entityID, ok := e.aliasIndex[strings.ToLower(name)]
		if !ok && e.resolver != nil {
			entityID, ok = e.aliasIndex[e.resolver.Resolve(name)]
		}
		if ok {
			resolved = append(resolved, entityID)
			*trace = append(*trace, fmt.Sprintf("[RESOLVE] %s -> %s", name, entityID))
		} else {
			*trace = append(*trace, fmt.Sprintf("[RESOLVE] %s not found in graph", name))
		}
	}
	return resolved
}

// entitiesOf collects the unique participants of the matched events as
// summaries, sorted by id.
func (e *Executor) entitiesOf(events []*types.Event) []types.EntitySummary {
	ids := make(map[string]bool)
	for _, ev := range events {
		for _, p := range ev.Participants {
			ids[p] = true
		}
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var out []types.EntitySummary
	for _, id := range sorted {
		entity := e.g.Registry.Get(id)
		if entity == nil {
			continue
		}
		out = append(out, types.EntitySummary{
			EntityID:      id,
			CanonicalName: entity.CanonicalName,
			Type:          entity.Type,
			EventCount:    len(entity.EventIDs),
		})
	}
	return out
}

// eventsBySeq returns every event ordered by sequence number.
func (e *Executor) eventsBySeq(descending bool) []*types.Event {
	events := e.g.Events()
	sort.Slice(events, func(i, j int) bool {
		if descending {
			return events[i].Seq > events[j].Seq
		}
		return events[i].Seq < events[j].Seq
	})
	return events
}

func typeAllowed(eventType string, targets []string) bool {
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		if t == eventType {
			return true
		}
	}
	return false
}

func appliedConstraints(c types.Constraints) []string {
	var applied []string
	if c.AgentRequired {
		applied = append(applied, "agent_required")
	}
	if c.TemporalOrder != "" {
		applied = append(applied, "temporal_order")
	}
	if c.CausalChain {
		applied = append(applied, "causal_chain")
	}
	return applied
}
