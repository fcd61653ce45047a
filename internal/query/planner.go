// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns natural-language questions into structured plans
// and executes them against the knowledge graph. Both halves are fully
// deterministic: the same question against the same graph always
// produces the same plan, the same traversal, and the same result.
package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/saga-engine/pkg/types"
)

// intentEventMap is the base set of target event types per intent.
var intentEventMap = map[types.Intent][]string{
	types.IntentFact:     {"KILL", "DEATH", "BATTLE", "CORONATION", "APPOINTED_AS", "CURSE"},
	types.IntentCausal:   {"SUPPORTED", "DEFENDED", "VOW", "COMMAND"},
	types.IntentTemporal: {"DEATH", "BATTLE", "RETREATED"},
	types.IntentMultiHop: {"KILL", "DEATH", "BOON", "CURSE"},
}

// intentPriority resolves multi-intent questions. MULTI_HOP outranks
// FACT so "Who benefited..." is not swallowed by the who-rule.
var intentPriority = []types.Intent{
	types.IntentCausal, types.IntentTemporal, types.IntentMultiHop, types.IntentFact,
}

var intentRules = []struct {
	intent  types.Intent
	pattern *regexp.Regexp
}{
	{types.IntentFact, regexp.MustCompile(`(?i)\bwho\b|\bwhom\b|\bwhat\b|\bwhen\b`)},
	{types.IntentCausal, regexp.MustCompile(`(?i)\bwhy\b|\bbecause\b|\breason\b`)},
	{types.IntentTemporal, regexp.MustCompile(`(?i)\bbefore\b|\bafter\b|\bduring\b|\bfirst\b|\blast\b`)},
}

// multiHopPatterns are the semantic triggers for consequence/benefit
// questions, checked before the FACT fallback.
var multiHopPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbenefit(?:ed|s)?\b`),
	regexp.MustCompile(`(?i)\bconsequence(?:s)?\b`),
	regexp.MustCompile(`(?i)\bimpact(?:ed|s)?\b`),
	regexp.MustCompile(`(?i)\bled to\b`),
	regexp.MustCompile(`(?i)\bresult(?:ed)? in\b`),
	regexp.MustCompile(`(?i)\bgained\b`),
	regexp.MustCompile(`(?i)\badvantage\b`),
}

var (
	killVerbPattern  = regexp.MustCompile(`(?i)\bkilled\b|\bslew\b|\bslain\b`)
	agentVerbPattern = regexp.MustCompile(`(?i)\bkilled\b|\bslew\b`)
	cursePattern     = regexp.MustCompile(`(?i)\bcurse(?:d|s)?\b`)
	whyPattern       = regexp.MustCompile(`(?i)\bwhy\b`)
)

// planPronouns are never seed entities even when an entity alias
// collides with one.
var planPronouns = map[string]bool{
	"i": true, "me": true, "we": true, "you": true, "he": true,
	"she": true, "they": true, "them": true, "him": true, "her": true,
	"it": true, "his": true, "hers": true, "their": true, "theirs": true,
	"your": true, "yours": true, "who": true, "whom": true,
}

// entityTypePriority orders seed candidates when a surface form is
// shared across entity types.
var entityTypePriority = map[types.EntityType]int{
	types.EntityPerson:  0,
	types.EntityGroup:   1,
	types.EntityPlace:   2,
	types.EntityTime:    3,
	types.EntityLiteral: 4,
}

type aliasEntry struct {
	canonical string
	etype     types.EntityType
	pattern   *regexp.Regexp
}

// Planner builds query plans against the admitted entity population.
type Planner struct {
	aliases []aliasEntry
}

// NewPlanner indexes the canonical names and aliases of every entity
// for seed extraction. Aliases are matched case-insensitively on word
// boundaries.
func NewPlanner(entities []*types.Entity) *Planner {
	seen := make(map[string]bool)
	var aliases []aliasEntry

	add := func(surface string, canonical string, etype types.EntityType) {
		lower := strings.ToLower(strings.TrimSpace(surface))
		if lower == "" || planPronouns[lower] || seen[lower] {
			return
		}
		seen[lower] = true
		aliases = append(aliases, aliasEntry{
			canonical: canonical,
			etype:     etype,
			pattern:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(lower) + `\b`),
		})
	}

	for _, e := range entities {
		canonical := strings.ToLower(e.CanonicalName)
		add(canonical, canonical, e.Type)
		for _, a := range e.Aliases {
			add(a, canonical, e.Type)
		}
	}

	return &Planner{aliases: aliases}
}

// Plan converts a question into a structured QueryPlan. No traversal
// happens here.
func (p *Planner) Plan(question string) types.QueryPlan {
	intent, matchedRules := classifyIntent(question)
	seeds := p.extractSeeds(question)
	targets, lexicalHits := targetEventTypes(intent, question)
	constraints := inferConstraints(question)

	depth := 2
	if intent == types.IntentFact {
		depth = 1
	}

	return types.QueryPlan{
		Intent:           intent,
		SeedEntities:     seeds,
		TargetEventTypes: targets,
		Constraints:      constraints,
		TraversalDepth:   depth,
		Debug: types.PlanDebug{
			MatchedRules: matchedRules,
			LexicalHits:  lexicalHits,
		},
	}
}

// classifyIntent applies the rule table with the fixed priority
// CAUSAL > TEMPORAL > MULTI_HOP > FACT. Questions matching nothing
// default to FACT.
func classifyIntent(question string) (types.Intent, []string) {
	found := make(map[types.Intent]bool)
	var matched []string

	for _, pat := range multiHopPatterns {
		if pat.MatchString(question) {
			found[types.IntentMultiHop] = true
			matched = append(matched, fmt.Sprintf("MULTI_HOP:%s", pat.String()))
		}
	}
	for _, rule := range intentRules {
		if rule.pattern.MatchString(question) {
			found[rule.intent] = true
			matched = append(matched, fmt.Sprintf("%s:%s", rule.intent, rule.pattern.String()))
		}
	}

	for _, intent := range intentPriority {
		if found[intent] {
			return intent, matched
		}
	}
	return types.IntentFact, matched
}

// extractSeeds finds known entities mentioned in the question. Results
// are sorted by entity type priority then name, so plans are stable
// regardless of registry iteration order.
func (p *Planner) extractSeeds(question string) []string {
	type hit struct {
		canonical string
		etype     types.EntityType
	}
	matches := make(map[string]hit)

	for _, entry := range p.aliases {
		if !entry.pattern.MatchString(question) {
			continue
		}
		existing, ok := matches[entry.canonical]
		if !ok || entityTypePriority[entry.etype] < entityTypePriority[existing.etype] {
			matches[entry.canonical] = hit{canonical: entry.canonical, etype: entry.etype}
		}
	}

	hits := make([]hit, 0, len(matches))
	for _, h := range matches {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool {
		pi, pj := entityTypePriority[hits[i].etype], entityTypePriority[hits[j].etype]
		if pi != pj {
			return pi < pj
		}
		return hits[i].canonical < hits[j].canonical
	})

	seeds := make([]string, 0, len(hits))
	for _, h := range hits {
		seeds = append(seeds, h.canonical)
	}
	return seeds
}

// targetEventTypes starts from the intent's base set and adjusts it on
// lexical cues: kill verbs promote KILL to the front, curse questions
// narrow to CURSE only, and why-questions drop DEATH from causal plans.
func targetEventTypes(intent types.Intent, question string) ([]string, []string) {
	targets := append([]string(nil), intentEventMap[intent]...)
	var hits []string

	if killVerbPattern.MatchString(question) {
		for i, t := range targets {
			if t == "KILL" {
				targets = append(targets[:i], targets[i+1:]...)
				break
			}
		}
		targets = append([]string{"KILL"}, targets...)
		hits = append(hits, "kill/verb")
	}
	if cursePattern.MatchString(question) {
		targets = []string{"CURSE"}
		hits = append(hits, "curse/verb")
	}
	if whyPattern.MatchString(question) && intent == types.IntentCausal {
		kept := targets[:0]
		for _, t := range targets {
			if t != "DEATH" {
				kept = append(kept, t)
			}
		}
		if len(kept) != len(targets) {
			hits = append(hits, "drop DEATH for causal why")
		}
		targets = kept
	}

	return targets, hits
}

// inferConstraints derives execution constraints from the question.
func inferConstraints(question string) types.Constraints {
	var c types.Constraints
	if agentVerbPattern.MatchString(question) {
		c.AgentRequired = true
	}
	if whyPattern.MatchString(question) {
		c.CausalChain = true
	}
	switch {
	case temporalWord(question, "after"):
		c.TemporalOrder = types.OrderAfter
	case temporalWord(question, "before"):
		c.TemporalOrder = types.OrderBefore
	case temporalWord(question, "during"):
		c.TemporalOrder = types.OrderDuring
	case temporalWord(question, "first"):
		c.TemporalOrder = types.OrderFirst
	case temporalWord(question, "last"):
		c.TemporalOrder = types.OrderLast
	}
	return c
}

var temporalWordPatterns = map[string]*regexp.Regexp{
	"after":  regexp.MustCompile(`(?i)\bafter\b`),
	"before": regexp.MustCompile(`(?i)\bbefore\b`),
	"during": regexp.MustCompile(`(?i)\bduring\b`),
	"first":  regexp.MustCompile(`(?i)\bfirst\b`),
	"last":   regexp.MustCompile(`(?i)\blast\b`),
}

func temporalWord(question, word string) bool {
	return temporalWordPatterns[word].MatchString(question)
}
