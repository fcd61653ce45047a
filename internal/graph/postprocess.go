// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"regexp"
	"strings"

	"github.com/pdiddy/saga-engine/pkg/types"
)

// conceptualNouns are abstract nouns that masquerade as persons when a
// template captures them.
var conceptualNouns = map[string]bool{
	"death": true, "duty": true, "virtue": true, "sin": true,
	"righteousness": true, "courage": true, "honor": true, "shame": true,
	"fate": true, "destiny": true, "time": true, "age": true,
	"moment": true, "night": true, "day": true, "year": true,
	"action": true, "deed": true, "consequence": true, "result": true,
}

// knownPlaces whitelists the geographic names eligible for place
// recovery.
var knownPlaces = []string{
	"kurukshetra", "indraprastha", "hastinapur", "dwarka", "panchala",
	"matsya", "khandavaprastha", "bharata", "kuru", "anga",
	"magadha", "videha", "kashi", "kalinga", "sindhu", "sauvira",
	"avanti", "malwa", "chedi", "salya", "trigarta",
	"uttara", "dakshin", "uttaravahini", "dakshinayana",
	"india", "bharat", "subhara", "viratha",
}

// characterEpithets are names that must never be recovered as places.
var characterEpithets = map[string]bool{
	"partha": true, "dhananjaya": true, "bhimasena": true,
	"janardana": true, "vasudeva": true, "keshava": true,
	"govinda": true, "kesari": true, "vrikodara": true, "arjuna": true,
	"bhima": true, "krishna": true, "yudhishthira": true, "nakula": true,
	"sahadeva": true, "draupadi": true, "duryodhana": true, "karna": true,
	"bhishma": true, "drona": true, "ashwatthama": true,
	"shikhandin": true, "abhimanyu": true, "pandu": true, "kunti": true,
	"dhritarashtra": true, "gandhari": true, "vidura": true,
	"shalya": true, "shakuni": true, "subhadra": true,
}

// excludedPlaceWords block common words and abstract phrases from place
// recovery.
var excludedPlaceWords = map[string]bool{
	"right": true, "his": true, "her": true, "their": true, "him": true,
	"them": true, "downloaded": true, "dharma": true, "karma": true,
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"in": true, "at": true, "not": true, "slander": true, "tanks": true,
	"forests": true, "garlands": true, "floral": true, "island": true,
	"seven": true, "islands": true, "supreme": true, "felicity": true,
	"woodland": true,
}

var abstractPhrasePattern = regexp.MustCompile(
	`(?i)(slander|garland|felicity|supreme|woodland|tank|forest|flower|` +
		`virtue|sin|honor|shame|fate|destiny|action|deed|night|day|year|moment|age)`)

// placePatterns locate capitalized place names after locative cues.
var placePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bat\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`),
	regexp.MustCompile(`\bin\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`),
	regexp.MustCompile(`\bfield of\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`),
	regexp.MustCompile(`\bnear\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`),
}

// abstractEvents are the event types a conceptual noun may legitimately
// appear in without being a real actor.
var abstractEvents = map[string]bool{
	"DEATH": true, "VOW": true, "BOON": true, "CURSE": true,
}

// supportThresholds is the minimum participation count per entity type.
// LITERAL entities are exempt so downgraded concepts survive as
// annotations.
var supportThresholds = map[types.EntityType]int{
	types.EntityPerson:  2,
	types.EntityGroup:   1,
	types.EntityPlace:   1,
	types.EntityTime:    1,
	types.EntityLiteral: 0,
}

// PostprocessStats counts the refinements applied.
type PostprocessStats struct {
	Downgraded      int `json:"downgraded" yaml:"downgraded"`
	PlacesRecovered int `json:"places_recovered" yaml:"places_recovered"`
	EntitiesRemoved int `json:"entities_removed" yaml:"entities_removed"`
	EdgesRemoved    int `json:"edges_removed" yaml:"edges_removed"`
}

// Postprocess refines the constructed graph in three ordered passes:
// conceptual-noun downgrade, place recovery, then minimum-support
// pruning. Order matters: recovered places must exist before support is
// counted, and downgraded entities must already be LITERAL so pruning
// exempts them.
func (g *Graph) Postprocess() PostprocessStats {
	var stats PostprocessStats
	stats.Downgraded = g.downgradeConceptual()
	stats.PlacesRecovered = g.recoverPlaces()
	stats.EntitiesRemoved, stats.EdgesRemoved = g.pruneLowSupport()
	return stats
}

// downgradeConceptual retypes abstract nouns captured as PERSON to
// LITERAL. An entity is downgraded only when all four criteria hold:
// lowercase canonical name, a known conceptual noun, appearing only in
// abstract event types, and sitting on the receiving end of at least
// 80% of its edges with no structural edge at all.
func (g *Graph) downgradeConceptual() int {
	downgraded := 0
	for _, entity := range g.Registry.List() {
		if entity.Type != types.EntityPerson {
			continue
		}
		if !g.shouldDowngrade(entity) {
			continue
		}
		entity.Type = types.EntityLiteral
		downgraded++
	}
	return downgraded
}

func (g *Graph) shouldDowngrade(entity *types.Entity) bool {
	canonical := strings.ToLower(entity.CanonicalName)
	if entity.CanonicalName != canonical {
		return false
	}
	if !conceptualNouns[canonical] {
		return false
	}

	abstractOnly := true
	objectCount := 0
	for _, eventID := range entity.EventIDs {
		event := g.events[eventID]
		if event == nil {
			continue
		}
		if !abstractEvents[event.Type] {
			abstractOnly = false
		}
		for _, edge := range g.byTarget[entity.ID] {
			if edge.EventID == eventID {
				objectCount++
			}
		}
	}
	if !abstractOnly {
		return false
	}

	touching := len(g.EdgesTouching(entity.ID))
	if touching == 0 {
		return false
	}
	if float64(objectCount)/float64(touching) < 0.80 {
		return false
	}

	for _, edge := range g.EdgesTouching(entity.ID) {
		if edge.Type == types.EdgeOccurredAt {
			return false
		}
	}
	return true
}

// recoverPlaces scans event sentences for locative patterns and admits
// whitelisted places, attaching OCCURRED_AT edges from event to place.
// Names already admitted as PERSON or GROUP are never re-admitted as
// places.
func (g *Graph) recoverPlaces() int {
	recovered := make(map[string]bool)

	for _, eventID := range g.eventOrder {
		event := g.events[eventID]
		for _, pattern := range placePatterns {
			for _, m := range pattern.FindAllStringSubmatch(event.Sentence, -1) {
				placeText := strings.TrimSpace(m[1])
				lower := strings.ToLower(placeText)
				if len(placeText) < 3 || lower == "the" || lower == "a" || lower == "an" {
					continue
				}
				placeID := g.admitPlace(placeText, eventID)
				if placeID == "" {
					continue
				}
				recovered[placeText] = true
				g.MergeEdge(eventID, placeID, types.EdgeOccurredAt, eventID, event.Type, event.ChunkID)
			}
		}
	}
	return len(recovered)
}

// admitPlace creates or reuses a PLACE entity for recovered place text.
// Recovery is the one admission path outside event arguments, and it is
// whitelist-gated for exactly that reason.
func (g *Graph) admitPlace(placeText, eventID string) string {
	canonical := strings.ToLower(placeText)

	if excludedPlaceWords[canonical] || characterEpithets[canonical] {
		return ""
	}
	if abstractPhrasePattern.MatchString(canonical) {
		return ""
	}

	for _, entity := range g.Registry.List() {
		if strings.ToLower(entity.CanonicalName) != canonical {
			continue
		}
		switch entity.Type {
		case types.EntityPerson, types.EntityGroup:
			return ""
		case types.EntityPlace:
			if !entity.HasEvent(eventID) {
				entity.EventIDs = append(entity.EventIDs, eventID)
			}
			return entity.ID
		}
	}

	known := false
	for _, p := range knownPlaces {
		if strings.Contains(canonical, p) {
			known = true
			break
		}
	}
	if !known {
		return ""
	}

	return g.Registry.AdmitPlace(placeText, canonical, eventID)
}

// pruneLowSupport removes entities whose participation count falls
// below the per-type threshold, cascading to their edges.
func (g *Graph) pruneLowSupport() (entitiesRemoved, edgesRemoved int) {
	var toRemove []string
	for _, entity := range g.Registry.List() {
		threshold, ok := supportThresholds[entity.Type]
		if !ok {
			threshold = 1
		}
		if len(entity.EventIDs) < threshold {
			toRemove = append(toRemove, entity.ID)
		}
	}

	for _, entityID := range toRemove {
		edgesRemoved += g.RemoveEntity(entityID)
		entitiesRemoved++
	}
	return entitiesRemoved, edgesRemoved
}
