// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"
	"sort"
)

// ValidationReport is the outcome of the integrity checks. Errors are
// violations of structural invariants; warnings are suspicious but
// legal patterns.
type ValidationReport struct {
	Valid        bool     `json:"valid" yaml:"valid"`
	ErrorCount   int      `json:"error_count" yaml:"error_count"`
	WarningCount int      `json:"warning_count" yaml:"warning_count"`
	Errors       []string `json:"errors" yaml:"errors"`
	Warnings     []string `json:"warnings" yaml:"warnings"`

	Stats ValidationStats `json:"stats" yaml:"stats"`
}

// ValidationStats sizes the validated graph.
type ValidationStats struct {
	EntityCount int `json:"entity_count" yaml:"entity_count"`
	EventCount  int `json:"event_count" yaml:"event_count"`
	EdgeCount   int `json:"edge_count" yaml:"edge_count"`
}

// Validate runs every integrity check and returns the report. The
// graph is valid when no check produced an error; warnings alone never
// fail validation.
func (g *Graph) Validate() ValidationReport {
	var errs, warnings []string

	// Entity types must stay in the closed set.
	for _, entity := range g.Registry.List() {
		if !entity.Type.Valid() {
			errs = append(errs, fmt.Sprintf("invalid entity type: %s has type %s", entity.ID, entity.Type))
		}
	}

	// No orphan entities: every entity participates in >=1 event.
	for _, entity := range g.Registry.List() {
		if len(entity.EventIDs) == 0 {
			errs = append(errs, fmt.Sprintf("orphan entity: %s (%s) participates in no events", entity.ID, entity.CanonicalName))
		}
	}

	// Every event carries full source evidence.
	for _, event := range g.Events() {
		if event.ChunkID == "" {
			errs = append(errs, fmt.Sprintf("event %s has no chunk_id", event.ID))
		}
		if event.Parva == "" {
			errs = append(errs, fmt.Sprintf("event %s has no parva", event.ID))
		}
		if event.Section == "" {
			errs = append(errs, fmt.Sprintf("event %s has no section", event.ID))
		}
	}

	// A surface form spread over several entities suggests resolution
	// drift; legal, but worth flagging.
	aliasOwners := make(map[string]map[string]bool)
	for _, entity := range g.Registry.List() {
		for _, a := range entity.Aliases {
			if aliasOwners[a] == nil {
				aliasOwners[a] = make(map[string]bool)
			}
			aliasOwners[a][entity.ID] = true
		}
	}
	aliases := make([]string, 0, len(aliasOwners))
	for a := range aliasOwners {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	for _, a := range aliases {
		if len(aliasOwners[a]) > 1 {
			warnings = append(warnings, fmt.Sprintf("alias collision: %q appears in %d entities", a, len(aliasOwners[a])))
		}
	}

	for _, entity := range g.Registry.List() {
		if len(entity.CanonicalName) > 50 {
			warnings = append(warnings, fmt.Sprintf("suspicious entity name: %s (%s...) is very long", entity.ID, entity.CanonicalName[:20]))
		}
	}

	return ValidationReport{
		Valid:        len(errs) == 0,
		ErrorCount:   len(errs),
		WarningCount: len(warnings),
		Errors:       errs,
		Warnings:     warnings,
		Stats: ValidationStats{
			EntityCount: g.EntityCount(),
			EventCount:  g.EventCount(),
			EdgeCount:   g.EdgeCount(),
		},
	}
}
