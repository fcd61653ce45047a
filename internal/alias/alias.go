// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package alias maps surface name variants to canonical entity names.
// Resolution runs in two layers: a curated seed lexicon for the names
// that dominate the corpus, and a similarity/co-occurrence clusterer
// for everything else.
package alias

import (
	"regexp"
	"strings"

	"github.com/pdiddy/saga-engine/pkg/types"
)

var (
	nonNamePattern = regexp.MustCompile(`[^a-z0-9\s]`)
	nonIDPattern   = regexp.MustCompile(`[^a-z0-9_]`)
	underscoreRun  = regexp.MustCompile(`_+`)
)

// Normalize prepares a name for matching: lowercase, punctuation
// stripped, whitespace collapsed.
func Normalize(text string) string {
	text = nonNamePattern.ReplaceAllString(strings.ToLower(text), "")
	return strings.Join(strings.Fields(text), " ")
}

// Resolver maps known epithets to canonical names using a seed lexicon.
// Unknown names resolve to their own normalized form, never to nil: the
// resolver decides spelling, not admission.
type Resolver struct {
	aliasToCanonical map[string]string
}

// NewResolver builds a Resolver from seed groups of
// canonical name -> known epithets.
func NewResolver(seeds map[string][]string) *Resolver {
	r := &Resolver{aliasToCanonical: make(map[string]string)}
	for canonical, aliases := range seeds {
		canonicalNorm := Normalize(canonical)
		for _, a := range aliases {
			r.aliasToCanonical[Normalize(a)] = canonicalNorm
		}
	}
	return r
}

// Resolve returns the canonical normalized form of a mention. Mentions
// outside the seed lexicon keep their own normalized form.
func (r *Resolver) Resolve(mention string) string {
	norm := Normalize(mention)
	if canonical, ok := r.aliasToCanonical[norm]; ok {
		return canonical
	}
	return norm
}

// Learn records a clustering-derived canonical mapping of normalized
// forms. Seed entries always win; a norm the lexicon already covers is
// left alone, and self-mappings are dropped.
func (r *Resolver) Learn(norm, canonical string) {
	if norm == "" || norm == canonical {
		return
	}
	if _, ok := r.aliasToCanonical[norm]; ok {
		return
	}
	r.aliasToCanonical[norm] = canonical
}

// Known reports whether the mention is covered by the seed lexicon.
func (r *Resolver) Known(mention string) bool {
	_, ok := r.aliasToCanonical[Normalize(mention)]
	return ok
}

// CanonicalID derives the deterministic entity identifier
// {type}_{canonical}: lowercase, with every character outside
// [a-z0-9_] mapped to an underscore and underscore runs collapsed.
func (r *Resolver) CanonicalID(name string, entityType types.EntityType) string {
	canonical := r.Resolve(name)
	id := strings.ToLower(string(entityType) + "_" + canonical)
	id = nonIDPattern.ReplaceAllString(id, "_")
	id = underscoreRun.ReplaceAllString(id, "_")
	return strings.Trim(id, "_")
}
