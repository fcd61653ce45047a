// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package alias

import (
	"sort"
	"strings"

	"github.com/pdiddy/saga-engine/internal/detect"
	"github.com/pdiddy/saga-engine/pkg/types"
)

// Mention is one raw surface occurrence of a candidate name.
type Mention struct {
	Text    string
	Type    types.EntityType
	ChunkID string
}

// Clusterer merges surface-form variants the seed lexicon does not
// cover. Two forms of the same type merge only when BOTH conditions
// hold: string similarity at or above the threshold, and at least one
// shared sentence in the corpus. Similarity alone is not enough;
// near-identical names that never share a sentence stay separate.
type Clusterer struct {
	cfg types.AliasConfig
}

// NewClusterer builds a Clusterer with the given thresholds.
func NewClusterer(cfg types.AliasConfig) *Clusterer {
	return &Clusterer{cfg: cfg}
}

// Resolve maps each normalized mention to a canonical surface form.
// Forms absent from the returned map keep their own normalized form.
// The canonical form of a cluster is its most frequent member; rare
// forms below the minimum mention frequency never merge.
func (c *Clusterer) Resolve(mentions []Mention, chunks []types.Chunk) map[string]string {
	counts := make(map[string]int)
	mentionChunks := make(map[string]map[string]bool)
	byType := make(map[types.EntityType][]string)
	seen := make(map[types.EntityType]map[string]bool)

	for _, m := range mentions {
		norm := Normalize(m.Text)
		if norm == "" {
			continue
		}
		counts[norm]++
		if mentionChunks[norm] == nil {
			mentionChunks[norm] = make(map[string]bool)
		}
		mentionChunks[norm][m.ChunkID] = true

		if seen[m.Type] == nil {
			seen[m.Type] = make(map[string]bool)
		}
		if !seen[m.Type][norm] {
			seen[m.Type][norm] = true
			byType[m.Type] = append(byType[m.Type], m.Text)
		}
	}

	// Deterministic type iteration order.
	etypes := make([]types.EntityType, 0, len(byType))
	for t := range byType {
		etypes = append(etypes, t)
	}
	sort.Slice(etypes, func(i, j int) bool { return etypes[i] < etypes[j] })

	canonical := make(map[string]string)
	for _, etype := range etypes {
		unique := byType[etype]
		if len(unique) == 1 {
			canonical[Normalize(unique[0])] = unique[0]
			continue
		}

		var frequent []string
		for _, text := range unique {
			if counts[Normalize(text)] >= c.cfg.MinMentionFrequency {
				frequent = append(frequent, text)
			}
		}
		if len(frequent) == 0 {
			continue
		}

		cooc := c.cooccurrence(frequent, chunks, mentionChunks)

		assigned := make(map[string]bool)
		for i, text := range frequent {
			norm := Normalize(text)
			if assigned[norm] {
				continue
			}
			cluster := []string{text}
			for _, other := range frequent[i+1:] {
				otherNorm := Normalize(other)
				if assigned[otherNorm] {
					continue
				}
				if Similarity(text, other) >= c.cfg.SimilarityThreshold && cooc[norm][otherNorm] {
					cluster = append(cluster, other)
					assigned[otherNorm] = true
				}
			}
			if len(cluster) > 1 {
				best := cluster[0]
				for _, member := range cluster[1:] {
					if counts[Normalize(member)] > counts[Normalize(best)] {
						best = member
					}
				}
				for _, member := range cluster {
					canonical[Normalize(member)] = best
				}
				assigned[norm] = true
			}
		}

		for _, text := range frequent {
			if !assigned[Normalize(text)] {
				canonical[Normalize(text)] = text
			}
		}
	}

	return canonical
}

// cooccurrence indexes which target norms share a sentence. Only chunks
// known to contain a target mention are scanned.
func (c *Clusterer) cooccurrence(targets []string, chunks []types.Chunk, mentionChunks map[string]map[string]bool) map[string]map[string]bool {
	norms := make([]string, 0, len(targets))
	relevant := make(map[string]bool)
	for _, t := range targets {
		norm := Normalize(t)
		norms = append(norms, norm)
		for chunkID := range mentionChunks[norm] {
			relevant[chunkID] = true
		}
	}

	cooc := make(map[string]map[string]bool)
	for _, chunk := range chunks {
		if !relevant[chunk.ChunkID] {
			continue
		}
		for _, sentence := range detect.SplitSentences(chunk.Text) {
			lowered := Normalize(sentence)
			var hits []string
			for _, norm := range norms {
				if norm != "" && strings.Contains(lowered, norm) {
					hits = append(hits, norm)
				}
			}
			for _, a := range hits {
				for _, b := range hits {
					if a == b {
						continue
					}
					if cooc[a] == nil {
						cooc[a] = make(map[string]bool)
					}
					cooc[a][b] = true
				}
			}
		}
	}
	return cooc
}
