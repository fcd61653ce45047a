// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MesoConfig holds the confidence scoring constants for MESO event
// validation. The values are hand-tuned; they are configuration rather
// than embedded literals so they can be adjusted without recompiling.
type MesoConfig struct {
	// MultiActorScore is added when the sentence carries a multi-actor
	// signal (at least two actors, or one actor plus a place).
	MultiActorScore int `json:"multi_actor_score" yaml:"multi_actor_score"`

	// TacticalVerbScore is added when a tactical-verb cue is present.
	TacticalVerbScore int `json:"tactical_verb_score" yaml:"tactical_verb_score"`

	// PlaceScore is added when a place cue is present.
	PlaceScore int `json:"place_score" yaml:"place_score"`

	// ShortSentencePenalty is subtracted when the sentence has fewer
	// than ShortSentenceTokens tokens.
	ShortSentencePenalty int `json:"short_sentence_penalty" yaml:"short_sentence_penalty"`

	// ShortSentenceTokens is the token count under which a sentence is
	// considered short (default 8).
	ShortSentenceTokens int `json:"short_sentence_tokens" yaml:"short_sentence_tokens"`

	// ConfidenceGate is the minimum score for a MESO event to keep its
	// arguments (default 2).
	ConfidenceGate int `json:"confidence_gate" yaml:"confidence_gate"`
}

// DefaultMesoConfig returns the standard scoring constants.
func DefaultMesoConfig() MesoConfig {
	return MesoConfig{
		MultiActorScore:      1,
		TacticalVerbScore:    1,
		PlaceScore:           1,
		ShortSentencePenalty: 1,
		ShortSentenceTokens:  8,
		ConfidenceGate:       2,
	}
}

// AliasConfig holds settings for the clustering alias resolver.
type AliasConfig struct {
	// SimilarityThreshold is the minimum per-type string similarity for
	// two surface forms to be merge candidates (default 0.88).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// MinMentionFrequency excludes rare surface forms from clustering
	// (default 2).
	MinMentionFrequency int `json:"min_mention_frequency" yaml:"min_mention_frequency"`
}

// DefaultAliasConfig returns the standard clustering settings.
func DefaultAliasConfig() AliasConfig {
	return AliasConfig{
		SimilarityThreshold: 0.88,
		MinMentionFrequency: 2,
	}
}

// PipelineConfig holds settings for the graph construction pipeline.
type PipelineConfig struct {
	// ChunksPath is the JSONL file of structured corpus chunks. The
	// file is required; a missing file is fatal at pipeline start.
	ChunksPath string `json:"chunks_path" yaml:"chunks_path"`

	// GraphDir receives entities.json, events.json, edges.json,
	// graph_stats.json, and validation_report.json.
	GraphDir string `json:"graph_dir" yaml:"graph_dir"`

	// RulesPath optionally overrides the built-in event pattern tables
	// with an external YAML rules file.
	RulesPath string `json:"rules_path,omitempty" yaml:"rules_path,omitempty"`

	Meso  MesoConfig  `json:"meso" yaml:"meso"`
	Alias AliasConfig `json:"alias" yaml:"alias"`
}

// ChunkStoreConfig holds settings for the SQLite chunk store.
type ChunkStoreConfig struct {
	// StoreDir is the directory containing chunks.db.
	StoreDir string `json:"store_dir" yaml:"store_dir"`

	// MaxResults is the default maximum number of retrieval results
	// (default 8).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// QueryConfig holds settings for query execution.
type QueryConfig struct {
	// GraphDir is the directory holding the persisted graph documents.
	GraphDir string `json:"graph_dir" yaml:"graph_dir"`

	// TraversalBudget caps the number of edges examined during a single
	// traversal, bounding worst-case latency on pathological graphs
	// (default 10000).
	TraversalBudget int `json:"traversal_budget" yaml:"traversal_budget"`
}

// DefaultTraversalBudget caps traversal work per query.
const DefaultTraversalBudget = 10000
