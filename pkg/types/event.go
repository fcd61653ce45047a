// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Chunk is a structured corpus record produced by the upstream text
// structuring stage, one JSONL row per chunk.
type Chunk struct {
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`
	Parva   string `json:"parva" yaml:"parva"`
	Section string `json:"section" yaml:"section"`
	Text    string `json:"text" yaml:"text"`
}

// DetectedEvent is a sentence classified into a typed narrative event
// by the rule-based detector. Pure classification output; no arguments
// have been extracted yet.
type DetectedEvent struct {
	Type          string    `json:"event_type" yaml:"event_type"`
	Tier          EventTier `json:"tier" yaml:"tier"`
	Sentence      string    `json:"sentence" yaml:"sentence"`
	SentenceIndex int       `json:"sentence_index" yaml:"sentence_index"`
	ChunkID       string    `json:"chunk_id" yaml:"chunk_id"`
	Parva         string    `json:"parva" yaml:"parva"`
	Section       string    `json:"section" yaml:"section"`
}

// Argument is a role-tagged participant span recovered from an event
// sentence.
type Argument struct {
	// Role is agent, patient, recipient, agent1, agent2, or group.
	Role string `json:"role" yaml:"role"`

	// Text is the cleaned span text.
	Text string `json:"text" yaml:"text"`

	// Start and End are byte offsets into the sentence, when known.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// ExtractedEvent is a detected event with its validated arguments. An
// empty argument list is a legitimate state: the event node is still
// admitted so the narrative evidence survives extraction failure.
type ExtractedEvent struct {
	DetectedEvent `yaml:",inline"`

	Arguments []Argument `json:"arguments" yaml:"arguments"`
}
