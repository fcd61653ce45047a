// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"context"
	"fmt"

	"github.com/pdiddy/saga-engine/pkg/types"
)

// ChunkRetriever abstracts lexical retrieval over the corpus chunk
// store so tests can supply a fake.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]types.Chunk, error)
}

// Evidence bundles graph matches with corpus passages for downstream
// answer synthesis.
type Evidence struct {
	Plan   types.QueryPlan   `json:"query_plan" yaml:"query_plan"`
	Result types.QueryResult `json:"result" yaml:"result"`
	Chunks []types.Chunk     `json:"chunks" yaml:"chunks"`
}

// EvidenceCollector pairs the graph executor with the chunk store:
// structured event matches from the graph, raw narrative passages from
// retrieval.
type EvidenceCollector struct {
	executor  *Executor
	retriever ChunkRetriever
	topK      int
}

// NewEvidenceCollector builds a collector. retriever may be nil, in
// which case evidence carries graph matches only.
func NewEvidenceCollector(executor *Executor, retriever ChunkRetriever, topK int) *EvidenceCollector {
	if topK <= 0 {
		topK = 8
	}
	return &EvidenceCollector{executor: executor, retriever: retriever, topK: topK}
}

// Collect executes the plan and attaches the top retrieved chunks.
func (c *EvidenceCollector) Collect(ctx context.Context, plan types.QueryPlan, question string) (Evidence, error) {
	result := c.executor.Execute(plan, question)

	ev := Evidence{Plan: plan, Result: result}
	if c.retriever == nil {
		return ev, nil
	}

	chunks, err := c.retriever.Retrieve(ctx, question, c.topK)
	if err != nil {
		return ev, fmt.Errorf("retrieving chunks: %w", err)
	}
	ev.Chunks = chunks
	return ev, nil
}
