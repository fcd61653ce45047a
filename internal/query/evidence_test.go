package query

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/saga-engine/pkg/types"
)

type fakeRetriever struct {
	chunks []types.Chunk
	err    error
	gotTop int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, topK int) ([]types.Chunk, error) {
	f.gotTop = topK
	return f.chunks, f.err
}

func TestCollectAttachesChunks(t *testing.T) {
	executor := NewExecutor(fixtureGraph(), 0)
	retriever := &fakeRetriever{chunks: []types.Chunk{{ChunkID: "c1", Text: "Arjuna slew Karna."}}}
	collector := NewEvidenceCollector(executor, retriever, 3)

	plan := types.QueryPlan{
		Intent:           types.IntentFact,
		SeedEntities:     []string{"karna"},
		TargetEventTypes: []string{"KILL"},
		TraversalDepth:   1,
	}
	ev, err := collector.Collect(context.Background(), plan, "Who killed Karna?")
	if err != nil {
		t.Fatal(err)
	}

	if !ev.Result.Found {
		t.Error("graph result missing from evidence")
	}
	if len(ev.Chunks) != 1 || ev.Chunks[0].ChunkID != "c1" {
		t.Errorf("chunks = %+v, want the retrieved passage", ev.Chunks)
	}
	if retriever.gotTop != 3 {
		t.Errorf("topK = %d, want 3", retriever.gotTop)
	}
}

func TestCollectWithoutRetriever(t *testing.T) {
	collector := NewEvidenceCollector(NewExecutor(fixtureGraph(), 0), nil, 0)

	ev, err := collector.Collect(context.Background(), types.QueryPlan{
		Intent:         types.IntentFact,
		SeedEntities:   []string{"karna"},
		TraversalDepth: 1,
	}, "Who killed Karna?")
	if err != nil {
		t.Fatal(err)
	}
	if len(ev.Chunks) != 0 {
		t.Errorf("chunks = %+v, want none without a retriever", ev.Chunks)
	}
	if !ev.Result.Found {
		t.Error("graph execution skipped without a retriever")
	}
}

func TestCollectRetrieverError(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("index offline")}
	collector := NewEvidenceCollector(NewExecutor(fixtureGraph(), 0), retriever, 0)

	_, err := collector.Collect(context.Background(), types.QueryPlan{
		Intent:         types.IntentFact,
		TraversalDepth: 1,
	}, "Who killed Karna?")
	if err == nil {
		t.Fatal("retriever failure not surfaced")
	}
}
