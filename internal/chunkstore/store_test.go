package chunkstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/saga-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.ChunkStoreConfig{StoreDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleCorpus() []types.Chunk {
	return []types.Chunk{
		{ChunkID: "chunk_0001", Parva: "Karna Parva", Section: "Section 91",
			Text: "Then Arjuna slew Karna with a fierce arrow from Gandiva."},
		{ChunkID: "chunk_0002", Parva: "Drona Parva", Section: "Section 7",
			Text: "Drona commanded the host at Kurukshetra."},
		{ChunkID: "chunk_0003", Parva: "Adi Parva", Section: "Section 1",
			Text: "The sages assembled in the forest of Naimisha."},
	}
}

func TestIngestAndCount(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	var out bytes.Buffer
	summary, err := store.Ingest(ctx, sampleCorpus(), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Stored)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Failed)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Contains(t, out.String(), "stored: 3")
}

func TestIngestUpdatesExisting(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	var out bytes.Buffer
	_, err := store.Ingest(ctx, sampleCorpus(), &out)
	require.NoError(t, err)

	changed := sampleCorpus()
	changed[0].Text = "Then Arjuna slew Karna at last."
	summary, err := store.Ingest(ctx, changed, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Stored)
	assert.Equal(t, 3, summary.Updated)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "re-ingest must not duplicate rows")

	chunk, err := store.Get(ctx, "chunk_0001")
	require.NoError(t, err)
	assert.Equal(t, "Then Arjuna slew Karna at last.", chunk.Text)
}

func TestIngestRejectsEmptyChunkID(t *testing.T) {
	store := testStore(t)

	var out bytes.Buffer
	summary, err := store.Ingest(context.Background(), []types.Chunk{{Text: "no id"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Stored)
}

func TestRetrieve(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	var out bytes.Buffer
	_, err := store.Ingest(ctx, sampleCorpus(), &out)
	require.NoError(t, err)

	results, err := store.Retrieve(ctx, "Who killed Karna?", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "chunk_0001", results[0].ChunkID)
	assert.Equal(t, "Karna Parva", results[0].Parva)

	// Punctuation-heavy questions must not break the FTS syntax.
	_, err = store.Retrieve(ctx, `"why?" (and--how!) Karna's fate:`, 5)
	require.NoError(t, err)

	// A query with no indexable tokens returns nothing.
	results, err = store.Retrieve(ctx, "?!", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveHonorsLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	var out bytes.Buffer
	_, err := store.Ingest(ctx, sampleCorpus(), &out)
	require.NoError(t, err)

	results, err := store.Retrieve(ctx, "Parva host forest Karna Drona sages", 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 1)
}

func TestGetMissingChunk(t *testing.T) {
	store := testStore(t)

	_, err := store.Get(context.Background(), "chunk_9999")
	assert.Error(t, err)
}

func TestStoreReopens(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ChunkStoreConfig{StoreDir: dir}

	store, err := NewStore(cfg)
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = store.Ingest(context.Background(), sampleCorpus(), &out)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening finds the existing schema and data.
	store, err = NewStore(cfg)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
