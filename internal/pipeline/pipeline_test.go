package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/saga-engine/pkg/types"
)

func writeChunks(t *testing.T, dir string, chunks []types.Chunk) string {
	t.Helper()
	var buf bytes.Buffer
	for _, c := range chunks {
		data, err := json.Marshal(c)
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	path := filepath.Join(dir, "chunks.jsonl")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T, chunks []types.Chunk) types.PipelineConfig {
	t.Helper()
	dir := t.TempDir()
	return types.PipelineConfig{
		ChunksPath: writeChunks(t, dir, chunks),
		GraphDir:   filepath.Join(dir, "graph"),
		Meso:       types.DefaultMesoConfig(),
		Alias:      types.DefaultAliasConfig(),
	}
}

func sampleChunks() []types.Chunk {
	return []types.Chunk{
		{
			ChunkID: "chunk_0001", Parva: "Karna Parva", Section: "Section 91",
			Text: "Then Arjuna slew Karna with a fierce arrow. The hosts fought at Kurukshetra. Arjuna vowed vengeance upon the Kauravas.",
		},
		{
			ChunkID: "chunk_0002", Parva: "Drona Parva", Section: "Section 7",
			Text: "Drona commanded Karna to hold the line. In that battle Bhima struck down many warriors of the Kaurava host.",
		},
	}
}

func TestLoadChunks(t *testing.T) {
	dir := t.TempDir()
	path := writeChunks(t, dir, sampleChunks())

	chunks, err := LoadChunks(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("loaded %d chunks, want 2", len(chunks))
	}
	if chunks[0].ChunkID != "chunk_0001" || chunks[1].Parva != "Drona Parva" {
		t.Errorf("chunks misparsed: %+v", chunks)
	}
}

func TestLoadChunksMalformedLineFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.jsonl")
	content := `{"chunk_id":"c1","parva":"p","section":"s","text":"t"}` + "\nnot json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadChunks(path); err == nil {
		t.Fatal("malformed line did not fail the load")
	}
}

func TestLoadChunksMissingFileFatal(t *testing.T) {
	if _, err := LoadChunks(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("missing chunks file did not fail")
	}
}

func TestBuildEndToEnd(t *testing.T) {
	cfg := testConfig(t, sampleChunks())

	var out bytes.Buffer
	g, summary, err := Build(cfg, false, &out)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Chunks != 2 {
		t.Errorf("chunks = %d, want 2", summary.Chunks)
	}
	if summary.EventsDetected == 0 || summary.EventsAdmitted == 0 {
		t.Fatalf("no events made it through: %+v", summary)
	}
	if summary.EventsAdmitted != summary.EventsDetected {
		t.Errorf("admitted %d of %d detected events; detection output must be admitted in full",
			summary.EventsAdmitted, summary.EventsDetected)
	}
	if g.EntityCount() == 0 || g.EdgeCount() == 0 {
		t.Error("graph has no entities or edges")
	}

	// Arjuna appears in two chunks and survives support pruning.
	if g.Registry.Get("person_arjuna") == nil {
		t.Error("person_arjuna missing from built graph")
	}

	for _, name := range []string{"entities.json", "events.json", "edges.json", "graph_stats.json", "validation_report.json"} {
		if _, err := os.Stat(filepath.Join(cfg.GraphDir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "saved graph") {
		t.Errorf("progress output missing save line:\n%s", out.String())
	}
}

func TestBuildSkipsWhenCurrent(t *testing.T) {
	cfg := testConfig(t, sampleChunks())

	var out bytes.Buffer
	if _, _, err := Build(cfg, false, &out); err != nil {
		t.Fatal(err)
	}

	// Second run without force loads the persisted graph instead of
	// rebuilding.
	out.Reset()
	g, summary, err := Build(cfg, false, &out)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Chunks != 0 {
		t.Errorf("skipped build still processed %d chunks", summary.Chunks)
	}
	if g.EventCount() == 0 {
		t.Error("skipped build returned an empty graph")
	}
	if !strings.Contains(out.String(), "skipping build") {
		t.Errorf("skip not reported:\n%s", out.String())
	}

	// Force rebuilds regardless.
	out.Reset()
	if _, summary, err = Build(cfg, true, &out); err != nil {
		t.Fatal(err)
	}
	if summary.Chunks != 2 {
		t.Errorf("forced build processed %d chunks, want 2", summary.Chunks)
	}
}

func TestBuildMissingChunksFatal(t *testing.T) {
	cfg := types.PipelineConfig{
		ChunksPath: filepath.Join(t.TempDir(), "absent.jsonl"),
		GraphDir:   t.TempDir(),
		Meso:       types.DefaultMesoConfig(),
		Alias:      types.DefaultAliasConfig(),
	}
	var out bytes.Buffer
	if _, _, err := Build(cfg, false, &out); err == nil {
		t.Fatal("missing chunks file did not fail the build")
	}
}
