// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunkstore persists corpus chunks in SQLite and serves
// lexical retrieval over an FTS5 index. The query layer uses it to pair
// graph matches with raw narrative passages.
package chunkstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/saga-engine/pkg/types"
)

const dbFile = "chunks.db"

// Store manages the chunk SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the chunk database at storeDir/chunks.db,
// creating the schema as needed.
func NewStore(cfg types.ChunkStoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.StoreDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.StoreDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 8
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL UNIQUE,
			parva TEXT,
			section TEXT,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_parva ON chunks(parva)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='chunks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE chunks_fts USING fts5(text, content=chunks, content_rowid=rowid)`,
			`CREATE TRIGGER chunks_ai AFTER INSERT ON chunks BEGIN
				INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER chunks_ad AFTER DELETE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER chunks_au AFTER UPDATE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a chunk ingestion run.
type IngestSummary struct {
	Stored  int
	Updated int
	Failed  int
}

// Total returns the number of chunks processed.
func (s IngestSummary) Total() int {
	return s.Stored + s.Updated + s.Failed
}

// Ingest stores the chunks, replacing rows whose chunk_id already
// exists. The whole batch runs in one transaction; progress goes to w.
func (s *Store) Ingest(ctx context.Context, chunks []types.Chunk, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (chunk_id, parva, section, text) VALUES (?, ?, ?, ?)
		 ON CONFLICT(chunk_id) DO UPDATE SET
			parva=excluded.parva, section=excluded.section, text=excluded.text`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if chunk.ChunkID == "" {
			fmt.Fprintf(w, "failed  chunk with empty chunk_id\n")
			summary.Failed++
			continue
		}

		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM chunks WHERE chunk_id = ?`, chunk.ChunkID,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking chunk %s: %w", chunk.ChunkID, err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ChunkID, chunk.Parva, chunk.Section, chunk.Text); err != nil {
			return summary, fmt.Errorf("inserting chunk %s: %w", chunk.ChunkID, err)
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Stored++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "stored: %d, updated: %d, failed: %d\n", summary.Stored, summary.Updated, summary.Failed)
	return summary, nil
}

// Retrieve runs an FTS5 match over the chunk texts and returns the top
// results by relevance rank. topK of zero uses the store default.
func (s *Store) Retrieve(ctx context.Context, question string, topK int) ([]types.Chunk, error) {
	if topK <= 0 {
		topK = s.maxResults
	}

	match := ftsQuery(question)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.chunk_id, c.parva, c.section, c.text
		 FROM chunks_fts
		 JOIN chunks c ON c.rowid = chunks_fts.rowid
		 WHERE chunks_fts MATCH ?
		 ORDER BY chunks_fts.rank
		 LIMIT ?`, match, topK)
	if err != nil {
		return nil, fmt.Errorf("querying chunk store: %w", err)
	}
	defer rows.Close()

	var results []types.Chunk
	for rows.Next() {
		var chunk types.Chunk
		if err := rows.Scan(&chunk.ChunkID, &chunk.Parva, &chunk.Section, &chunk.Text); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, chunk)
	}
	return results, rows.Err()
}

// Get returns one chunk by id.
func (s *Store) Get(ctx context.Context, chunkID string) (types.Chunk, error) {
	var chunk types.Chunk
	err := s.db.QueryRowContext(ctx,
		`SELECT chunk_id, parva, section, text FROM chunks WHERE chunk_id = ?`, chunkID,
	).Scan(&chunk.ChunkID, &chunk.Parva, &chunk.Section, &chunk.Text)
	if err == sql.ErrNoRows {
		return chunk, fmt.Errorf("chunk %s not found", chunkID)
	}
	if err != nil {
		return chunk, fmt.Errorf("looking up chunk: %w", err)
	}
	return chunk, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// ftsQuery sanitizes a natural-language question into an FTS5 OR query
// over its alphanumeric tokens. Raw questions contain punctuation FTS5
// treats as syntax, so every token is double-quoted.
func ftsQuery(question string) string {
	fields := strings.FieldsFunc(question, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	})
	var quoted []string
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " OR ")
}
