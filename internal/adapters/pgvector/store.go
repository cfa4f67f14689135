// Package pgvector provides a Postgres-backed vector store for deployments
// that outgrow the default file store. Requires the pgvector extension.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/lattice-ai/lattice/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS lattice_chunks (
	id          BIGSERIAL PRIMARY KEY,
	collection  TEXT NOT NULL,
	chunk_id    TEXT NOT NULL,
	content     TEXT NOT NULL,
	embedding   vector NOT NULL
);
CREATE INDEX IF NOT EXISTS lattice_chunks_collection_idx ON lattice_chunks (collection);
`

// Store implements ports.VectorStore on Postgres with pgvector. Add is
// transactional, so a collection becomes visible with all its chunks at once.
type Store struct {
	db *sql.DB
}

// New opens a connection pool and ensures the schema exists.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing connection pool. The schema must already exist.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of chunks in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM lattice_chunks WHERE collection = $1", collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

// Add inserts chunks with their vectors in a single transaction.
func (s *Store) Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO lattice_chunks (collection, chunk_id, content, embedding) VALUES ($1, $2, $3, $4)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, collection, c.ID, c.Text, pgv.NewVector(vectors[i])); err != nil {
			return fmt.Errorf("insert failed: %w", err)
		}
	}
	return tx.Commit()
}

// Query returns the topK nearest chunks by L2 distance, nearest first.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, topK int) ([]domain.DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT chunk_id, content FROM lattice_chunks WHERE collection = $1 ORDER BY embedding <-> $2 LIMIT $3",
		collection, pgv.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		if err := rows.Scan(&c.ID, &c.Text); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
