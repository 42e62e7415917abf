package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/helpdesk-ai/supportbot/internal/domain"
)

// VectorStore handles pgvector-specific operations for knowledge chunks.
// Chunks for a source are always replaced wholesale, never patched.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// ReplaceSource atomically replaces all chunks for a source. Passing no
// chunks removes the source.
func (v *VectorStore) ReplaceSource(ctx context.Context, source string, chunks []domain.Chunk) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source = $1`, source); err != nil {
		return fmt.Errorf("delete source chunks: %w", err)
	}

	if len(chunks) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO chunks (id, source, chunk_index, source_offset, content, vector)
			 VALUES ($1, $2, $3, $4, $5, $6::vector)`)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		for _, c := range chunks {
			if _, err := stmt.ExecContext(ctx,
				c.ID, c.Source, c.Index, c.SourceOffset, c.Text, vectorToString(c.Embedding),
			); err != nil {
				return fmt.Errorf("insert chunk: %w", err)
			}
		}
	}

	return tx.Commit()
}

// LoadAll returns every stored chunk ordered by source and position.
func (v *VectorStore) LoadAll(ctx context.Context) ([]domain.Chunk, error) {
	query := `SELECT id, source, chunk_index, source_offset, content, vector::text
	          FROM chunks ORDER BY source ASC, chunk_index ASC`

	rows, err := v.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var vec string
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.SourceOffset, &c.Text, &vec); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Embedding, err = vectorFromString(vec)
		if err != nil {
			return nil, fmt.Errorf("parse vector for chunk %s: %w", c.ID, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// vectorFromString parses the pgvector text format back into a slice.
func vectorFromString(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
