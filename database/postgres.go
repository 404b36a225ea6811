// Package database provides the Postgres connection pool and schema used by
// the pgvector-backed index store.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return pool, nil
}

// EnsureChunkSchema creates the chunk index table. The position column
// mirrors the file artifact's insertion order and breaks distance ties.
func EnsureChunkSchema(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS apiary_chunks (
			id UUID PRIMARY KEY,
			position INT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimension),
		"CREATE INDEX IF NOT EXISTS idx_apiary_chunks_position ON apiary_chunks(position)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
