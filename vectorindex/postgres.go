package vectorindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/apiarylab/apiary-agent/ingestion"
)

// PostgresStore keeps the index in a pgvector table. A rebuild deletes and
// reinserts every row inside one transaction, so concurrent searches see the
// old or the new index, never a mix.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ SearchStore = (*PostgresStore)(nil)

func (s *PostgresStore) Build(ctx context.Context, chunks []ingestion.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return fmt.Errorf("refusing to build an empty index")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM apiary_chunks"); err != nil {
		return fmt.Errorf("clear existing chunks: %w", err)
	}

	for idx, chunk := range chunks {
		if _, err := tx.Exec(ctx, `
			INSERT INTO apiary_chunks (id, position, source, content, embedding)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), idx, chunk.Source, chunk.Text, pgvector.NewVector(vectors[idx])); err != nil {
			return fmt.Errorf("insert chunk %d: %w", idx, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: chunk table is empty", ErrIndexUnavailable)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT content, source, (embedding <-> $1::vector) AS distance
		FROM apiary_chunks
		ORDER BY embedding <-> $1::vector, position
		LIMIT $2
	`, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0, k)
	for rows.Next() {
		var item Result
		if err := rows.Scan(&item.Text, &item.Source, &item.Distance); err != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", err)
		}
		results = append(results, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return results, nil
}

func (s *PostgresStore) IsValid(ctx context.Context) bool {
	count, err := s.Count(ctx)
	return err == nil && count > 0
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM apiary_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}
