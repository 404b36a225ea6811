// Package vectorindex builds, persists and searches the nearest-neighbor
// index over chunk embeddings. Two backends exist: a single-file artifact
// with exact L2 search, and a pgvector-backed Postgres table. Both guarantee
// that readers only ever observe a complete index: the file backend swaps via
// rename, the Postgres backend rebuilds inside one transaction.
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/apiarylab/apiary-agent/config"
	"github.com/apiarylab/apiary-agent/database"
	"github.com/apiarylab/apiary-agent/ingestion"
)

// ErrIndexUnavailable reports a search against a missing or invalid index.
// Distinct from an empty result: the caller has to tell "no index yet" apart
// from "no relevant hits".
var ErrIndexUnavailable = errors.New("vector index unavailable")

// Result is one search hit, closest first.
type Result struct {
	Text     string
	Source   string
	Distance float64
}

// SearchStore is the contract between rebuilds and queries. Build replaces
// the whole index and its chunk metadata together; position i of the vector
// set always corresponds to chunk i.
type SearchStore interface {
	// Build replaces the persisted index with a fresh one over the given
	// chunks and their vectors, atomically from the reader's perspective.
	Build(ctx context.Context, chunks []ingestion.Chunk, vectors [][]float32) error
	// Search returns up to k chunks ordered by non-decreasing L2 distance,
	// ties broken by insertion order. Returns ErrIndexUnavailable when no
	// valid index exists.
	Search(ctx context.Context, vector []float32, k int) ([]Result, error)
	// IsValid reports whether a complete, sane index is available.
	IsValid(ctx context.Context) bool
	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)
}

// NewStore selects the backend configured by VECTOR_STORE.
func NewStore(ctx context.Context, cfg config.Config) (SearchStore, error) {
	switch cfg.VectorStore {
	case config.StoreFile:
		return NewFileStore(cfg.IndexPath, cfg.Embeddings.Dimension), nil
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connection: %w", err)
		}
		if err := database.EnsureChunkSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown vector store backend: %s", cfg.VectorStore)
	}
}
