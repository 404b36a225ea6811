// Package indexer owns the administrative corpus operations: full rebuilds
// and document add/remove, each of which triggers a rebuild.
package indexer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/apiarylab/apiary-agent/embeddings"
	"github.com/apiarylab/apiary-agent/ingestion"
	"github.com/apiarylab/apiary-agent/vectorindex"
)

// Indexer rebuilds the vector index from the corpus directory. A mutex
// serializes rebuilds so two administrative triggers cannot interleave;
// searches are unaffected because the store swaps atomically.
type Indexer struct {
	dataDir   string
	ingestor  *ingestion.Ingestor
	embedder  embeddings.Embedder
	store     vectorindex.SearchStore
	batchSize int
	logger    *log.Logger

	rebuildMu sync.Mutex
}

func New(
	dataDir string,
	ingestor *ingestion.Ingestor,
	embedder embeddings.Embedder,
	store vectorindex.SearchStore,
	batchSize int,
	logger *log.Logger,
) *Indexer {
	if logger == nil {
		logger = log.Default()
	}
	return &Indexer{
		dataDir:   dataDir,
		ingestor:  ingestor,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Rebuild re-ingests the corpus, embeds every chunk and replaces the
// persisted index. On any failure, including an empty corpus, the previous
// index is left untouched. Returns the new chunk count.
func (ix *Indexer) Rebuild(ctx context.Context) (int, error) {
	ix.rebuildMu.Lock()
	defer ix.rebuildMu.Unlock()

	if err := os.MkdirAll(ix.dataDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure corpus directory: %w", err)
	}

	chunks, err := ix.ingestor.Scan(ix.dataDir)
	if err != nil {
		return 0, err
	}
	ix.logger.Printf("ingested %d chunks from %s", len(chunks), ix.dataDir)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := embeddings.EmbedAll(ctx, ix.embedder, texts, ix.batchSize)
	if err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}

	if err := ix.store.Build(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}

	ix.logger.Printf("index rebuilt with %d chunks", len(chunks))
	return len(chunks), nil
}

// AddDocument stores an uploaded file in the corpus directory and rebuilds.
// Only supported formats are accepted. Returns the new chunk count.
func (ix *Indexer) AddDocument(ctx context.Context, name string, content io.Reader) (int, error) {
	name = filepath.Base(name)
	if ingestion.DetectFormat(name) == ingestion.FormatUnknown {
		return 0, fmt.Errorf("%w: %s", ingestion.ErrUnsupportedFormat, name)
	}

	if err := os.MkdirAll(ix.dataDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure corpus directory: %w", err)
	}

	path := filepath.Join(ix.dataDir, name)
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create document: %w", err)
	}
	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		os.Remove(path)
		return 0, fmt.Errorf("write document: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("close document: %w", err)
	}

	return ix.Rebuild(ctx)
}

// RemoveDocument deletes a corpus file and rebuilds. Removing the last
// document surfaces ErrEmptyCorpus from the rebuild; the file is still gone
// and the previous index stays in place until documents are added again.
func (ix *Indexer) RemoveDocument(ctx context.Context, name string) (int, error) {
	name = filepath.Base(name)
	path := filepath.Join(ix.dataDir, name)
	if err := os.Remove(path); err != nil {
		return 0, fmt.Errorf("remove document: %w", err)
	}
	return ix.Rebuild(ctx)
}

// ListDocuments returns the supported files currently in the corpus
// directory, sorted by name.
func (ix *Indexer) ListDocuments() ([]string, error) {
	entries, err := os.ReadDir(ix.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ingestion.DetectFormat(entry.Name()) == ingestion.FormatUnknown {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
