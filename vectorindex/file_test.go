package vectorindex

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/apiarylab/apiary-agent/ingestion"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "index.bin"), 3)
}

func testChunks(n int) []ingestion.Chunk {
	chunks := make([]ingestion.Chunk, n)
	for i := range chunks {
		chunks[i] = ingestion.Chunk{
			Text:   "chunk " + string(rune('a'+i)),
			Source: "doc.txt",
		}
	}
	return chunks
}

func TestFileStoreUnavailableBeforeBuild(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if store.IsValid(ctx) {
		t.Fatal("store must be invalid before any build")
	}
	if _, err := store.Search(ctx, []float32{0, 0, 0}, 3); !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestFileStoreSearchOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunks := testChunks(4)
	vectors := [][]float32{
		{10, 0, 0}, // distance 10
		{1, 0, 0},  // distance 1
		{5, 0, 0},  // distance 5
		{0, 1, 0},  // distance 1, ties with vector 1
	}
	if err := store.Build(ctx, chunks, vectors); err != nil {
		t.Fatalf("build: %v", err)
	}

	results, err := store.Search(ctx, []float32{0, 0, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Vectors 1 and 3 tie at distance 1; insertion order breaks the tie.
	if results[0].Text != chunks[1].Text {
		t.Fatalf("expected %q first, got %q", chunks[1].Text, results[0].Text)
	}
	if results[1].Text != chunks[3].Text {
		t.Fatalf("expected %q second, got %q", chunks[3].Text, results[1].Text)
	}
	if results[2].Text != chunks[2].Text {
		t.Fatalf("expected %q third, got %q", chunks[2].Text, results[2].Text)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatal("results must be ordered by non-decreasing distance")
		}
	}
}

func TestFileStoreSearchBoundsK(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunks := testChunks(2)
	vectors := [][]float32{{1, 0, 0}, {2, 0, 0}}
	if err := store.Build(ctx, chunks, vectors); err != nil {
		t.Fatalf("build: %v", err)
	}

	results, err := store.Search(ctx, []float32{0, 0, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected all 2 chunks when k exceeds corpus, got %d", len(results))
	}
}

func TestFileStoreRebuildReplacesIndex(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Build(ctx, testChunks(2), [][]float32{{1, 0, 0}, {2, 0, 0}}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if count, err := store.Count(ctx); err != nil || count != 2 {
		t.Fatalf("expected count 2, got %d (%v)", count, err)
	}

	if err := store.Build(ctx, testChunks(3), [][]float32{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}}); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if count, err := store.Count(ctx); err != nil || count != 3 {
		t.Fatalf("expected count 3 after rebuild, got %d (%v)", count, err)
	}
	if !store.IsValid(ctx) {
		t.Fatal("store must be valid after rebuild")
	}
}

func TestFileStoreRejectsMismatchedInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Build(ctx, testChunks(2), [][]float32{{1, 0, 0}}); err == nil {
		t.Fatal("expected error for chunk/vector count mismatch")
	}
	if err := store.Build(ctx, testChunks(1), [][]float32{{1, 0}}); err == nil {
		t.Fatal("expected error for wrong vector dimension")
	}
	if err := store.Build(ctx, nil, nil); err == nil {
		t.Fatal("expected error for empty build")
	}
}

func TestFileStoreCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, []byte("garbage artifact contents"), 0o644); err != nil {
		t.Fatalf("write corrupt artifact: %v", err)
	}

	store := NewFileStore(path, 3)
	if store.IsValid(context.Background()) {
		t.Fatal("corrupt artifact must not validate")
	}
	if _, err := store.Search(context.Background(), []float32{0, 0, 0}, 1); !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable for corrupt artifact, got %v", err)
	}
}

func TestFileStoreOversizedHeaderCount(t *testing.T) {
	// A valid header whose claimed record count vastly exceeds what the file
	// can hold. Decoding must reject it from the header alone instead of
	// allocating room for fifty million vectors.
	var buf bytes.Buffer
	buf.Write(artifactMagic[:])
	binary.Write(&buf, binary.LittleEndian, artifactVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(8))        // dimension
	binary.Write(&buf, binary.LittleEndian, uint32(50000000)) // count

	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	store := NewFileStore(path, 8)
	if store.IsValid(context.Background()) {
		t.Fatal("artifact claiming more records than it holds must not validate")
	}
	if _, err := store.Search(context.Background(), make([]float32, 8), 1); !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestFileStoreOversizedHeaderDimension(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(artifactMagic[:])
	binary.Write(&buf, binary.LittleEndian, artifactVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(1<<30)) // dimension
	binary.Write(&buf, binary.LittleEndian, uint32(1<<30)) // count

	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	store := NewFileStore(path, 0)
	if _, err := store.Search(context.Background(), []float32{0}, 1); !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestFileStoreSearchDuringRebuild(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	oldChunks := []ingestion.Chunk{
		{Text: "old a", Source: "old.txt"},
		{Text: "old b", Source: "old.txt"},
	}
	newChunks := []ingestion.Chunk{
		{Text: "new a", Source: "new.txt"},
		{Text: "new b", Source: "new.txt"},
		{Text: "new c", Source: "new.txt"},
	}
	oldVectors := [][]float32{{1, 0, 0}, {2, 0, 0}}
	newVectors := [][]float32{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}}

	if err := store.Build(ctx, oldChunks, oldVectors); err != nil {
		t.Fatalf("initial build: %v", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				results, err := store.Search(ctx, []float32{0, 0, 0}, 10)
				if err != nil {
					t.Errorf("search during rebuild: %v", err)
					return
				}
				// Every observation is one complete index: all hits from the
				// same corpus, with that corpus's full chunk count.
				source := results[0].Source
				switch source {
				case "old.txt":
					if len(results) != len(oldChunks) {
						t.Errorf("old index observed with %d chunks, want %d", len(results), len(oldChunks))
						return
					}
				case "new.txt":
					if len(results) != len(newChunks) {
						t.Errorf("new index observed with %d chunks, want %d", len(results), len(newChunks))
						return
					}
				default:
					t.Errorf("unexpected source %q", source)
					return
				}
				for _, result := range results {
					if result.Source != source {
						t.Errorf("mixed sources in one search: %q and %q", source, result.Source)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 25; i++ {
		chunks, vectors := newChunks, newVectors
		if i%2 == 1 {
			chunks, vectors = oldChunks, oldVectors
		}
		if err := store.Build(ctx, chunks, vectors); err != nil {
			t.Fatalf("rebuild %d: %v", i, err)
		}
	}
	close(done)
	wg.Wait()
}

func TestFileStoreQueryDimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Build(ctx, testChunks(1), [][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := store.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Fatal("expected error for query dimension mismatch")
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	ctx := context.Background()

	writer := NewFileStore(path, 3)
	chunks := []ingestion.Chunk{
		{Text: "wintering advice", Source: "winter.txt"},
		{Text: "feeding schedule", Source: "feed.txt"},
	}
	if err := writer.Build(ctx, chunks, [][]float32{{1, 0, 0}, {0, 2, 0}}); err != nil {
		t.Fatalf("build: %v", err)
	}

	reader := NewFileStore(path, 3)
	results, err := reader.Search(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("search on fresh instance: %v", err)
	}
	if results[0].Text != "wintering advice" || results[0].Source != "winter.txt" {
		t.Fatalf("unexpected result %+v", results[0])
	}
}
