package vectorindex

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/apiarylab/apiary-agent/ingestion"
)

// FileStore keeps the index in a single artifact file on disk. Builds write
// to a temporary path in the same directory and rename over the old
// artifact, so a concurrent search sees either the previous complete index
// or the new one. The decoded artifact is cached in memory and revalidated
// against the file's size and mtime on every search.
type FileStore struct {
	path      string
	dimension int

	mu       sync.RWMutex
	cached   *artifact
	cachedAt time.Time
	cachedSz int64
}

func NewFileStore(path string, dimension int) *FileStore {
	return &FileStore{path: path, dimension: dimension}
}

var _ SearchStore = (*FileStore)(nil)

func (s *FileStore) Build(_ context.Context, chunks []ingestion.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return fmt.Errorf("refusing to build an empty index")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := encodeArtifact(tmp, s.dimension, chunks, vectors); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("swap artifact: %w", err)
	}
	s.cached = nil
	return nil
}

func (s *FileStore) Search(_ context.Context, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	art, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(vector) != art.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, index has %d", len(vector), art.dimension)
	}

	order := make([]int, len(art.vectors))
	distances := make([]float64, len(art.vectors))
	for i, vec := range art.vectors {
		order[i] = i
		distances[i] = squaredL2(vector, vec)
	}

	// Stable sort keeps insertion order for equal distances.
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]Result, 0, k)
	for _, idx := range order[:k] {
		results = append(results, Result{
			Text:     art.chunks[idx].Text,
			Source:   art.chunks[idx].Source,
			Distance: math.Sqrt(distances[idx]),
		})
	}
	return results, nil
}

func (s *FileStore) IsValid(_ context.Context) bool {
	_, err := s.load()
	return err == nil
}

func (s *FileStore) Count(_ context.Context) (int, error) {
	art, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(art.chunks), nil
}

// load returns the decoded artifact, reusing the cache while the file on
// disk is unchanged. Any missing or undecodable artifact is reported as
// ErrIndexUnavailable.
func (s *FileStore) load() (*artifact, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	s.mu.RLock()
	if s.cached != nil && s.cachedAt.Equal(info.ModTime()) && s.cachedSz == info.Size() {
		art := s.cached
		s.mu.RUnlock()
		return art, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.cachedAt.Equal(info.ModTime()) && s.cachedSz == info.Size() {
		return s.cached, nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer file.Close()

	art, err := decodeArtifact(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if s.dimension > 0 && art.dimension != s.dimension {
		return nil, fmt.Errorf("%w: artifact dimension %d, configured %d", ErrIndexUnavailable, art.dimension, s.dimension)
	}

	s.cached = art
	s.cachedAt = info.ModTime()
	s.cachedSz = info.Size()
	return art, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
