package ingestion

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/apiarylab/apiary-agent/domain"
)

const (
	defaultChunkSize = 1000
	defaultMinChars  = 50
)

// ErrEmptyCorpus reports that the corpus directory produced zero qualifying
// chunks. Rebuilds must treat this as an abort, not as a valid empty index.
var ErrEmptyCorpus = errors.New("corpus produced no qualifying chunks")

// Chunk is one indexable unit of text together with its source file name.
type Chunk struct {
	Text   string
	Source string
}

// Ingestor scans a corpus directory and produces the ordered chunk set.
type Ingestor struct {
	classifier *domain.Classifier
	chunkSize  int
	minChars   int
	logger     *log.Logger
}

func NewIngestor(classifier *domain.Classifier, chunkSize, minChars int, logger *log.Logger) *Ingestor {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if minChars <= 0 {
		minChars = defaultMinChars
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Ingestor{
		classifier: classifier,
		chunkSize:  chunkSize,
		minChars:   minChars,
		logger:     logger,
	}
}

// Scan reads every supported file in dir and returns the retained chunks.
// Files iterate in name order and windows in document order, so repeated
// scans of an unchanged directory yield the identical chunk sequence; that
// sequence becomes the index position ordering. Unreadable files are logged
// and skipped. A scan retaining nothing returns ErrEmptyCorpus.
func (ing *Ingestor) Scan(dir string) ([]Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	var chunks []Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if DetectFormat(entry.Name()) == FormatUnknown {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		text, err := ExtractText(path)
		if err != nil {
			ing.logger.Printf("skip %s: %v", entry.Name(), err)
			continue
		}

		for _, window := range SplitWindows(text, ing.chunkSize) {
			trimmed := strings.TrimSpace(window)
			if len([]rune(trimmed)) <= ing.minChars {
				continue
			}
			if !ing.classifier.IsInDomain(trimmed) {
				continue
			}
			chunks = append(chunks, Chunk{Text: trimmed, Source: entry.Name()})
		}
	}

	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}
	return chunks, nil
}

// SplitWindows cuts text into fixed-size, non-overlapping character windows.
// The final window may be shorter. Splitting is by runes so multi-byte
// scripts are never cut mid-character.
func SplitWindows(text string, size int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	windows := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}
