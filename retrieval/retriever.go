// Package retrieval turns an in-domain question into the bounded set of
// grounding chunks handed to the language model.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/apiarylab/apiary-agent/domain"
	"github.com/apiarylab/apiary-agent/embeddings"
	"github.com/apiarylab/apiary-agent/llm"
	"github.com/apiarylab/apiary-agent/vectorindex"
)

const defaultTopK = 8

// ErrNoContext reports that an in-domain question found nothing in the
// corpus after filtering. Callers surface this differently from an
// out-of-domain rejection.
var ErrNoContext = errors.New("no grounding context found")

// langNames maps a language code to the name used in translation prompts.
var langNames = map[string]string{
	"uz": "Uzbek",
	"ru": "Russian",
	"en": "English",
}

// Retriever runs the search pipeline: embed the question (optionally
// expanded into the other supported languages), query the index per vector,
// re-filter every hit through the domain gate, dedupe and truncate.
type Retriever struct {
	store      vectorindex.SearchStore
	embedder   embeddings.Embedder
	classifier *domain.Classifier
	translator llm.Client
	topK       int
	logger     *log.Logger
}

// NewRetriever wires the pipeline. translator may be nil, which disables
// query expansion entirely.
func NewRetriever(
	store vectorindex.SearchStore,
	embedder embeddings.Embedder,
	classifier *domain.Classifier,
	translator llm.Client,
	topK int,
	logger *log.Logger,
) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Retriever{
		store:      store,
		embedder:   embedder,
		classifier: classifier,
		translator: translator,
		topK:       topK,
		logger:     logger,
	}
}

// Retrieve returns up to topK unique in-domain chunks for the question, in
// first-seen rank order. lang is the question's detected language code and
// drives which translations are attempted. Returns ErrNoContext when the
// filtered result set is empty and passes vectorindex.ErrIndexUnavailable
// through unchanged.
func (r *Retriever) Retrieve(ctx context.Context, question, lang string) ([]vectorindex.Result, error) {
	queries := r.expandQueries(ctx, question, lang)

	vectors, err := r.embedder.Embed(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != len(queries) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d queries", len(vectors), len(queries))
	}

	seen := make(map[string]struct{})
	results := make([]vectorindex.Result, 0, r.topK)
	for _, vector := range vectors {
		hits, err := r.store.Search(ctx, vector, r.topK)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			// Vector similarity can surface adjacent but off-topic text;
			// the gate is exact and cheap, so every hit passes it again.
			if !r.classifier.IsInDomain(hit.Text) {
				continue
			}
			if _, ok := seen[hit.Text]; ok {
				continue
			}
			seen[hit.Text] = struct{}{}
			results = append(results, hit)
		}
	}

	if len(results) == 0 {
		return nil, ErrNoContext
	}
	if len(results) > r.topK {
		results = results[:r.topK]
	}
	return results, nil
}

// expandQueries returns the original question plus translations into the
// other supported languages. Translation failures are logged and skipped;
// the original-language query always survives.
func (r *Retriever) expandQueries(ctx context.Context, question, lang string) []string {
	queries := []string{question}
	if r.translator == nil {
		return queries
	}

	for _, code := range []string{"uz", "ru", "en"} {
		if code == lang {
			continue
		}
		translated, err := llm.Translate(ctx, r.translator, question, langNames[code])
		if err != nil {
			r.logger.Printf("query expansion to %s skipped: %v", code, err)
			continue
		}
		if translated == question {
			continue
		}
		queries = append(queries, translated)
	}
	return queries
}
