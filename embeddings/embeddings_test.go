package embeddings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubEmbedder struct {
	batches [][]string
	failAt  int // fail on the nth call (1-based), 0 disables
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return nil, errors.New("gateway unavailable")
	}
	s.batches = append(s.batches, texts)
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 2, 3}
	}
	return vectors, nil
}

var _ Embedder = (*stubEmbedder)(nil)

func makeTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = "text"
	}
	return texts
}

func TestEmbedAllBatches(t *testing.T) {
	stub := &stubEmbedder{}

	vectors, err := EmbedAll(context.Background(), stub, makeTexts(70), 32)
	if err != nil {
		t.Fatalf("embed all: %v", err)
	}
	if len(vectors) != 70 {
		t.Fatalf("expected 70 vectors, got %d", len(vectors))
	}
	if len(stub.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(stub.batches))
	}
	if len(stub.batches[0]) != 32 || len(stub.batches[1]) != 32 || len(stub.batches[2]) != 6 {
		t.Fatalf("unexpected batch sizes: %d, %d, %d",
			len(stub.batches[0]), len(stub.batches[1]), len(stub.batches[2]))
	}
}

func TestEmbedAllAbortsOnFailedBatch(t *testing.T) {
	stub := &stubEmbedder{failAt: 2}

	vectors, err := EmbedAll(context.Background(), stub, makeTexts(70), 32)
	if err == nil {
		t.Fatal("expected error from failed batch")
	}
	if vectors != nil {
		t.Fatal("a failed batch must not yield partial vectors")
	}
}

func TestOllamaEmbedderSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"nomodel\" not found"}`))
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(Options{
		Provider:   "ollama",
		Model:      "nomodel",
		OllamaHost: server.URL,
	})

	_, err := embedder.Embed(context.Background(), []string{"some text"})
	if err == nil {
		t.Fatal("expected error from API failure response")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("error must carry the API's message, got %q", err.Error())
	}
}

func TestOllamaEmbedderDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":[0.5,-0.25,1]}`))
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(Options{
		Provider:   "ollama",
		Model:      "m",
		Dimension:  3,
		OllamaHost: server.URL,
	})

	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 0.5 || vectors[0][1] != -0.25 || vectors[0][2] != 1 {
		t.Fatalf("unexpected vector %v", vectors[0])
	}
}

func TestEmbedAllEmptyInput(t *testing.T) {
	stub := &stubEmbedder{}

	vectors, err := EmbedAll(context.Background(), stub, nil, 32)
	if err != nil {
		t.Fatalf("embed all: %v", err)
	}
	if len(vectors) != 0 {
		t.Fatalf("expected no vectors, got %d", len(vectors))
	}
	if stub.calls != 0 {
		t.Fatalf("expected no gateway calls for empty input, got %d", stub.calls)
	}
}
