// Package reranker implements ports.Reranker: cross-encoder-style scoring
// of a query against a batch of candidate texts, used to reorder the
// hybrid search pipeline's fused candidates before the final result cut.
package reranker

import (
	"context"
	"hash/fnv"

	"github.com/dshills/codesearch/internal/coreerrors"
)

// HashReranker is a deterministic, offline reranker: it scores each
// (query, text) pair from a hash of their concatenation rather than a real
// cross-encoder model. It exists so the search pipeline's rerank stage
// runs with no model weights and no network access, for tests and for
// --mock-embeddings deployments.
//
// Scores are stable across process runs for the same inputs, but carry no
// actual semantic relevance signal.
type HashReranker struct {
	model string
}

// New returns a HashReranker.
func New() *HashReranker {
	return &HashReranker{model: "hash-reranker"}
}

// Rerank implements ports.Reranker.
func (r *HashReranker) Rerank(_ context.Context, query string, texts []string) ([]float64, error) {
	if query == "" {
		return nil, coreerrors.New(coreerrors.KindInvalidInput, "query must not be empty")
	}
	if len(texts) == 0 {
		return []float64{}, nil
	}

	scores := make([]float64, len(texts))
	for i, text := range texts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(query))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(text))
		scores[i] = float64(h.Sum64()%10000) / 10000.0
	}
	return scores, nil
}

// ModelName implements ports.Reranker.
func (r *HashReranker) ModelName() string {
	return r.model
}
