package searcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dshills/codesearch/internal/coretypes"
)

// BenchmarkSearch_Hybrid measures the full pipeline (both legs, RRF fusion,
// rerank) against an in-memory candidate set, isolating pipeline overhead
// from actual database or model latency.
func BenchmarkSearch_Hybrid(b *testing.B) {
	var vector, text []coretypes.SearchResult
	for i := 0; i < 200; i++ {
		c := chunk(fmt.Sprintf("chunk-%04d", i), fmt.Sprintf("func Func%d() {}", i))
		vector = append(vector, coretypes.SearchResult{Chunk: c, Score: 1.0 - float64(i)*0.001})
		if i%2 == 0 {
			text = append(text, coretypes.SearchResult{Chunk: c, Score: 1.0 - float64(i)*0.001})
		}
	}
	store := &fakeStore{vector: vector, text: text}
	s := New(store, &fakeEmbedder{dim: 384}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("benchmark query terms")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := s.Search(context.Background(), "bench", q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSearch_SemanticOnly measures the non-hybrid path.
func BenchmarkSearch_SemanticOnly(b *testing.B) {
	var vector []coretypes.SearchResult
	for i := 0; i < 200; i++ {
		vector = append(vector, coretypes.SearchResult{
			Chunk: chunk(fmt.Sprintf("chunk-%04d", i), fmt.Sprintf("func Func%d() {}", i)),
			Score: 1.0 - float64(i)*0.001,
		})
	}
	store := &fakeStore{vector: vector}
	s := New(store, &fakeEmbedder{dim: 384}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("benchmark query terms")
	q.TextSearchEnabled = false

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := s.Search(context.Background(), "bench", q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCandidateBudget measures the candidate-budget formula itself.
func BenchmarkCandidateBudget(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CandidateBudget(50)
	}
}
