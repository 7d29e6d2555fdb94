package searcher

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codesearch/internal/coretypes"
	"github.com/dshills/codesearch/internal/ports"
	"github.com/dshills/codesearch/internal/storage"
)

// fakeStore returns fixed, pre-ranked leg results regardless of the query
// vector or text, so tests can assert fusion/filter/rerank behavior
// directly without a real database.
type fakeStore struct {
	vector []coretypes.SearchResult
	text   []coretypes.SearchResult
}

func (f *fakeStore) VectorSearch(_ context.Context, _ string, _ []float32, limit int, _ storage.SearchFilters) ([]coretypes.SearchResult, error) {
	return capResults(f.vector, limit), nil
}

func (f *fakeStore) TextSearch(_ context.Context, _, _ string, limit int, _ storage.SearchFilters) ([]coretypes.SearchResult, error) {
	return capResults(f.text, limit), nil
}

func capResults(rs []coretypes.SearchResult, limit int) []coretypes.SearchResult {
	if limit < len(rs) {
		return rs[:limit]
	}
	return rs
}

type fakeEmbedder struct{ dim int }

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}
func (e *fakeEmbedder) Dimension() int   { return e.dim }
func (e *fakeEmbedder) Provider() string { return "fake" }
func (e *fakeEmbedder) Model() string    { return "fake-v1" }

// fakeReranker returns scores from a caller-supplied lookup, defaulting
// to 0 for unlisted content, so tests can force a specific reorder.
type fakeReranker struct {
	scoreByContent map[string]float64
}

func (r *fakeReranker) Rerank(_ context.Context, _ string, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	for i, t := range texts {
		scores[i] = r.scoreByContent[t]
	}
	return scores, nil
}
func (r *fakeReranker) ModelName() string { return "fake-reranker" }

func chunk(id, content string) coretypes.Chunk {
	return coretypes.Chunk{ID: id, RepositoryID: "repo", FilePath: "f.go", StartLine: 1, EndLine: 1, Content: content}
}

func TestCandidateBudget_Floor(t *testing.T) {
	assert.Equal(t, 20, CandidateBudget(1))
	assert.Equal(t, 20, CandidateBudget(5))
}

func TestCandidateBudget_FormulaAboveFloor(t *testing.T) {
	// num=100: 100 + ceil(100/ln(100)) = 100 + ceil(21.7) = 122
	assert.Equal(t, 122, CandidateBudget(100))
}

func TestSearch_EmptyQueryErrors(t *testing.T) {
	s := New(&fakeStore{}, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())
	_, err := s.Search(context.Background(), "ns", coretypes.NewSearchQuery("   "))
	assert.Error(t, err)
}

func TestSearch_SemanticOnlyAppliesHardFloor(t *testing.T) {
	store := &fakeStore{
		vector: []coretypes.SearchResult{
			{Chunk: chunk("high", "func High() {}"), Score: 0.9},
			{Chunk: chunk("low", "func Low() {}"), Score: 0.05},
		},
	}
	s := New(store, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("query")
	q.TextSearchEnabled = false
	q.RerankEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "high", results[0].Chunk.ID)
}

func TestSearch_HybridBypassesHardFloor(t *testing.T) {
	// RRF scores for a single-leg hit at rank 1 are 1/61 =~ 0.0164, well
	// under the 0.1 semantic-only floor; the hybrid path must keep it.
	store := &fakeStore{
		vector: []coretypes.SearchResult{{Chunk: chunk("only", "func Only() {}"), Score: 0.9}},
	}
	s := New(store, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("query")
	q.RerankEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0/61.0, results[0].Score, 1e-9)
}

func TestSearch_RRFAccumulatesAcrossBothLegs(t *testing.T) {
	shared := chunk("shared", "func Shared() {}")
	store := &fakeStore{
		vector: []coretypes.SearchResult{{Chunk: shared, Score: 0.8}},
		text:   []coretypes.SearchResult{{Chunk: shared, Score: 0.5}},
	}
	s := New(store, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("shared query")
	q.RerankEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0/61.0+1.0/61.0, results[0].Score, 1e-9)
}

func TestSearch_MinScoreAppliesAfterFusion(t *testing.T) {
	store := &fakeStore{
		vector: []coretypes.SearchResult{
			{Chunk: chunk("a", "func A() {}"), Score: 0.9},
			{Chunk: chunk("b", "func B() {}"), Score: 0.1},
		},
	}
	s := New(store, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())

	min := 1.0 / 61.0 // the rank-1 RRF score; keep only results at or above it
	q := coretypes.NewSearchQuery("query")
	q.MinScore = &min
	q.RerankEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	// The text leg is empty and the vector leg ranks a and b 1 and 2, so
	// their fused scores are 1/61 and 1/62; b falls below min.
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func TestSearch_RerankReordersByScore(t *testing.T) {
	store := &fakeStore{
		vector: []coretypes.SearchResult{
			{Chunk: chunk("a", "func A() {}"), Score: 0.9},
			{Chunk: chunk("b", "func B() {}"), Score: 0.8},
		},
	}
	reranker := &fakeReranker{scoreByContent: map[string]float64{
		"func A() {}": 0.1,
		"func B() {}": 0.9,
	}}
	s := New(store, &fakeEmbedder{dim: 4}, reranker, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("query")
	q.TextSearchEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Chunk.ID)
	assert.Equal(t, "a", results[1].Chunk.ID)
}

func TestSearch_TruncatesToNum(t *testing.T) {
	var vector []coretypes.SearchResult
	for i := 0; i < 30; i++ {
		vector = append(vector, coretypes.SearchResult{Chunk: chunk(string(rune('a'+i)), "func F() {}"), Score: 1.0 - float64(i)*0.01})
	}
	store := &fakeStore{vector: vector}
	s := New(store, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("query")
	q.Num = 5
	q.TextSearchEnabled = false
	q.RerankEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestSearch_TiesBreakByChunkIDAscending(t *testing.T) {
	store := &fakeStore{
		vector: []coretypes.SearchResult{
			{Chunk: chunk("z", "func Z() {}"), Score: 0.5},
			{Chunk: chunk("a", "func A() {}"), Score: 0.5},
		},
	}
	s := New(store, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("query")
	q.TextSearchEnabled = false
	q.RerankEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "z", results[1].Chunk.ID)
}

func TestSearch_EmptyKeywordLegWhenAllStopWords(t *testing.T) {
	store := &fakeStore{
		vector: []coretypes.SearchResult{{Chunk: chunk("v", "func V() {}"), Score: 0.9}},
		text:   []coretypes.SearchResult{{Chunk: chunk("t", "func T() {}"), Score: 0.9}},
	}
	s := New(store, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())

	q := coretypes.NewSearchQuery("the a an")
	q.RerankEnabled = false

	results, err := s.Search(context.Background(), "ns", q)
	require.NoError(t, err)
	// text leg never queried since tokens is empty, so "t" cannot appear.
	for _, r := range results {
		assert.NotEqual(t, "t", r.Chunk.ID)
	}
}

func TestTokenize_LowercasesAndDropsStopWords(t *testing.T) {
	assert.Equal(t, []string{"validate", "email"}, tokenize("Validate THE Email"))
}

func TestTokenize_AllStopWordsYieldsEmpty(t *testing.T) {
	assert.Empty(t, tokenize("the a an"))
}

func TestIdentityExpanderDefault(t *testing.T) {
	s := New(&fakeStore{}, &fakeEmbedder{dim: 4}, &fakeReranker{}, nil, zerolog.Nop())
	assert.IsType(t, ports.IdentityExpander{}, s.expander)
}
