package reranker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerank_DeterministicAcrossCalls(t *testing.T) {
	r := New()
	texts := []string{"func Foo() {}", "func Bar() {}"}

	s1, err := r.Rerank(context.Background(), "query", texts)
	require.NoError(t, err)
	s2, err := r.Rerank(context.Background(), "query", texts)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
}

func TestRerank_PreservesOrderAndLength(t *testing.T) {
	r := New()
	texts := []string{"a", "b", "c"}
	scores, err := r.Rerank(context.Background(), "q", texts)
	require.NoError(t, err)
	assert.Len(t, scores, 3)
}

func TestRerank_EmptyTextsReturnsEmpty(t *testing.T) {
	r := New()
	scores, err := r.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestRerank_EmptyQueryErrors(t *testing.T) {
	r := New()
	_, err := r.Rerank(context.Background(), "", []string{"a"})
	assert.Error(t, err)
}

func TestModelName(t *testing.T) {
	assert.NotEmpty(t, New().ModelName())
}
