package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetReturnsDeepCopy(t *testing.T) {
	c := NewCache(10)
	emb := &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3, Provider: ProviderLocal}
	c.Set("h1", emb)

	got, ok := c.Get("h1")
	require.True(t, ok)
	got.Vector[0] = 99

	got2, ok := c.Get("h1")
	require.True(t, ok)
	assert.Equal(t, float32(1), got2.Vector[0])
}

func TestCache_MissReturnsFalse(t *testing.T) {
	c := NewCache(10)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestComputeHash_Deterministic(t *testing.T) {
	assert.Equal(t, ComputeHash("foo"), ComputeHash("foo"))
	assert.NotEqual(t, ComputeHash("foo"), ComputeHash("bar"))
}

func TestValidateBatch(t *testing.T) {
	assert.Error(t, validateBatch(nil))
	assert.Error(t, validateBatch([]string{"a", ""}))
	assert.NoError(t, validateBatch([]string{"a", "b"}))
}
