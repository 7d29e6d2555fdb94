package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MockForcesLocal(t *testing.T) {
	emb, err := New(FactoryConfig{Provider: ProviderJina, JinaAPIKey: "key", Mock: true})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestNew_ExplicitProviderMissingKeyErrors(t *testing.T) {
	t.Setenv(EnvJinaAPIKey, "")
	_, err := New(FactoryConfig{Provider: ProviderJina})
	assert.Error(t, err)
}

func TestNew_AutoDetectFallsBackToLocal(t *testing.T) {
	emb, err := New(FactoryConfig{})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestNew_AutoDetectPrefersJinaKey(t *testing.T) {
	emb, err := New(FactoryConfig{JinaAPIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, ProviderJina, emb.Provider())
}

func TestNew_UnknownProviderErrors(t *testing.T) {
	_, err := New(FactoryConfig{Provider: "bogus"})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestDetectProvider(t *testing.T) {
	assert.Equal(t, ProviderLocal, DetectProvider(FactoryConfig{}))
	assert.Equal(t, ProviderLocal, DetectProvider(FactoryConfig{Mock: true, JinaAPIKey: "k"}))
	assert.Equal(t, ProviderJina, DetectProvider(FactoryConfig{JinaAPIKey: "k"}))
	assert.Equal(t, ProviderOpenAI, DetectProvider(FactoryConfig{OpenAIAPIKey: "k"}))
}
