package embedder

import (
	"fmt"
	"strings"

	"github.com/dshills/codesearch/internal/ports"
)

// FactoryConfig selects and configures an embedder adapter.
type FactoryConfig struct {
	Provider     string
	JinaAPIKey   string
	OpenAIAPIKey string
	CacheSize    int
	Mock         bool
}

// New builds a ports.Embedder from cfg. Provider selection order:
//
//  1. cfg.Mock forces the local provider, regardless of everything else.
//  2. cfg.Provider, if set, picks the adapter explicitly.
//  3. Otherwise, auto-detect from whichever API key is present.
//  4. Falls back to the local provider when nothing else applies.
func New(cfg FactoryConfig) (ports.Embedder, error) {
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 10000
	}
	cache := NewCache(cacheSize)

	if cfg.Mock {
		return NewLocalProvider(cache)
	}

	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderJina:
		return NewJinaProvider(cfg.JinaAPIKey, cache)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	case "":
		// fall through to auto-detection
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}

	if cfg.JinaAPIKey != "" {
		return NewJinaProvider(cfg.JinaAPIKey, cache)
	}
	if cfg.OpenAIAPIKey != "" {
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cache)
	}
	return NewLocalProvider(cache)
}

// DetectProvider returns the provider name that New would select for cfg,
// without constructing anything.
func DetectProvider(cfg FactoryConfig) string {
	if cfg.Mock {
		return ProviderLocal
	}
	if cfg.Provider != "" {
		return strings.ToLower(cfg.Provider)
	}
	if cfg.JinaAPIKey != "" {
		return ProviderJina
	}
	if cfg.OpenAIAPIKey != "" {
		return ProviderOpenAI
	}
	return ProviderLocal
}
