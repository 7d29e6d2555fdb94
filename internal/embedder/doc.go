// Package embedder generates vector embeddings for code chunks and search
// queries via pluggable providers, implementing ports.Embedder.
//
// # Basic usage
//
//	emb, err := embedder.New(embedder.FactoryConfig{
//	    Provider:   "jina",
//	    JinaAPIKey: apiKey,
//	})
//	vectors, err := emb.Embed(ctx, []string{chunk1.Content, chunk2.Content})
//
// # Provider selection
//
// New picks an adapter in this order:
//
//  1. FactoryConfig.Mock forces the local provider.
//  2. FactoryConfig.Provider, if set, picks the adapter explicitly.
//  3. Otherwise, whichever API key is present (Jina, then OpenAI).
//  4. Falls back to the local provider when nothing else applies.
//
// Jina AI: 1024 dimensions, code-optimized.
// OpenAI: 1536 dimensions, general purpose.
// Local: 384 dimensions, deterministic hash-based vectors with no network
// dependency, used for tests and --mock-embeddings.
//
// # Caching and retry
//
// Cache is an in-memory LRU keyed by content hash (ComputeHash), shared
// across calls to Embed so re-indexing an unchanged chunk skips the
// provider entirely. HTTP-backed providers retry any failed call with
// exponential backoff (see RetryConfig), without distinguishing transient
// from permanent errors; retries are skipped once the context is canceled.
package embedder
