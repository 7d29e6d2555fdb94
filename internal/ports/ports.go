// Package ports declares the narrow interfaces the core depends on for its
// external collaborators (§4.5): the parser, the embedder, the reranker,
// and the file source. Concrete adapters are chosen at startup by a
// configuration-driven builder (internal/config plus each adapter's own
// constructor); there is no runtime plugin loading.
package ports

import (
	"context"

	"github.com/dshills/codesearch/internal/coretypes"
)

// Parser extracts chunks and call-graph references from a single file's
// bytes. Implementations must be pure and deterministic: the same bytes at
// the same path always yield the same chunks and references.
type Parser interface {
	// Parse returns the chunks and references found in content. path is
	// relative to the repository root and is used only to populate
	// Chunk.FilePath / Reference.FilePath, not to re-read the file.
	Parse(ctx context.Context, repositoryID, path string, content []byte) ([]coretypes.Chunk, []coretypes.Reference, error)

	// SupportsLanguage reports whether this adapter can parse the given
	// language. The indexer uses this to skip files with no adapter
	// without treating that as an error (§4.2 step 2).
	SupportsLanguage(lang coretypes.Language) bool
}

// Embedder turns a batch of texts into fixed-dimension vectors, preserving
// order. Dimension is a fixed property of a given Embedder instance.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Provider() string
	Model() string
}

// Reranker scores a batch of (query, text) pairs with a cross-encoder,
// preserving order. Scores are only meaningful relative to each other
// within a single call.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)
	ModelName() string
}

// FileSource yields a finite, restartable lazy sequence of absolute file
// paths under a root, honouring gitignore-style exclusion rules.
type FileSource interface {
	// Walk calls fn for every path under root that should be considered
	// for indexing. Returning an error from fn stops the walk and
	// propagates the error to the caller of Walk.
	Walk(ctx context.Context, root string, fn func(absolutePath string) error) error
}

// QueryExpander rewrites or augments a query's text before it reaches the
// embedder and keyword tokenizer. Spec §1 permits but does not require
// query rewriting/LLM expansion in the core; IdentityExpander is the
// default and only implementation shipped here.
type QueryExpander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// IdentityExpander returns the query unchanged, as a single-element slice.
// It is the zero-configuration default so that QueryExpander is always
// safe to call even when no real expansion adapter is configured.
type IdentityExpander struct{}

// Expand implements QueryExpander.
func (IdentityExpander) Expand(_ context.Context, query string) ([]string, error) {
	return []string{query}, nil
}
