package coretypes

// SearchResult is a chunk plus a score whose semantic range depends on the
// pipeline leg that produced it (§3): cosine-only results use [0,1],
// RRF-fused results use ~[0.016, 0.033], reranker results use the
// cross-encoder's unbounded but internally comparable output.
type SearchResult struct {
	Chunk Chunk
	Score float64
}
