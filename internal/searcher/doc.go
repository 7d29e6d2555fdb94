// Package searcher runs the hybrid search pipeline: embed the query,
// fan out to a semantic (vector) leg and a keyword leg, fuse the two with
// Reciprocal Rank Fusion, apply a leg-aware score floor, optionally
// rerank with a cross-encoder, and hydrate the surviving chunk ids.
//
// # Candidate budget
//
// The pipeline never searches for exactly Num results. It over-fetches a
// candidate set of size K = num + ceil(num / ln(num)), floored at 20, so
// the fusion and rerank stages have enough material to reorder before the
// final truncation to Num.
//
// # Score asymmetry
//
// A candidate's score is only comparable to a 0.1 floor when it came
// from the semantic leg alone (no keyword leg, no fusion): RRF-fused
// scores live in a much smaller range (roughly 0.016-0.033) and a 0.1
// floor would empty every hybrid result set. The 0.1 floor applies only
// on the semantic-only path, before reranking; min_score, when the
// caller sets it, applies uniformly to whichever score is in play at the
// point of filtering.
package searcher
