package searcher

import (
	"context"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
	"github.com/dshills/codesearch/internal/ports"
	"github.com/dshills/codesearch/internal/storage"
)

// rrfConstant is the standard Reciprocal Rank Fusion constant (§4.3 step 4).
const rrfConstant = 60.0

// semanticOnlyFloor is the score floor applied only to the semantic-only
// (non-hybrid) path, before reranking. RRF-fused scores never see this
// floor: their range (~0.016-0.033) sits entirely below it.
const semanticOnlyFloor = 0.1

// minCandidateBudget is the floor on the over-fetch candidate count,
// ensuring even num=1 queries give the reranker enough material.
const minCandidateBudget = 20

// Store is the subset of storage.Store the searcher reads through.
type Store interface {
	VectorSearch(ctx context.Context, namespace string, query []float32, limit int, filters storage.SearchFilters) ([]coretypes.SearchResult, error)
	TextSearch(ctx context.Context, namespace, queryText string, limit int, filters storage.SearchFilters) ([]coretypes.SearchResult, error)
}

// Searcher runs the hybrid search pipeline of §4.3 over a Store.
type Searcher struct {
	store    Store
	embedder ports.Embedder
	reranker ports.Reranker
	expander ports.QueryExpander
	logger   zerolog.Logger
}

// New builds a Searcher. A nil expander defaults to ports.IdentityExpander.
func New(store Store, embedder ports.Embedder, reranker ports.Reranker, expander ports.QueryExpander, logger zerolog.Logger) *Searcher {
	if expander == nil {
		expander = ports.IdentityExpander{}
	}
	return &Searcher{
		store:    store,
		embedder: embedder,
		reranker: reranker,
		expander: expander,
		logger:   logger.With().Str("component", "searcher").Logger(),
	}
}

// CandidateBudget implements §4.3 step 1: K = num + ceil(num / ln(num)),
// floored at 20 so small num still supplies the reranker with material.
// ln(1) is 0, so num<=1 goes straight to the floor rather than dividing
// by zero.
func CandidateBudget(num int) int {
	if num <= 1 {
		return minCandidateBudget
	}
	k := num + int(math.Ceil(float64(num)/math.Log(float64(num))))
	if k < minCandidateBudget {
		k = minCandidateBudget
	}
	return k
}

// Search runs the full pipeline: expand -> embed -> semantic leg ->
// [keyword leg] -> [RRF] -> score filter -> [rerank] -> truncate.
func (s *Searcher) Search(ctx context.Context, namespace string, query coretypes.SearchQuery) ([]coretypes.SearchResult, error) {
	q := query.Normalize()
	if strings.TrimSpace(q.Text) == "" {
		return nil, coreerrors.New(coreerrors.KindInvalidInput, "query text must not be empty")
	}

	expanded, err := s.expander.Expand(ctx, q.Text)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindInvalidInput, "expand query", err)
	}
	if len(expanded) == 0 {
		return nil, coreerrors.New(coreerrors.KindInvalidInput, "query expander returned no variants")
	}
	text := expanded[0]

	budget := CandidateBudget(q.Num)
	filters := toFilters(q)
	hybrid := q.IsHybrid()
	tokens := tokenize(text)

	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindModel, "embed query", err)
	}
	if len(vectors) != 1 {
		return nil, coreerrors.New(coreerrors.KindModel, "embedder returned an unexpected vector count")
	}

	var semantic, keyword []coretypes.SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		semantic, err = s.store.VectorSearch(gctx, namespace, vectors[0], budget, filters)
		return err
	})
	if hybrid && len(tokens) > 0 {
		g.Go(func() error {
			var err error
			keyword, err = s.store.TextSearch(gctx, namespace, strings.Join(tokens, " "), budget, filters)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "search legs", err)
	}

	var candidates []coretypes.SearchResult
	if !hybrid {
		candidates = append(candidates, semantic...)
		sortByScore(candidates)
	} else {
		candidates = fuseRRF(semantic, keyword)
	}
	if len(candidates) > budget {
		candidates = candidates[:budget]
	}

	candidates = filterByScore(candidates, q.MinScore, hybrid)

	if q.RerankEnabled && len(candidates) > 0 {
		candidates, err = s.rerank(ctx, text, candidates)
		if err != nil {
			return nil, err
		}
	}

	if len(candidates) > q.Num {
		candidates = candidates[:q.Num]
	}
	return candidates, nil
}

func (s *Searcher) rerank(ctx context.Context, query string, candidates []coretypes.SearchResult) ([]coretypes.SearchResult, error) {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Chunk.Content
	}
	scores, err := s.reranker.Rerank(ctx, query, texts)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindModel, "rerank", err)
	}
	if len(scores) != len(candidates) {
		return nil, coreerrors.New(coreerrors.KindModel, "reranker returned a mismatched score count")
	}
	for i := range candidates {
		candidates[i].Score = scores[i]
	}
	sortByScore(candidates)
	return candidates, nil
}

// fuseRRF implements §4.3 step 4: a chunk's fused score is the sum of
// 1/(k+r) over every leg it appears in, at that leg's 1-based rank.
func fuseRRF(legs ...[]coretypes.SearchResult) []coretypes.SearchResult {
	scores := make(map[string]float64)
	chunks := make(map[string]coretypes.Chunk)
	for _, leg := range legs {
		for rank, r := range leg {
			scores[r.Chunk.ID] += 1.0 / (rrfConstant + float64(rank+1))
			chunks[r.Chunk.ID] = r.Chunk
		}
	}
	out := make([]coretypes.SearchResult, 0, len(scores))
	for id, score := range scores {
		out = append(out, coretypes.SearchResult{Chunk: chunks[id], Score: score})
	}
	sortByScore(out)
	return out
}

// filterByScore applies min_score (if set) and, only on the non-hybrid
// path, the hard 0.1 floor of §4.3 step 5.
func filterByScore(results []coretypes.SearchResult, minScore *float64, hybrid bool) []coretypes.SearchResult {
	var floor float64
	if !hybrid {
		floor = semanticOnlyFloor
	}
	kept := make([]coretypes.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Score < floor {
			continue
		}
		if minScore != nil && r.Score < *minScore {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// sortByScore orders results by descending score, breaking ties by
// ascending chunk id for deterministic output (§3 "Ordering guarantees").
func sortByScore(results []coretypes.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}

func toFilters(q coretypes.SearchQuery) storage.SearchFilters {
	return storage.SearchFilters{
		Repositories: q.Repositories,
		Languages:    q.Languages,
		NodeKinds:    q.NodeKinds,
	}
}

// stopWords are dropped from the keyword leg's tokenized query so common
// English function words don't dilute BM25/LIKE scoring.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "that": true, "this": true, "these": true,
	"those": true, "what": true, "which": true, "who": true, "whom": true,
}

// tokenize implements §4.3 step 3's tokenization: whitespace split,
// lowercase, drop stop words. An all-stop-word or empty query tokenizes to
// nothing, which callers treat as "keyword leg returns an empty list".
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
