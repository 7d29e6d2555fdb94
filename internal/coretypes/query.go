package coretypes

// SearchQuery is the shared value type for a hybrid-search request (§3,
// §4.3). Zero values for the optional fields mean "no filter" except where
// noted.
type SearchQuery struct {
	Text string

	// Num is the caller's requested result count. Defaults to 10, must be
	// >= 1; the pipeline internally fetches a larger candidate budget (see
	// searcher.CandidateBudget) and truncates to Num at the end.
	Num int

	// MinScore, when non-nil, is applied uniformly after fusion (§4.3
	// step 5). A nil MinScore means no explicit floor beyond the
	// leg-aware 0.1 asymmetry.
	MinScore *float64

	Languages  []Language
	Repositories []string // repository ids
	NodeKinds  []NodeKind

	// TextSearchEnabled toggles the keyword leg. Defaults to true.
	TextSearchEnabled bool
	// RerankEnabled toggles the cross-encoder reranking step. Defaults to true.
	RerankEnabled bool
}

// NewSearchQuery returns a SearchQuery with the defaults spec §3 mandates:
// Num=10, TextSearchEnabled=true, RerankEnabled=true.
func NewSearchQuery(text string) SearchQuery {
	return SearchQuery{
		Text:              text,
		Num:               10,
		TextSearchEnabled: true,
		RerankEnabled:     true,
	}
}

// IsHybrid reports whether both legs of the pipeline should run. A query
// with TextSearchEnabled=false runs the semantic leg alone.
func (q SearchQuery) IsHybrid() bool {
	return q.TextSearchEnabled
}

// Normalize applies defaults for zero-valued fields and clamps Num into a
// sane range, mirroring the teacher's validateRequest.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Num <= 0 {
		q.Num = 10
	}
	if q.Num > 100 {
		q.Num = 100
	}
	return q
}
