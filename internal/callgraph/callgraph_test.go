package callgraph

import (
	"context"
	"testing"

	"github.com/dshills/codesearch/internal/coretypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store used to exercise BFS shape without a
// real database.
type fakeStore struct {
	callers map[string][]coretypes.Reference
	callees map[string][]coretypes.Reference
	symbols map[string][]string
}

func (f *fakeStore) FindCallers(_ context.Context, _, symbol string, _ []string) ([]coretypes.Reference, error) {
	return f.callers[symbol], nil
}

func (f *fakeStore) FindCallees(_ context.Context, _, symbol string, _ []string) ([]coretypes.Reference, error) {
	return f.callees[symbol], nil
}

func (f *fakeStore) ResolveSymbols(_ context.Context, _, symbol string, _ int, _ []string) ([]string, error) {
	return f.symbols[symbol], nil
}

func ref(caller, callee string) coretypes.Reference {
	return coretypes.Reference{CallerSymbol: caller, CalleeSymbol: callee, Kind: coretypes.ReferenceKindCall}
}

func TestImpact_BFSDepthOrdering(t *testing.T) {
	// C calls B, B calls A, D calls B. Impact of A should reach {B} at
	// depth 1, {C, D} at depth 2.
	store := &fakeStore{
		callers: map[string][]coretypes.Reference{
			"A": {ref("B", "A")},
			"B": {ref("C", "B"), ref("D", "B")},
		},
	}
	a := New(store)
	result, err := a.Impact(context.Background(), "main", "A", 3, nil)
	require.NoError(t, err)

	require.Len(t, result.ByDepth, 3)
	assert.Len(t, result.ByDepth[0], 1)
	assert.Equal(t, "B", result.ByDepth[0][0].Symbol)
	assert.Len(t, result.ByDepth[1], 2)
	assert.Equal(t, 3, result.TotalAffected)
	assert.Equal(t, 2, result.MaxDepthReached)
}

func TestImpact_RespectsMaxDepth(t *testing.T) {
	store := &fakeStore{
		callers: map[string][]coretypes.Reference{
			"A": {ref("B", "A")},
			"B": {ref("C", "B")},
		},
	}
	a := New(store)
	result, err := a.Impact(context.Background(), "main", "A", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalAffected)
}

func TestImpact_NoCycleRevisit(t *testing.T) {
	store := &fakeStore{
		callers: map[string][]coretypes.Reference{
			"A": {ref("B", "A")},
			"B": {ref("A", "B")},
		},
	}
	a := New(store)
	result, err := a.Impact(context.Background(), "main", "A", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalAffected)
}

func TestContext_ExactMatch(t *testing.T) {
	store := &fakeStore{
		callers: map[string][]coretypes.Reference{"Foo": {ref("Bar", "Foo")}},
		callees: map[string][]coretypes.Reference{"Foo": {ref("Foo", "Baz")}},
	}
	a := New(store)
	ctxResult, err := a.Context(context.Background(), "main", "Foo", nil)
	require.NoError(t, err)
	assert.Equal(t, "Foo", ctxResult.Symbol)
	assert.Len(t, ctxResult.Callers, 1)
	assert.Len(t, ctxResult.Callees, 1)
}

func TestContext_SuffixFallback(t *testing.T) {
	store := &fakeStore{
		callers: map[string][]coretypes.Reference{
			"pkg.Store.Close": {ref("Cleanup", "pkg.Store.Close")},
		},
		symbols: map[string][]string{
			"Close": {"pkg.Store.Close"},
		},
	}
	a := New(store)
	ctxResult, err := a.Context(context.Background(), "main", "Close", nil)
	require.NoError(t, err)
	assert.Equal(t, "Close", ctxResult.Symbol)
	assert.Len(t, ctxResult.Callers, 1)
}

func TestContext_NoMatchReturnsNotFound(t *testing.T) {
	store := &fakeStore{}
	a := New(store)
	_, err := a.Context(context.Background(), "main", "Nope", nil)
	assert.Error(t, err)
}

// repoScopedStore records the repositories argument each lookup was
// called with, so a test can assert the filter reached the Store.
type repoScopedStore struct {
	fakeStore
	gotRepositories []string
}

func (f *repoScopedStore) FindCallers(ctx context.Context, namespace, symbol string, repositories []string) ([]coretypes.Reference, error) {
	f.gotRepositories = repositories
	return f.fakeStore.FindCallers(ctx, namespace, symbol, repositories)
}

func TestImpact_ThreadsRepositoryFilter(t *testing.T) {
	store := &repoScopedStore{fakeStore: fakeStore{
		callers: map[string][]coretypes.Reference{"A": {ref("B", "A")}},
	}}
	a := New(store)
	_, err := a.Impact(context.Background(), "main", "A", 1, []string{"repo-1", "repo-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"repo-1", "repo-2"}, store.gotRepositories)
}

func TestContext_ThreadsRepositoryFilter(t *testing.T) {
	store := &repoScopedStore{fakeStore: fakeStore{
		callers: map[string][]coretypes.Reference{"Foo": {ref("Bar", "Foo")}},
	}}
	a := New(store)
	_, err := a.Context(context.Background(), "main", "Foo", []string{"repo-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"repo-1"}, store.gotRepositories)
}
