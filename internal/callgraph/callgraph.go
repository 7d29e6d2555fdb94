// Package callgraph answers impact ("who breaks if I change this symbol")
// and context ("what does this symbol call, and who calls it") queries
// over the call-graph references a parser adapter extracted.
package callgraph

import (
	"context"
	"fmt"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
)

// Store is the subset of storage.Store the call-graph queries need.
type Store interface {
	FindCallers(ctx context.Context, namespace, symbol string, repositories []string) ([]coretypes.Reference, error)
	FindCallees(ctx context.Context, namespace, symbol string, repositories []string) ([]coretypes.Reference, error)
	ResolveSymbols(ctx context.Context, namespace, symbol string, limit int, repositories []string) ([]string, error)
}

// Analyzer runs impact and context queries against a Store.
type Analyzer struct {
	store Store
}

// New returns an Analyzer backed by store.
func New(store Store) *Analyzer {
	return &Analyzer{store: store}
}

// ImpactNode is one caller found during breadth-first traversal, at the
// depth it was first reached.
type ImpactNode struct {
	Symbol   string
	FilePath string
	Line     int
	Depth    int
	Kind     coretypes.ReferenceKind
}

// ImpactAnalysis is the result of a full breadth-first impact query: every
// caller reachable from a symbol within maxDepth hops, grouped by the
// depth at which it was first discovered.
type ImpactAnalysis struct {
	Symbol          string
	ByDepth         [][]ImpactNode
	TotalAffected   int
	MaxDepthReached int
}

// Impact performs a breadth-first search over the caller edges of symbol,
// up to maxDepth hops: a visited set seeded with the root symbol, a FIFO
// queue of (symbol, depth) pairs, and one FindCallers lookup per dequeued
// symbol.
//
// Anonymous callers (coretypes.AnonymousCaller) are counted as visited
// nodes and can themselves be expanded. The sentinel is a literal string
// rather than a null value, so "callers of <anonymous>" is a well-formed
// (if normally empty) query, and anonymous call sites participate in the
// graph like any other node rather than terminating traversal early.
//
// repositories, when non-empty, narrows every FindCallers lookup to that
// set (§4.4: "both operations honour the repository filter; without it,
// graph traversal spans all indexed repositories").
func (a *Analyzer) Impact(ctx context.Context, namespace, symbol string, maxDepth int, repositories []string) (*ImpactAnalysis, error) {
	if symbol == "" {
		return nil, coreerrors.New(coreerrors.KindInvalidInput, "symbol must not be empty")
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	visited := map[string]bool{symbol: true}
	type queued struct {
		symbol string
		depth  int
	}
	queue := []queued{{symbol: symbol, depth: 0}}

	byDepth := make([][]ImpactNode, maxDepth)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		refs, err := a.store.FindCallers(ctx, namespace, cur.symbol, repositories)
		if err != nil {
			return nil, fmt.Errorf("find callers of %s: %w", cur.symbol, err)
		}

		nextDepth := cur.depth + 1
		for _, ref := range refs {
			caller := ref.CallerSymbol
			if visited[caller] {
				continue
			}
			visited[caller] = true

			byDepth[nextDepth-1] = append(byDepth[nextDepth-1], ImpactNode{
				Symbol:   caller,
				FilePath: ref.FilePath,
				Line:     ref.Line,
				Depth:    nextDepth,
				Kind:     ref.Kind,
			})
			queue = append(queue, queued{symbol: caller, depth: nextDepth})
		}
	}

	total := 0
	maxReached := 0
	for i, nodes := range byDepth {
		total += len(nodes)
		if len(nodes) > 0 {
			maxReached = i + 1
		}
	}

	return &ImpactAnalysis{
		Symbol:          symbol,
		ByDepth:         byDepth,
		TotalAffected:   total,
		MaxDepthReached: maxReached,
	}, nil
}

// ContextEdge is one caller or callee edge in a symbol-context result.
type ContextEdge struct {
	Symbol   string
	FilePath string
	Line     int
	Kind     coretypes.ReferenceKind
}

// SymbolContext is the immediate call-graph neighborhood of a symbol: who
// calls it, and what it calls.
type SymbolContext struct {
	Symbol   string
	Callers  []ContextEdge
	Callees  []ContextEdge
	Resolved []string // populated when Symbol was resolved via suffix match
}

// Context returns the immediate callers and callees of symbol. If an
// exact match finds nothing on both sides, it falls back to suffix-based
// symbol resolution (e.g. "Store.Close" resolving
// "storage.Store.Close") and aggregates the neighborhoods of every match
// found. Symbol is labelled "<symbol> (resolved N symbols)" only when more
// than one name resolves.
//
// repositories, when non-empty, narrows every lookup to that set.
func (a *Analyzer) Context(ctx context.Context, namespace, symbol string, repositories []string) (*SymbolContext, error) {
	if symbol == "" {
		return nil, coreerrors.New(coreerrors.KindInvalidInput, "symbol must not be empty")
	}

	callers, err := a.store.FindCallers(ctx, namespace, symbol, repositories)
	if err != nil {
		return nil, fmt.Errorf("find callers of %s: %w", symbol, err)
	}
	callees, err := a.store.FindCallees(ctx, namespace, symbol, repositories)
	if err != nil {
		return nil, fmt.Errorf("find callees of %s: %w", symbol, err)
	}

	if len(callers) > 0 || len(callees) > 0 {
		return &SymbolContext{
			Symbol:  symbol,
			Callers: toEdges(callers, edgeCaller),
			Callees: toEdges(callees, edgeCallee),
		}, nil
	}

	resolved, err := a.store.ResolveSymbols(ctx, namespace, symbol, 10, repositories)
	if err != nil {
		return nil, fmt.Errorf("resolve symbols for %s: %w", symbol, err)
	}
	if len(resolved) == 0 {
		return nil, coreerrors.New(coreerrors.KindNotFound, fmt.Sprintf("no symbol matching %q found", symbol))
	}

	result := &SymbolContext{Symbol: symbol, Resolved: resolved}
	for _, name := range resolved {
		c, err := a.store.FindCallers(ctx, namespace, name, repositories)
		if err != nil {
			return nil, fmt.Errorf("find callers of %s: %w", name, err)
		}
		e, err := a.store.FindCallees(ctx, namespace, name, repositories)
		if err != nil {
			return nil, fmt.Errorf("find callees of %s: %w", name, err)
		}
		result.Callers = append(result.Callers, toEdges(c, edgeCaller)...)
		result.Callees = append(result.Callees, toEdges(e, edgeCallee)...)
	}
	if len(resolved) > 1 {
		result.Symbol = fmt.Sprintf("%s (resolved %d symbols)", symbol, len(resolved))
	}
	return result, nil
}

type edgeDirection int

const (
	edgeCaller edgeDirection = iota
	edgeCallee
)

func toEdges(refs []coretypes.Reference, dir edgeDirection) []ContextEdge {
	edges := make([]ContextEdge, 0, len(refs))
	for _, r := range refs {
		var sym string
		if dir == edgeCaller {
			sym = r.CallerSymbol
		} else {
			sym = r.CalleeSymbol
		}
		edges = append(edges, ContextEdge{Symbol: sym, FilePath: r.FilePath, Line: r.Line, Kind: r.Kind})
	}
	return edges
}
