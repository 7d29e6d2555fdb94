package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/codesearch/internal/callgraph"
	"github.com/dshills/codesearch/internal/coretypes"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// searchResultJSON mirrors the field names and order §6 documents for
// `search --format json`.
type searchResultJSON struct {
	FilePath   string  `json:"file_path"`
	StartLine  int     `json:"start_line"`
	EndLine    int     `json:"end_line"`
	Score      float64 `json:"score"`
	Language   string  `json:"language"`
	NodeType   string  `json:"node_type"`
	SymbolName string  `json:"symbol_name"`
	Content    string  `json:"content"`
}

func toSearchResultJSON(results []coretypes.SearchResult) []searchResultJSON {
	out := make([]searchResultJSON, 0, len(results))
	for _, r := range results {
		out = append(out, searchResultJSON{
			FilePath:   r.Chunk.FilePath,
			StartLine:  r.Chunk.StartLine,
			EndLine:    r.Chunk.EndLine,
			Score:      r.Score,
			Language:   string(r.Chunk.Language),
			NodeType:   string(r.Chunk.NodeKind),
			SymbolName: r.Chunk.SymbolName,
			Content:    r.Chunk.Content,
		})
	}
	return out
}

func printSearchText(w io.Writer, results []coretypes.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no matches")
		return
	}
	for _, r := range results {
		symbol := r.Chunk.SymbolName
		if symbol == "" {
			symbol = "-"
		}
		fmt.Fprintf(w, "%.4f  %s:%d-%d  %s  %s\n", r.Score, r.Chunk.FilePath, r.Chunk.StartLine, r.Chunk.EndLine, symbol, r.Chunk.Language)
	}
}

// printSearchVimgrep writes one line per result in the file:line:col:text
// format an editor's quickfix list expects. Column is always 1: chunk
// boundaries are line-granular, not column-granular. text is
// "[score] symbol - first-line", matching printSearchText's `-` convention
// for an empty symbol name.
func printSearchVimgrep(w io.Writer, results []coretypes.SearchResult) {
	for _, r := range results {
		firstLine := r.Chunk.Content
		if idx := indexOfNewline(firstLine); idx >= 0 {
			firstLine = firstLine[:idx]
		}
		symbol := r.Chunk.SymbolName
		if symbol == "" {
			symbol = "-"
		}
		text := fmt.Sprintf("[%.4f] %s - %s", r.Score, symbol, firstLine)
		fmt.Fprintf(w, "%s:%d:1:%s\n", r.Chunk.FilePath, r.Chunk.StartLine, text)
	}
}

func indexOfNewline(s string) int {
	for i, c := range s {
		if c == '\n' {
			return i
		}
	}
	return -1
}

// impactNodeJSON mirrors §6's `impact --format json` per-node schema,
// which includes reference_kind alongside the fields the MCP tool
// surface omits.
type impactNodeJSON struct {
	Symbol        string `json:"symbol"`
	Depth         int    `json:"depth"`
	ReferenceKind string `json:"reference_kind"`
	FilePath      string `json:"file_path"`
	Line          int    `json:"line"`
}

type impactJSON struct {
	RootSymbol      string             `json:"root_symbol"`
	TotalAffected   int                `json:"total_affected"`
	MaxDepthReached int                `json:"max_depth_reached"`
	ByDepth         [][]impactNodeJSON `json:"by_depth"`
}

func toImpactJSON(a *callgraph.ImpactAnalysis) impactJSON {
	byDepth := make([][]impactNodeJSON, len(a.ByDepth))
	for i, nodes := range a.ByDepth {
		row := make([]impactNodeJSON, 0, len(nodes))
		for _, n := range nodes {
			row = append(row, impactNodeJSON{
				Symbol:        n.Symbol,
				Depth:         n.Depth,
				ReferenceKind: string(n.Kind),
				FilePath:      n.FilePath,
				Line:          n.Line,
			})
		}
		byDepth[i] = row
	}
	return impactJSON{
		RootSymbol:      a.Symbol,
		TotalAffected:   a.TotalAffected,
		MaxDepthReached: a.MaxDepthReached,
		ByDepth:         byDepth,
	}
}

func printImpactText(w io.Writer, a *callgraph.ImpactAnalysis) {
	fmt.Fprintf(w, "%s: %d affected, max depth %d\n", a.Symbol, a.TotalAffected, a.MaxDepthReached)
	for i, nodes := range a.ByDepth {
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(w, "depth %d:\n", i+1)
		for _, n := range nodes {
			fmt.Fprintf(w, "  %s  %s:%d  (%s)\n", n.Symbol, n.FilePath, n.Line, n.Kind)
		}
	}
}

type contextEdgeJSON struct {
	Symbol        string `json:"symbol"`
	ReferenceKind string `json:"reference_kind"`
	FilePath      string `json:"file_path"`
	Line          int    `json:"line"`
}

type contextJSON struct {
	Symbol      string            `json:"symbol"`
	Callers     []contextEdgeJSON `json:"callers"`
	CallerCount int               `json:"caller_count"`
	Callees     []contextEdgeJSON `json:"callees"`
	CalleeCount int               `json:"callee_count"`
}

func toContextJSON(c *callgraph.SymbolContext, limit int) contextJSON {
	return contextJSON{
		Symbol:      c.Symbol,
		Callers:     toContextEdgesJSON(c.Callers, limit),
		CallerCount: len(c.Callers),
		Callees:     toContextEdgesJSON(c.Callees, limit),
		CalleeCount: len(c.Callees),
	}
}

func toContextEdgesJSON(edges []callgraph.ContextEdge, limit int) []contextEdgeJSON {
	if limit > 0 && len(edges) > limit {
		edges = edges[:limit]
	}
	out := make([]contextEdgeJSON, 0, len(edges))
	for _, e := range edges {
		out = append(out, contextEdgeJSON{
			Symbol:        e.Symbol,
			ReferenceKind: string(e.Kind),
			FilePath:      e.FilePath,
			Line:          e.Line,
		})
	}
	return out
}

func printContextText(w io.Writer, c *callgraph.SymbolContext, limit int) {
	fmt.Fprintf(w, "%s\n", c.Symbol)
	fmt.Fprintf(w, "callers (%d):\n", len(c.Callers))
	for _, e := range toContextEdgesJSON(c.Callers, limit) {
		fmt.Fprintf(w, "  %s  %s:%d\n", e.Symbol, e.FilePath, e.Line)
	}
	fmt.Fprintf(w, "callees (%d):\n", len(c.Callees))
	for _, e := range toContextEdgesJSON(c.Callees, limit) {
		fmt.Fprintf(w, "  %s  %s:%d\n", e.Symbol, e.FilePath, e.Line)
	}
}
