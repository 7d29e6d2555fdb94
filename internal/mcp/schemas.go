package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchCodeTool returns the tool definition for search_code.
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Hybrid semantic and keyword search over an indexed codebase",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language or keyword search query",
				},
				"num": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Drop results scoring below this threshold, applied after fusion",
				},
				"languages": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these languages",
					"items":       map[string]interface{}{"type": "string"},
				},
				"repositories": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these repository ids",
					"items":       map[string]interface{}{"type": "string"},
				},
				"node_kinds": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these node kinds (function, method, struct, ...)",
					"items":       map[string]interface{}{"type": "string"},
				},
				"rerank": map[string]interface{}{
					"type":        "boolean",
					"description": "If false, skip the cross-encoder rerank stage",
					"default":     true,
				},
				"text_search": map[string]interface{}{
					"type":        "boolean",
					"description": "If false, run the semantic leg only (no keyword leg, no fusion)",
					"default":     true,
				},
			},
			Required: []string{"query"},
		},
	}
}

// analyzeImpactTool returns the tool definition for analyze_impact.
func analyzeImpactTool() mcp.Tool {
	return mcp.Tool{
		Name:        "analyze_impact",
		Description: "Breadth-first search over the call graph: every caller reachable from a symbol within a depth bound",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name to analyze, e.g. a qualified function or method name",
				},
				"depth": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of caller hops to traverse",
					"default":     5,
					"minimum":     1,
				},
				"repositories": map[string]interface{}{
					"type":        "array",
					"description": "Restrict traversal to these repository ids",
					"items":       map[string]interface{}{"type": "string"},
				},
			},
			Required: []string{"symbol"},
		},
	}
}

// getSymbolContextTool returns the tool definition for get_symbol_context.
func getSymbolContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_symbol_context",
		Description: "The immediate call-graph neighborhood of a symbol: who calls it, and what it calls",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name to look up; falls back to suffix resolution if no exact match is found",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of callers and callees to return, each",
					"default":     20,
					"minimum":     1,
				},
				"repositories": map[string]interface{}{
					"type":        "array",
					"description": "Restrict lookup to these repository ids",
					"items":       map[string]interface{}{"type": "string"},
				},
			},
			Required: []string{"symbol"},
		},
	}
}
