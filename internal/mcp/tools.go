package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/codesearch/internal/callgraph"
	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
)

// MCP error codes, matching the JSON-RPC and CodeSearch-specific ranges of
// §7.
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // Symbol, repository or chunk not found
)

// handleSearchCode handles the search_code tool invocation.
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	queryText, ok := args["query"].(string)
	if !ok || queryText == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param": "query",
		})
	}

	query := coretypes.NewSearchQuery(queryText)
	if num := getIntDefault(args, "num", 0); num > 0 {
		query.Num = num
	}
	if minScore, ok := args["min_score"].(float64); ok {
		query.MinScore = &minScore
	}
	query.TextSearchEnabled = getBoolDefault(args, "text_search", true)
	query.RerankEnabled = getBoolDefault(args, "rerank", true)
	for _, l := range getStringSlice(args, "languages") {
		query.Languages = append(query.Languages, coretypes.Language(l))
	}
	query.Repositories = getStringSlice(args, "repositories")
	for _, k := range getStringSlice(args, "node_kinds") {
		query.NodeKinds = append(query.NodeKinds, coretypes.NodeKind(k))
	}

	results, err := s.searcher.Search(ctx, s.namespace, query)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		response = append(response, map[string]interface{}{
			"file_path":   r.Chunk.FilePath,
			"start_line":  r.Chunk.StartLine,
			"end_line":    r.Chunk.EndLine,
			"score":       r.Score,
			"language":    string(r.Chunk.Language),
			"node_type":   string(r.Chunk.NodeKind),
			"symbol_name": nullableString(r.Chunk.SymbolName),
			"content":     r.Chunk.Content,
		})
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAnalyzeImpact handles the analyze_impact tool invocation.
func (s *Server) handleAnalyzeImpact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "symbol parameter is required", map[string]interface{}{
			"param": "symbol",
		})
	}
	depth := getIntDefault(args, "depth", 5)
	repositories := getStringSlice(args, "repositories")

	analysis, err := s.analyzer.Impact(ctx, s.namespace, symbol, depth, repositories)
	if err != nil {
		return nil, mapAnalyzerError(err)
	}

	byDepth := make([][]map[string]interface{}, len(analysis.ByDepth))
	for i, nodes := range analysis.ByDepth {
		row := make([]map[string]interface{}, 0, len(nodes))
		for _, n := range nodes {
			row = append(row, map[string]interface{}{
				"symbol":    n.Symbol,
				"depth":     n.Depth,
				"file_path": n.FilePath,
				"line":      n.Line,
			})
		}
		byDepth[i] = row
	}

	response := map[string]interface{}{
		"root_symbol":       analysis.Symbol,
		"total_affected":    analysis.TotalAffected,
		"max_depth_reached": analysis.MaxDepthReached,
		"by_depth":          byDepth,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetSymbolContext handles the get_symbol_context tool invocation.
func (s *Server) handleGetSymbolContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "symbol parameter is required", map[string]interface{}{
			"param": "symbol",
		})
	}
	limit := getIntDefault(args, "limit", 20)
	repositories := getStringSlice(args, "repositories")

	symCtx, err := s.analyzer.Context(ctx, s.namespace, symbol, repositories)
	if err != nil {
		return nil, mapAnalyzerError(err)
	}

	callers := edgesToJSON(symCtx.Callers, limit)
	callees := edgesToJSON(symCtx.Callees, limit)

	response := map[string]interface{}{
		"symbol":       symCtx.Symbol,
		"callers":      callers,
		"caller_count": len(symCtx.Callers),
		"callees":      callees,
		"callee_count": len(symCtx.Callees),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// MCPError represents an MCP protocol error.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// mapAnalyzerError maps a callgraph error to an MCPError, distinguishing a
// missing-symbol NotFound from every other failure.
func mapAnalyzerError(err error) error {
	if coreerrors.Is(err, coreerrors.KindNotFound) {
		return newMCPError(ErrorCodeNotFound, err.Error(), nil)
	}
	if coreerrors.Is(err, coreerrors.KindInvalidInput) {
		return newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	return newMCPError(ErrorCodeInternalError, "call graph query failed", map[string]interface{}{
		"error": err.Error(),
	})
}

func edgesToJSON(edges []callgraph.ContextEdge, limit int) []map[string]interface{} {
	if limit > 0 && len(edges) > limit {
		edges = edges[:limit]
	}
	out := make([]map[string]interface{}, 0, len(edges))
	for _, e := range edges {
		out = append(out, map[string]interface{}{
			"symbol":         e.Symbol,
			"reference_kind": string(e.Kind),
			"file_path":      e.FilePath,
			"line":           e.Line,
		})
	}
	return out
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
