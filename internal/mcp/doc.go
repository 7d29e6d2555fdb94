// Package mcp implements the Model Context Protocol server for CodeSearch.
//
// The server exposes three read-only tools to AI coding assistants;
// indexing a repository is a CLI-only operation (see cmd/codesearch).
//
//   - search_code: hybrid semantic and keyword search over an indexed
//     namespace.
//   - analyze_impact: breadth-first traversal of the call graph, listing
//     every caller reachable from a symbol within a depth bound.
//   - get_symbol_context: the immediate callers and callees of a symbol.
//
// # Protocol overview
//
// MCP is JSON-RPC 2.0 over a stdio or streamable-HTTP transport:
//
//	Client -> Server: {"method": "tools/call", "params": {...}}
//	Server -> Client: {"result": {...}}
//
// # Tool: search_code
//
//	Request:
//	{
//	  "name": "search_code",
//	  "arguments": {"query": "user authentication logic", "num": 10}
//	}
//
//	Response: a JSON array of
//	{file_path, start_line, end_line, score, language, node_type, symbol_name, content}
//
// # Tool: analyze_impact
//
//	Request:
//	{"name": "analyze_impact", "arguments": {"symbol": "validate_email", "depth": 2}}
//
//	Response:
//	{root_symbol, total_affected, max_depth_reached, by_depth: [[{symbol, depth, file_path, line}]]}
//
// # Tool: get_symbol_context
//
//	Request:
//	{"name": "get_symbol_context", "arguments": {"symbol": "Store.Close"}}
//
//	Response:
//	{symbol, callers: [...], caller_count, callees: [...], callee_count}
//
// # Error handling
//
// Errors map to a small set of JSON-RPC-style codes:
//
//   - -32602: invalid params (missing or malformed arguments)
//   - -32603: internal error (store or model failure)
//   - -32001: symbol or repository not found
package mcp
