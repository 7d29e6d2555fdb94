package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codesearch/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DataDir:        t.TempDir(),
		Namespace:      "test",
		MockEmbeddings: true,
		Logger:         config.NewLogger("error"),
	}
}

func TestNewServer_WiresDependencies(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.searcher)
	assert.NotNil(t, s.analyzer)
	assert.NotNil(t, s.store)
}

func TestNewServer_MemoryStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.MemoryStorage = true

	s, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.store)
}

func callTool(t *testing.T, ctx context.Context, s *Server, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	switch name {
	case "search_code":
		return s.handleSearchCode(ctx, request)
	case "analyze_impact":
		return s.handleAnalyzeImpact(ctx, request)
	case "get_symbol_context":
		return s.handleGetSymbolContext(ctx, request)
	default:
		t.Fatalf("unknown tool %s", name)
		return nil, nil
	}
}

func TestHandleSearchCode_RequiresQuery(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = callTool(t, context.Background(), s, "search_code", map[string]interface{}{})
	assert.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleSearchCode_EmptyIndexReturnsEmptyResults(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	result, err := callTool(t, context.Background(), s, "search_code", map[string]interface{}{
		"query": "anything",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestHandleAnalyzeImpact_RequiresSymbol(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = callTool(t, context.Background(), s, "analyze_impact", map[string]interface{}{})
	assert.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleAnalyzeImpact_NoCallersReturnsEmptyTree(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	result, err := callTool(t, context.Background(), s, "analyze_impact", map[string]interface{}{
		"symbol": "NoSuchSymbol",
		"depth":  3,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestHandleGetSymbolContext_RequiresSymbol(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = callTool(t, context.Background(), s, "get_symbol_context", map[string]interface{}{})
	assert.Error(t, err)
}

func TestHandleGetSymbolContext_UnresolvedSymbolIsNotFound(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = callTool(t, context.Background(), s, "get_symbol_context", map[string]interface{}{
		"symbol": "NoSuchSymbol",
	})
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNotFound, mcpErr.Code)
}
