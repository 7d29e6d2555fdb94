package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/dshills/codesearch/internal/callgraph"
	"github.com/dshills/codesearch/internal/config"
	"github.com/dshills/codesearch/internal/embedder"
	"github.com/dshills/codesearch/internal/reranker"
	"github.com/dshills/codesearch/internal/searcher"
	"github.com/dshills/codesearch/internal/storage"
)

const (
	// ServerName is the MCP server name.
	ServerName = "codesearch"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies. It exposes
// search and call-graph queries only; indexing is a CLI-only operation
// (§6's MCP surface lists three read-only tools).
type Server struct {
	mcp       *server.MCPServer
	store     *storage.Store
	searcher  *searcher.Searcher
	analyzer  *callgraph.Analyzer
	namespace string
	logger    zerolog.Logger
}

// NewServer opens the store at cfg.DataDir (or an in-memory database when
// cfg.MemoryStorage is set), builds the embedder, reranker and call-graph
// ports from cfg, and registers the MCP tool set.
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	dbPath := ":memory:"
	if !cfg.MemoryStorage {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		dbPath = filepath.Join(cfg.DataDir, "codesearch.db")
	}

	store, err := storage.Open(ctx, dbPath, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	emb, err := embedder.New(embedder.FactoryConfig{
		Provider:     cfg.EmbeddingProvider,
		JinaAPIKey:   cfg.JinaAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		Mock:         cfg.MockEmbeddings,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	rerank := reranker.New()
	srch := searcher.New(store, emb, rerank, nil, cfg.Logger)
	analyzer := callgraph.New(store)

	mcpServer := server.NewMCPServer(ServerName, ServerVersion)

	s := &Server{
		mcp:       mcpServer,
		store:     store,
		searcher:  srch,
		analyzer:  analyzer,
		namespace: cfg.Namespace,
		logger:    cfg.Logger.With().Str("component", "mcp").Logger(),
	}
	s.registerTools()

	return s, nil
}

// Close releases the underlying store handle.
func (s *Server) Close() error {
	return s.store.Close()
}

// ServeStdio starts the MCP server on stdio and blocks until the transport
// closes. ctx is not consulted: cancelling it does not stop the server.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// ServeHTTP starts the MCP server on the given address using the
// streamable HTTP transport, for --http deployments (§6).
func (s *Server) ServeHTTP(addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp)
	return httpServer.Start(addr)
}

// registerTools registers the three read-only tools of §6's MCP surface,
// each wrapped with a request-scoped correlation id for logging.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchCodeTool(), s.traced("search_code", s.handleSearchCode))
	s.mcp.AddTool(analyzeImpactTool(), s.traced("analyze_impact", s.handleAnalyzeImpact))
	s.mcp.AddTool(getSymbolContextTool(), s.traced("get_symbol_context", s.handleGetSymbolContext))
}

// traced wraps a tool handler so every call is logged against a
// correlation id, letting a slow or failing tool call be traced across
// the surrounding stdio/HTTP transport logs.
func (s *Server) traced(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID := uuid.NewString()
		log := s.logger.With().Str("tool", tool).Str("request_id", requestID).Logger()
		log.Debug().Msg("tool call started")

		result, err := handler(ctx, request)
		if err != nil {
			log.Warn().Err(err).Msg("tool call failed")
		} else {
			log.Debug().Msg("tool call completed")
		}
		return result, err
	}
}
