package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/dshills/codesearch/internal/mcp"
)

func mcpCmd() *cobra.Command {
	var httpPort int
	var public bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search_code, analyze_impact and get_symbol_context tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context(), httpPort, public)
		},
	}
	cmd.Flags().IntVar(&httpPort, "http", 0, "serve over streamable HTTP on this port instead of stdio")
	cmd.Flags().BoolVar(&public, "public", false, "bind the HTTP listener to all interfaces instead of localhost")
	return cmd
}

func runMCP(ctx context.Context, httpPort int, public bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := mcpserver.NewServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	if httpPort == 0 {
		return srv.ServeStdio(ctx)
	}

	host := "localhost"
	if public {
		host = "0.0.0.0"
	}
	return srv.ServeHTTP(fmt.Sprintf("%s:%d", host, httpPort))
}
