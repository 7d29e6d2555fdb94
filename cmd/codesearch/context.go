package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/codesearch/internal/coreerrors"
)

func contextCmd() *cobra.Command {
	var limit int
	var format string
	var repositories []string

	cmd := &cobra.Command{
		Use:   "context <symbol>",
		Short: "The immediate call-graph neighborhood of a symbol: who calls it, and what it calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContext(cmd.Context(), args[0], limit, format, repositories)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of callers and callees to list, each")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	cmd.Flags().StringArrayVar(&repositories, "repository", nil, "restrict lookup to this repository id (repeatable)")
	return cmd
}

func runContext(ctx context.Context, symbol string, limit int, format string, repositories []string) error {
	if format != "text" && format != "json" {
		return coreerrors.New(coreerrors.KindInvalidInput, "unknown format: "+format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	symCtx, err := a.buildAnalyzer().Context(ctx, cfg.Namespace, symbol, repositories)
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(os.Stdout, toContextJSON(symCtx, limit))
	}
	printContextText(os.Stdout, symCtx, limit)
	return nil
}
