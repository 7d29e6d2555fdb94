package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/codesearch/internal/coreerrors"
)

func impactCmd() *cobra.Command {
	var depth int
	var format string
	var repositories []string

	cmd := &cobra.Command{
		Use:   "impact <symbol>",
		Short: "Breadth-first search over the call graph: every caller reachable from a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImpact(cmd.Context(), args[0], depth, format, repositories)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 5, "maximum number of caller hops to traverse")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	cmd.Flags().StringArrayVar(&repositories, "repository", nil, "restrict traversal to this repository id (repeatable)")
	return cmd
}

func runImpact(ctx context.Context, symbol string, depth int, format string, repositories []string) error {
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

	analysis, err := a.buildAnalyzer().Impact(ctx, cfg.Namespace, symbol, depth, repositories)
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(os.Stdout, toImpactJSON(analysis))
	}
	printImpactText(os.Stdout, analysis)
	return nil
}
