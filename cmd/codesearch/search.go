package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
)

func searchCmd() *cobra.Command {
	var num int
	var minScore float64
	var minScoreSet bool
	var languages []string
	var repositories []string
	var format string
	var noRerank bool
	var noTextSearch bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Hybrid semantic and keyword search over indexed repositories",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			minScoreSet = cmd.Flags().Changed("min-score")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := joinArgs(args)
			var minScorePtr *float64
			if minScoreSet {
				minScorePtr = &minScore
			}
			return runSearch(cmd.Context(), query, num, minScorePtr, languages, repositories, format, noRerank, noTextSearch)
		},
	}

	cmd.Flags().IntVar(&num, "num", 10, "maximum number of results to return")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "drop results scoring below this threshold, applied after fusion")
	cmd.Flags().StringArrayVar(&languages, "language", nil, "restrict results to this language (repeatable)")
	cmd.Flags().StringArrayVar(&repositories, "repository", nil, "restrict results to this repository id (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, vimgrep")
	cmd.Flags().BoolVar(&noRerank, "no-rerank", false, "skip the cross-encoder rerank stage")
	cmd.Flags().BoolVar(&noTextSearch, "no-text-search", false, "run the semantic leg only, skipping the keyword leg and fusion")

	return cmd
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

func runSearch(ctx context.Context, queryText string, num int, minScore *float64, languages, repositories []string, format string, noRerank, noTextSearch bool) error {
	switch format {
	case "text", "json", "vimgrep":
	default:
		return coreerrors.New(coreerrors.KindInvalidInput, fmt.Sprintf("unknown format %q", format))
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

	srch, err := a.buildSearcher()
	if err != nil {
		return err
	}

	query := coretypes.NewSearchQuery(queryText)
	if num > 0 {
		query.Num = num
	}
	query.MinScore = minScore
	query.RerankEnabled = !noRerank
	query.TextSearchEnabled = !noTextSearch
	query.Repositories = repositories
	for _, l := range languages {
		query.Languages = append(query.Languages, coretypes.Language(l))
	}

	results, err := srch.Search(ctx, cfg.Namespace, query)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "search", err)
	}

	switch format {
	case "json":
		return writeJSON(os.Stdout, toSearchResultJSON(results))
	case "vimgrep":
		printSearchVimgrep(os.Stdout, results)
	default:
		printSearchText(os.Stdout, results)
	}
	return nil
}
