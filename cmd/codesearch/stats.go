package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Aggregate file and chunk counts across every indexed repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context())
		},
	}
}

func runStats(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	repos, err := a.store.ListRepositories(ctx, cfg.Namespace)
	if err != nil {
		return err
	}

	var totalFiles, totalChunks int
	for _, r := range repos {
		totalFiles += r.FileCount
		totalChunks += r.ChunkCount
	}

	fmt.Printf("namespace:    %s\n", cfg.Namespace)
	fmt.Printf("repositories: %d\n", len(repos))
	fmt.Printf("files:        %d\n", totalFiles)
	fmt.Printf("chunks:       %d\n", totalChunks)
	return nil
}
