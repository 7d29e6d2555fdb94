package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed repositories in the current namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}
}

func runList(ctx context.Context) error {
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
	if len(repos) == 0 {
		fmt.Println("no repositories indexed")
		return nil
	}
	for _, r := range repos {
		fmt.Printf("%s  %-20s  %s  files=%d chunks=%d\n", r.ID, r.Name, r.RootPath, r.FileCount, r.ChunkCount)
	}
	return nil
}
