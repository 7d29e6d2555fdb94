package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/indexer"
	"github.com/dshills/codesearch/internal/storage"
)

func indexCmd() *cobra.Command {
	var name string
	var force bool

	cmd := &cobra.Command{
		Use:   "index <path>",
		Short: "Index a repository, or refresh it incrementally by content hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), args[0], name, force)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "override the repository's display name")
	cmd.Flags().BoolVar(&force, "force", false, "re-embed every file, ignoring stored content hashes")
	return cmd
}

func runIndex(ctx context.Context, path, name string, force bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindInvalidInput, "resolve path", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return coreerrors.Wrap(coreerrors.KindInvalidInput, "path does not exist", err)
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

	idx, err := a.buildIndexer()
	if err != nil {
		return err
	}

	result, err := idx.Run(ctx, absPath, indexer.Config{
		Namespace: cfg.Namespace,
		Name:      name,
		Force:     force,
		BuildMode: storage.BuildMode,
	})
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "index repository", err)
	}

	fmt.Printf("indexed %s\n", result.RepositoryID)
	fmt.Printf("  added: %d  modified: %d  deleted: %d  unchanged: %d  failed: %d\n",
		result.Added, result.Modified, result.Deleted, result.Unchanged, result.Failed)
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, "warning:", e)
	}
	return nil
}
