package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-path>",
		Short: "Delete a repository and every chunk, reference and file hash it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), args[0])
		},
	}
}

// runDelete accepts either a repository id directly, or a filesystem path
// that hashes to one (the same identity index computes from).
func runDelete(ctx context.Context, idOrPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	repoID := idOrPath
	if _, err := a.store.GetRepository(ctx, cfg.Namespace, repoID); err != nil {
		if absPath, absErr := filepath.Abs(idOrPath); absErr == nil {
			repoID = coretypes.RepositoryID(absPath)
		}
	}

	if err := a.store.DeleteRepository(ctx, cfg.Namespace, repoID); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "delete repository", err)
	}
	fmt.Printf("deleted %s\n", repoID)
	return nil
}
