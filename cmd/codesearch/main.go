// Command codesearch is the single-binary CLI for indexing repositories
// and running semantic, keyword and call-graph queries against them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/codesearch/internal/coreerrors"
)

// Global flags, shared by every subcommand through the persistent flag
// set on the root command.
var (
	flagDataDir        string
	flagNamespace      string
	flagChromaURL      string
	flagMemoryStorage  bool
	flagMockEmbeddings bool
	flagVerbose        bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "codesearch:", err)
		os.Exit(coreerrors.ExitCode(err))
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "codesearch",
		Short:         "Local semantic and keyword search over indexed source repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "database and state directory (default ~/.codesearch)")
	cmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "logical partition of the store (default main)")
	cmd.PersistentFlags().StringVar(&flagChromaURL, "chroma-url", "", "optional remote vector store URL")
	cmd.PersistentFlags().BoolVar(&flagMemoryStorage, "memory-storage", false, "use an in-memory database instead of a file")
	cmd.PersistentFlags().BoolVar(&flagMockEmbeddings, "mock-embeddings", false, "force the deterministic local embedder")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(indexCmd())
	cmd.AddCommand(searchCmd())
	cmd.AddCommand(impactCmd())
	cmd.AddCommand(contextCmd())
	cmd.AddCommand(listCmd())
	cmd.AddCommand(statsCmd())
	cmd.AddCommand(deleteCmd())
	cmd.AddCommand(mcpCmd())

	return cmd
}
