package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dshills/codesearch/internal/callgraph"
	"github.com/dshills/codesearch/internal/config"
	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/embedder"
	"github.com/dshills/codesearch/internal/filesource"
	"github.com/dshills/codesearch/internal/indexer"
	"github.com/dshills/codesearch/internal/parser"
	"github.com/dshills/codesearch/internal/ports"
	"github.com/dshills/codesearch/internal/reranker"
	"github.com/dshills/codesearch/internal/searcher"
	"github.com/dshills/codesearch/internal/storage"
)

// loadConfig reads the on-disk/environment configuration and applies any
// global flags the user passed, which take priority over both.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load("")
	if err != nil {
		return config.Config{}, coreerrors.Wrap(coreerrors.KindInvalidInput, "load configuration", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagNamespace != "" {
		cfg.Namespace = flagNamespace
	}
	if flagChromaURL != "" {
		cfg.ChromaURL = flagChromaURL
	}
	if flagMemoryStorage {
		cfg.MemoryStorage = true
	}
	if flagMockEmbeddings {
		cfg.MockEmbeddings = true
	}
	if flagVerbose {
		cfg.Logger = config.NewLogger("debug")
	}
	return cfg, nil
}

// app bundles the store and configuration a subcommand needs; ports are
// built lazily since not every command needs an embedder.
type app struct {
	cfg   config.Config
	store *storage.Store
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	dbPath := ":memory:"
	if !cfg.MemoryStorage {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "create data directory", err)
		}
		dbPath = filepath.Join(cfg.DataDir, "codesearch.db")
	}

	store, err := storage.Open(ctx, dbPath, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: store}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) buildEmbedder() (ports.Embedder, error) {
	return embedder.New(embedder.FactoryConfig{
		Provider:     a.cfg.EmbeddingProvider,
		JinaAPIKey:   a.cfg.JinaAPIKey,
		OpenAIAPIKey: a.cfg.OpenAIAPIKey,
		Mock:         a.cfg.MockEmbeddings,
	})
}

func (a *app) buildIndexer() (*indexer.Indexer, error) {
	emb, err := a.buildEmbedder()
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindModel, "initialize embedder", err)
	}
	return indexer.New(a.store, parser.New(), filesource.New(), emb, a.cfg.Logger), nil
}

func (a *app) buildSearcher() (*searcher.Searcher, error) {
	emb, err := a.buildEmbedder()
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindModel, "initialize embedder", err)
	}
	return searcher.New(a.store, emb, reranker.New(), nil, a.cfg.Logger), nil
}

func (a *app) buildAnalyzer() *callgraph.Analyzer {
	return callgraph.New(a.store)
}
