package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/codesearch/internal/chunker"
	"github.com/dshills/codesearch/internal/coretypes"
	"github.com/dshills/codesearch/internal/ports"
	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of chunks embedded per embedder call when
// Config.BatchSize is unset, within §4.2's recommended 64-128 range.
const DefaultBatchSize = 64

// Store is the subset of storage.Store the indexer writes through.
type Store interface {
	EnsureNamespaceDimension(ctx context.Context, namespace string, dim int) error
	FileHash(ctx context.Context, repoID, filePath string) (string, error)
	IndexedFiles(ctx context.Context, repoID string) ([]string, error)
	ReplaceFileContents(ctx context.Context, namespace, repoID, filePath, sha256 string, chunks []coretypes.Chunk, embeddings map[string][]float32, refs []coretypes.Reference) error
	DeleteFileContents(ctx context.Context, repoID, filePath string) error
	UpsertRepository(ctx context.Context, repo *coretypes.Repository) error
	RepositoryStats(ctx context.Context, repoID string) (fileCount, chunkCount int, err error)
}

// Indexer coordinates the walk -> parse -> chunk -> embed -> store
// pipeline (§4.2): for every path the file source yields, an unchanged
// hash short-circuits the rest of the pipeline; otherwise the parser and
// chunker run before the accumulated batch reaches the embedder.
type Indexer struct {
	store    Store
	parser   ports.Parser
	source   ports.FileSource
	embedder ports.Embedder
	logger   zerolog.Logger

	workers   int
	batchSize int

	lock IndexLock
}

// Config controls a single Run invocation.
type Config struct {
	Namespace     string
	Name          string // repository display name, default filepath.Base(rootPath)
	Force         bool   // ignore stored hashes, re-embed everything
	Workers       int    // default runtime.NumCPU()
	BatchSize     int    // chunks per embedder call, default DefaultBatchSize
	IncludeVendor bool
	BuildMode     string // recorded on the repository row for diagnostics ("cgo" or "purego")
}

// Result summarizes one Run.
type Result struct {
	RepositoryID string
	Added        int32
	Modified     int32
	Deleted      int32
	Unchanged    int32
	Failed       int32
	Errors       []string
}

// New builds an Indexer from its ports.
func New(store Store, parser ports.Parser, source ports.FileSource, embedder ports.Embedder, logger zerolog.Logger) *Indexer {
	return &Indexer{
		store:    store,
		parser:   parser,
		source:   source,
		embedder: embedder,
		logger:   logger.With().Str("component", "indexer").Logger(),
	}
}

// Run indexes rootPath into cfg.Namespace. Only one Run may execute
// concurrently per Indexer instance; a second concurrent call returns an
// error immediately rather than blocking, matching the exclusive
// namespace write lock of §5.
func (idx *Indexer) Run(ctx context.Context, rootPath string, cfg Config) (*Result, error) {
	if !idx.lock.TryAcquire() {
		return nil, fmt.Errorf("indexer is already running")
	}
	defer idx.lock.Release()

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	idx.workers = cfg.Workers
	idx.batchSize = cfg.BatchSize

	if err := idx.store.EnsureNamespaceDimension(ctx, cfg.Namespace, idx.embedder.Dimension()); err != nil {
		return nil, err
	}

	repoID := coretypes.RepositoryID(rootPath)
	result := &Result{RepositoryID: repoID}

	seen := &sync.Map{} // file paths encountered on this walk

	if err := idx.walkAndIndex(ctx, rootPath, repoID, cfg, seen, result); err != nil {
		return nil, err
	}

	if err := idx.removeDeletedFiles(ctx, repoID, seen, result); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = filepath.Base(rootPath)
	}
	repo := &coretypes.Repository{
		ID:        repoID,
		Name:      name,
		RootPath:  rootPath,
		Namespace: cfg.Namespace,
		BuildMode: cfg.BuildMode,
	}
	if fileCount, chunkCount, err := idx.store.RepositoryStats(ctx, repoID); err == nil {
		repo.UpdateStats(fileCount, chunkCount)
	}
	if err := idx.store.UpsertRepository(ctx, repo); err != nil {
		return nil, err
	}

	return result, nil
}

// walkAndIndex fans the file walk out over a bounded worker pool, indexing
// each file independently. A per-file failure is recorded and skipped
// rather than aborting the run (§4.2's error policy); only store errors
// propagate as fatal.
func (idx *Indexer) walkAndIndex(ctx context.Context, rootPath, repoID string, cfg Config, seen *sync.Map, result *Result) error {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, idx.workers)
	var mu sync.Mutex

	walkErr := idx.source.Walk(ctx, rootPath, func(path string) error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		case sem <- struct{}{}:
		}

		g.Go(func() error {
			defer func() { <-sem }()
			return idx.indexOneFile(gctx, rootPath, repoID, path, cfg, seen, result, &mu)
		})
		return nil
	})
	if walkErr != nil {
		_ = g.Wait()
		return fmt.Errorf("walk %s: %w", rootPath, walkErr)
	}
	return g.Wait()
}

func (idx *Indexer) indexOneFile(ctx context.Context, rootPath, repoID, absPath string, cfg Config, seen *sync.Map, result *Result, mu *sync.Mutex) error {
	relPath, err := filepath.Rel(rootPath, absPath)
	if err != nil {
		return nil
	}
	seen.Store(relPath, struct{}{})

	lang := coretypes.LanguageFromPath(relPath)
	if !lang.HasParserAdapter() || !idx.parser.SupportsLanguage(lang) {
		return nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		idx.recordFailure(mu, result, relPath, err)
		return nil
	}

	sum := sha256.Sum256(content)
	newHash := hex.EncodeToString(sum[:])

	oldHash, err := idx.store.FileHash(ctx, repoID, relPath)
	if err != nil {
		return err
	}
	if !cfg.Force && oldHash == newHash {
		atomic.AddInt32(&result.Unchanged, 1)
		return nil
	}

	chunks, refs, err := idx.parser.Parse(ctx, repoID, relPath, content)
	if err != nil {
		idx.logger.Warn().Err(err).Str("path", relPath).Msg("parse failed, skipping file")
		idx.recordFailure(mu, result, relPath, err)
		return nil
	}

	var split []coretypes.Chunk
	for _, c := range chunks {
		split = append(split, chunker.SplitOversized(repoID, c)...)
	}

	embeddings, err := idx.embedBatch(ctx, split)
	if err != nil {
		idx.logger.Warn().Err(err).Str("path", relPath).Msg("embedding failed, skipping file")
		idx.recordFailure(mu, result, relPath, err)
		return nil
	}

	if err := idx.store.ReplaceFileContents(ctx, cfg.Namespace, repoID, relPath, newHash, split, embeddings, refs); err != nil {
		return fmt.Errorf("replace contents for %s: %w", relPath, err)
	}

	if oldHash == "" {
		atomic.AddInt32(&result.Added, 1)
	} else {
		atomic.AddInt32(&result.Modified, 1)
	}
	return nil
}

// embedBatch calls the embedder port in chunks of idx.batchSize, in
// insertion order, and zips the returned vectors back onto their chunk
// ids (§4.2 step 4's batching contract).
func (idx *Indexer) embedBatch(ctx context.Context, chunks []coretypes.Chunk) (map[string][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	out := make(map[string][]float32, len(chunks))
	for start := 0; start < len(chunks); start += idx.batchSize {
		end := start + idx.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := idx.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}
		for i, c := range batch {
			out[c.ID] = vectors[i]
		}
	}
	return out, nil
}

// removeDeletedFiles diffs the store's recorded files for repoID against
// what this walk actually saw, deleting the contents of anything missing
// on disk (§4.2 step 5).
func (idx *Indexer) removeDeletedFiles(ctx context.Context, repoID string, seen *sync.Map, result *Result) error {
	indexed, err := idx.store.IndexedFiles(ctx, repoID)
	if err != nil {
		return err
	}
	for _, path := range indexed {
		if _, ok := seen.Load(path); ok {
			continue
		}
		if err := idx.store.DeleteFileContents(ctx, repoID, path); err != nil {
			return fmt.Errorf("delete stale file %s: %w", path, err)
		}
		atomic.AddInt32(&result.Deleted, 1)
	}
	return nil
}

func (idx *Indexer) recordFailure(mu *sync.Mutex, result *Result, path string, err error) {
	atomic.AddInt32(&result.Failed, 1)
	mu.Lock()
	result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
	mu.Unlock()
}
