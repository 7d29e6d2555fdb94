package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codesearch/internal/coretypes"
)

// walkFileSource implements ports.FileSource by walking the real
// filesystem, mirroring internal/filesource's contract without gitignore
// handling (irrelevant to these tests).
type walkFileSource struct{}

func (walkFileSource) Walk(_ context.Context, root string, fn func(string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return fn(path)
	})
}

// stubParser produces one chunk per file, named after the file's base name,
// so tests can assert on chunk counts without a real Go AST parser.
type stubParser struct {
	failOn map[string]bool
}

func (p *stubParser) Parse(_ context.Context, repoID, path string, content []byte) ([]coretypes.Chunk, []coretypes.Reference, error) {
	if p.failOn[path] {
		return nil, nil, assertErr("parse failed for " + path)
	}
	chunk := coretypes.Chunk{
		ID:           coretypes.ChunkID(repoID, path, 1, "Stub"),
		RepositoryID: repoID,
		FilePath:     path,
		Language:     coretypes.LanguageGo,
		NodeKind:     coretypes.NodeKindFunction,
		SymbolName:   "Stub",
		StartLine:    1,
		EndLine:      1,
		Content:      string(content),
	}
	return []coretypes.Chunk{chunk}, nil, nil
}

func (p *stubParser) SupportsLanguage(lang coretypes.Language) bool {
	return lang == coretypes.LanguageGo
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

// stubEmbedder returns a fixed-dimension zero vector per text and counts
// how many Embed calls it received, to assert batching behavior.
type stubEmbedder struct {
	mu    sync.Mutex
	calls int
	dim   int
	err   error
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int   { return e.dim }
func (e *stubEmbedder) Provider() string { return "stub" }
func (e *stubEmbedder) Model() string    { return "stub-v1" }

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// memStore is an in-memory Store fake, enough to drive Indexer.Run without
// a real database.
type memStore struct {
	mu    sync.Mutex
	files map[string]string // relPath -> sha256
	repos map[string]*coretypes.Repository
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string]string), repos: make(map[string]*coretypes.Repository)}
}

func (s *memStore) EnsureNamespaceDimension(_ context.Context, _ string, _ int) error {
	return nil
}

func (s *memStore) FileHash(_ context.Context, _, filePath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[filePath], nil
}

func (s *memStore) IndexedFiles(_ context.Context, _ string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) ReplaceFileContents(_ context.Context, _, _, filePath, sha256 string, _ []coretypes.Chunk, _ map[string][]float32, _ []coretypes.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filePath] = sha256
	return nil
}

func (s *memStore) DeleteFileContents(_ context.Context, _, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, filePath)
	return nil
}

func (s *memStore) UpsertRepository(_ context.Context, repo *coretypes.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[repo.ID] = repo
	return nil
}

func (s *memStore) RepositoryStats(_ context.Context, _ string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files), 0, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestIndexer(store Store, parser *stubParser, embedder *stubEmbedder) *Indexer {
	if embedder == nil {
		embedder = &stubEmbedder{dim: 8}
	}
	if parser == nil {
		parser = &stubParser{}
	}
	return New(store, parser, walkFileSource{}, embedder, zerolog.Nop())
}

func TestRun_AddsNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")
	writeFile(t, dir, "b.go", "package b\nfunc B() {}\n")

	store := newMemStore()
	idx := newTestIndexer(store, nil, nil)

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})

	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Added)
	assert.EqualValues(t, 0, result.Modified)
	assert.EqualValues(t, 0, result.Failed)
}

func TestRun_SkipsUnchangedFilesOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")

	store := newMemStore()
	idx := newTestIndexer(store, nil, nil)

	_, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Added)
	assert.EqualValues(t, 0, result.Modified)
	assert.EqualValues(t, 1, result.Unchanged)
}

func TestRun_ForceReembedsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")

	store := newMemStore()
	idx := newTestIndexer(store, nil, nil)

	_, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test", Force: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Modified)
	assert.EqualValues(t, 0, result.Unchanged)
}

func TestRun_DetectsModifiedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")

	store := newMemStore()
	idx := newTestIndexer(store, nil, nil)

	_, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("package a\nfunc A() { return }\n"), 0o644))

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Modified)
}

func TestRun_DetectsDeletedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")

	store := newMemStore()
	idx := newTestIndexer(store, nil, nil)

	_, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Deleted)
}

func TestRun_SkipsUnsupportedLanguages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")
	writeFile(t, dir, "README.md", "# hello\n")

	store := newMemStore()
	idx := newTestIndexer(store, nil, nil)

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Added)
}

func TestRun_ParseFailureDoesNotUpdateHash(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")

	store := newMemStore()
	parser := &stubParser{failOn: map[string]bool{"a.go": true}}
	idx := newTestIndexer(store, parser, nil)

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Failed)
	assert.Empty(t, store.files["a.go"])
}

func TestRun_EmbeddingFailureDoesNotUpdateHash(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")

	store := newMemStore()
	embedder := &stubEmbedder{dim: 8, err: assertErr("embedding backend down")}
	idx := newTestIndexer(store, nil, embedder)

	result, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Failed)
	assert.Empty(t, store.files["a.go"])
}

func TestRun_BatchesEmbedCalls(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, dir, filepathName(i), "package a\nfunc A() {}\n")
	}

	store := newMemStore()
	embedder := &stubEmbedder{dim: 8}
	idx := newTestIndexer(store, nil, embedder)

	_, err := idx.Run(context.Background(), dir, Config{Namespace: "test", BatchSize: 1})
	require.NoError(t, err)

	// One chunk per file, batch size 1: at least one Embed call per file.
	assert.GreaterOrEqual(t, embedder.callCount(), 5)
}

func filepathName(i int) string {
	return string(rune('a'+i)) + ".go"
}

func TestRun_RejectsConcurrentRuns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nfunc A() {}\n")

	store := newMemStore()
	idx := newTestIndexer(store, nil, nil)

	require.True(t, idx.lock.TryAcquire())
	_, err := idx.Run(context.Background(), dir, Config{Namespace: "test"})
	assert.Error(t, err)
	idx.lock.Release()
}
