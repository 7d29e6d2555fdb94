package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// BenchmarkRun_SmallRepo measures a full indexing run over a small
// synthetic repository with the pipeline's real batching and worker-pool
// logic, but stub parser/embedder ports so the benchmark isolates
// orchestration overhead rather than parsing or network cost.
func BenchmarkRun_SmallRepo(b *testing.B) {
	dir := b.TempDir()
	for i := 0; i < 50; i++ {
		writeBenchFile(b, dir, fmt.Sprintf("file%03d.go", i),
			fmt.Sprintf("package generated\nfunc Func%d() int { return %d }\n", i, i))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store := newMemStore()
		idx := New(store, &stubParser{}, walkFileSource{}, &stubEmbedder{dim: 384}, zerolog.Nop())

		if _, err := idx.Run(context.Background(), dir, Config{Namespace: "bench"}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRun_IncrementalNoChanges measures a re-index over an already
// fully-indexed repository, exercising the hash-compare skip path.
func BenchmarkRun_IncrementalNoChanges(b *testing.B) {
	dir := b.TempDir()
	for i := 0; i < 50; i++ {
		writeBenchFile(b, dir, fmt.Sprintf("file%03d.go", i),
			fmt.Sprintf("package generated\nfunc Func%d() int { return %d }\n", i, i))
	}

	store := newMemStore()
	idx := New(store, &stubParser{}, walkFileSource{}, &stubEmbedder{dim: 384}, zerolog.Nop())
	if _, err := idx.Run(context.Background(), dir, Config{Namespace: "bench"}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := idx.Run(context.Background(), dir, Config{Namespace: "bench"}); err != nil {
			b.Fatal(err)
		}
	}
}

func writeBenchFile(b *testing.B, dir, name, content string) {
	b.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		b.Fatal(err)
	}
}
