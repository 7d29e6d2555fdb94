// Package storage persists repositories, chunks, embeddings and call-graph
// references in a single SQLite database file, and answers the vector,
// keyword, and graph queries the searcher and callgraph packages need.
//
// Two build modes select the SQLite driver (see build_cgo.go /
// build_purego.go): a cgo build links github.com/mattn/go-sqlite3 and the
// sqlite-vec extension for SQL-level cosine distance; a purego build links
// modernc.org/sqlite and computes cosine distance in Go over deserialized
// float32 blobs. Everything above the driver boundary is build-mode
// agnostic.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
	"github.com/rs/zerolog"
)

// Store is the persistence port every command-layer and pipeline package
// depends on. A single *Store wraps one SQLite database file and is safe
// for concurrent use; writes are serialized behind mu to match SQLite's
// single-writer model under WAL.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	mu     sync.Mutex
}

// Open opens (creating if necessary) the SQLite database at path, enables
// WAL mode and foreign keys, and applies any pending migrations.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open(DriverName, path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "open database", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "ping database", err)
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "apply migrations", err)
	}

	return &Store{db: db, logger: logger.With().Str("component", "storage").Logger()}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureNamespaceDimension records dim as the committed embedding
// dimension for namespace on first use, or returns a Storage error if a
// later call disagrees (§3's per-namespace dimension invariant).
func (s *Store) EnsureNamespaceDimension(ctx context.Context, namespace string, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing int
	err := s.db.QueryRowContext(ctx, `SELECT dimension FROM namespace_meta WHERE namespace = ?`, namespace).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err := s.db.ExecContext(ctx, `INSERT INTO namespace_meta (namespace, dimension) VALUES (?, ?)`, namespace, dim)
		if err != nil {
			return coreerrors.Wrap(coreerrors.KindStorage, "record namespace dimension", err)
		}
		return nil
	case err != nil:
		return coreerrors.Wrap(coreerrors.KindStorage, "read namespace dimension", err)
	case existing != dim:
		return coreerrors.New(coreerrors.KindStorage, fmt.Sprintf(
			"namespace %q already committed to embedding dimension %d, got %d", namespace, existing, dim))
	default:
		return nil
	}
}

// UpsertRepository inserts or updates a repository row keyed by id.
func (s *Store) UpsertRepository(ctx context.Context, repo *coretypes.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = now
	}
	repo.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repositories (id, namespace, name, root_path, build_mode, file_count, chunk_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			build_mode = excluded.build_mode,
			file_count = excluded.file_count,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, repo.ID, repo.Namespace, repo.Name, repo.RootPath, repo.BuildMode, repo.FileCount, repo.ChunkCount, repo.CreatedAt, repo.UpdatedAt)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "upsert repository", err)
	}
	return nil
}

// GetRepository looks up a repository by id within a namespace.
func (s *Store) GetRepository(ctx context.Context, namespace, id string) (*coretypes.Repository, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, namespace, name, root_path, build_mode, file_count, chunk_count, created_at, updated_at
		FROM repositories WHERE namespace = ? AND id = ?
	`, namespace, id)
	repo, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, coreerrors.New(coreerrors.KindNotFound, fmt.Sprintf("repository %s not found in namespace %s", id, namespace))
	}
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "get repository", err)
	}
	return repo, nil
}

// ListRepositories returns every repository registered in a namespace,
// ordered by name.
func (s *Store) ListRepositories(ctx context.Context, namespace string) ([]coretypes.Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, namespace, name, root_path, build_mode, file_count, chunk_count, created_at, updated_at
		FROM repositories WHERE namespace = ? ORDER BY name
	`, namespace)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "list repositories", err)
	}
	defer rows.Close()

	var out []coretypes.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "scan repository", err)
		}
		out = append(out, *repo)
	}
	return out, rows.Err()
}

// DeleteRepository removes a repository and, via ON DELETE CASCADE, every
// chunk, embedding, reference and file hash that belongs to it. chunks_fts
// has no foreign key to chunks, so its rows for the repository's chunks
// are deleted explicitly first, inside the same transaction, mirroring
// deleteFileContentsTx; otherwise those rows are orphaned and a later
// re-index that reproduces the same content-addressed chunk ids (§8's
// index/delete/index round-trip law) would leave chunks_fts holding two
// rows per chunk id, and TextSearch would return each chunk twice.
func (s *Store) DeleteRepository(ctx context.Context, namespace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chunks_fts WHERE chunk_id IN (SELECT id FROM chunks WHERE repo_id = ?)
	`, id); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "delete fts rows", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM repositories WHERE namespace = ? AND id = ?`, namespace, id)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "delete repository", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return coreerrors.New(coreerrors.KindNotFound, fmt.Sprintf("repository %s not found in namespace %s", id, namespace))
	}

	if err := tx.Commit(); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "commit transaction", err)
	}
	return nil
}

// RepositoryStats counts a repository's currently indexed files and
// chunks directly from file_hashes/chunks, so Run can refresh
// Repository.FileCount/ChunkCount after a walk without keeping its own
// running totals across incremental runs.
func (s *Store) RepositoryStats(ctx context.Context, repoID string) (fileCount, chunkCount int, err error) {
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_hashes WHERE repo_id = ?`, repoID).Scan(&fileCount); err != nil {
		return 0, 0, coreerrors.Wrap(coreerrors.KindStorage, "count indexed files", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE repo_id = ?`, repoID).Scan(&chunkCount); err != nil {
		return 0, 0, coreerrors.Wrap(coreerrors.KindStorage, "count chunks", err)
	}
	return fileCount, chunkCount, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (*coretypes.Repository, error) {
	var repo coretypes.Repository
	err := row.Scan(&repo.ID, &repo.Namespace, &repo.Name, &repo.RootPath, &repo.BuildMode,
		&repo.FileCount, &repo.ChunkCount, &repo.CreatedAt, &repo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &repo, nil
}
