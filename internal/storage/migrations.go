package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion tracks the database schema version.
const CurrentSchemaVersion = "1.0.0"

// Migration represents a database schema migration.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order.
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1Up, Down: migrationV1Down},
}

// migrationV1Up creates one physical SQLite schema shared by every
// namespace. Namespace isolation (§4.1, §6 "one schema per namespace") is
// implemented as a `namespace` column on every table rather than SQLite
// ATTACH DATABASE-style physical schemas — see DESIGN.md for the
// trade-off. Every query the store issues is scoped by namespace (and,
// within a namespace, optionally by repository).
const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- One row per namespace records the embedding dimension that namespace
-- committed to on its first write. §3: "dim(embedding) == model.dim for
-- every embedding stored under a namespace; cross-namespace dimensions
-- may differ."
CREATE TABLE IF NOT EXISTS namespace_meta (
    namespace TEXT PRIMARY KEY,
    dimension INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS repositories (
    id TEXT PRIMARY KEY,
    namespace TEXT NOT NULL,
    name TEXT NOT NULL,
    root_path TEXT NOT NULL,
    build_mode TEXT NOT NULL DEFAULT '',
    file_count INTEGER NOT NULL DEFAULT 0,
    chunk_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(namespace, root_path)
);

CREATE INDEX IF NOT EXISTS idx_repositories_namespace ON repositories(namespace);

CREATE TABLE IF NOT EXISTS file_hashes (
    repo_id TEXT NOT NULL,
    file_path TEXT NOT NULL,
    namespace TEXT NOT NULL,
    sha256 TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (repo_id, file_path),
    FOREIGN KEY (repo_id) REFERENCES repositories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_file_hashes_repo ON file_hashes(repo_id);

CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    repo_id TEXT NOT NULL,
    namespace TEXT NOT NULL,
    file_path TEXT NOT NULL,
    language TEXT NOT NULL,
    node_kind TEXT NOT NULL,
    symbol_name TEXT NOT NULL DEFAULT '',
    qualified_name TEXT NOT NULL DEFAULT '',
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (repo_id) REFERENCES repositories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_repo_file ON chunks(repo_id, file_path);
CREATE INDEX IF NOT EXISTS idx_chunks_namespace ON chunks(namespace);
CREATE INDEX IF NOT EXISTS idx_chunks_symbol ON chunks(symbol_name);

-- Standalone (non external-content) FTS5 index. Chunk ids are
-- content-addressed hashes, not integer rowids, so this table cannot use
-- FTS5's 'content='/'content_rowid=' external-content mode (which
-- requires an INTEGER PRIMARY KEY on the shadowed table); rows are kept in
-- sync by application code inside the same transaction that writes
-- 'chunks', in place of the teacher's AI/AD/AU triggers.
CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    chunk_id UNINDEXED,
    namespace UNINDEXED,
    content,
    symbol_name,
    qualified_name
);

CREATE TABLE IF NOT EXISTS embeddings (
    chunk_id TEXT PRIMARY KEY,
    namespace TEXT NOT NULL,
    vector BLOB NOT NULL,
    dimension INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_embeddings_namespace ON embeddings(namespace);

CREATE TABLE IF NOT EXISTS refs (
    id TEXT PRIMARY KEY,
    repo_id TEXT NOT NULL,
    namespace TEXT NOT NULL,
    file_path TEXT NOT NULL,
    line INTEGER NOT NULL,
    column INTEGER NOT NULL,
    caller_symbol TEXT NOT NULL DEFAULT '',
    caller_file_path TEXT NOT NULL DEFAULT '',
    enclosing_scope TEXT NOT NULL DEFAULT '',
    callee_symbol TEXT NOT NULL,
    kind TEXT NOT NULL,
    language TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (repo_id) REFERENCES repositories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_refs_repo_file ON refs(repo_id, file_path);
CREATE INDEX IF NOT EXISTS idx_refs_callee ON refs(callee_symbol);
CREATE INDEX IF NOT EXISTS idx_refs_caller ON refs(caller_symbol);
CREATE INDEX IF NOT EXISTS idx_refs_namespace ON refs(namespace);
`

const migrationV1Down = `
DROP TABLE IF EXISTS refs;
DROP TABLE IF EXISTS embeddings;
DROP TABLE IF EXISTS chunks_fts;
DROP TABLE IF EXISTS chunks;
DROP TABLE IF EXISTS file_hashes;
DROP TABLE IF EXISTS repositories;
DROP TABLE IF EXISTS namespace_meta;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations, gated by semver comparison
// against the version recorded in schema_version, matching the teacher's
// approach.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion *semver.Version
	switch {
	case err == sql.ErrNoRows:
		currentVersion = semver.MustParse("0.0.0")
	case err != nil:
		return fmt.Errorf("failed to check schema_version table: %w", err)
	default:
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		switch {
		case err == sql.ErrNoRows || currentVersionStr == "":
			currentVersion = semver.MustParse("0.0.0")
		case err != nil:
			return fmt.Errorf("failed to read schema_version: %w", err)
		default:
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !currentVersion.LessThan(migrationVersion) {
			continue
		}
		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}
		currentVersion = migrationVersion
	}

	return nil
}
