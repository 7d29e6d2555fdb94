package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
)

// FileHash returns the last recorded content hash for a file, or "" if the
// file has never been indexed. The indexer uses this for its incremental
// skip check (§4.2 step 1).
func (s *Store) FileHash(ctx context.Context, repoID, filePath string) (string, error) {
	var sha string
	err := s.db.QueryRowContext(ctx, `SELECT sha256 FROM file_hashes WHERE repo_id = ? AND file_path = ?`, repoID, filePath).Scan(&sha)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", coreerrors.Wrap(coreerrors.KindStorage, "read file hash", err)
	}
	return sha, nil
}

// IndexedFiles returns every file path currently recorded for a
// repository, used by the indexer to detect files that were deleted from
// disk since the last run (§4.2 step 4).
func (s *Store) IndexedFiles(ctx context.Context, repoID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path FROM file_hashes WHERE repo_id = ?`, repoID)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "list indexed files", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "scan indexed file", err)
		}
		out = append(out, path)
	}
	return out, rows.Err()
}

// ReplaceFileContents atomically replaces every chunk, embedding and
// reference belonging to a single file with the given sets, and records
// the file's new content hash. It is the indexer's unit of work: a file is
// either fully re-indexed or, on error, left exactly as it was.
func (s *Store) ReplaceFileContents(ctx context.Context, namespace, repoID, filePath, sha256 string, chunks []coretypes.Chunk, embeddings map[string][]float32, refs []coretypes.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "begin transaction", err)
	}
	defer tx.Rollback()

	if err := deleteFileContentsTx(ctx, tx, repoID, filePath); err != nil {
		return err
	}

	for i := range chunks {
		c := &chunks[i]
		if err := c.Validate(); err != nil {
			return coreerrors.Wrap(coreerrors.KindInvalidInput, "invalid chunk", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, repo_id, namespace, file_path, language, node_kind, symbol_name, qualified_name, start_line, end_line, content)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.RepositoryID, namespace, c.FilePath, string(c.Language), string(c.NodeKind), c.SymbolName, c.QualifiedName, c.StartLine, c.EndLine, c.Content)
		if err != nil {
			return coreerrors.Wrap(coreerrors.KindStorage, "insert chunk", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunks_fts (chunk_id, namespace, content, symbol_name, qualified_name) VALUES (?, ?, ?, ?, ?)
		`, c.ID, namespace, c.Content, c.SymbolName, c.QualifiedName)
		if err != nil {
			return coreerrors.Wrap(coreerrors.KindStorage, "insert fts row", err)
		}

		if vec, ok := embeddings[c.ID]; ok {
			blob := encodeVector(vec)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO embeddings (chunk_id, namespace, vector, dimension) VALUES (?, ?, ?, ?)
			`, c.ID, namespace, blob, len(vec))
			if err != nil {
				return coreerrors.Wrap(coreerrors.KindStorage, "insert embedding", err)
			}
		}
	}

	for i := range refs {
		r := &refs[i]
		if err := r.Validate(); err != nil {
			return coreerrors.Wrap(coreerrors.KindInvalidInput, "invalid reference", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO refs (id, repo_id, namespace, file_path, line, column, caller_symbol, caller_file_path, enclosing_scope, callee_symbol, kind, language)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.RepositoryID, namespace, r.FilePath, r.Line, r.Column, r.CallerSymbol, r.CallerFilePath, r.EnclosingScope, r.CalleeSymbol, string(r.Kind), string(r.Language))
		if err != nil {
			return coreerrors.Wrap(coreerrors.KindStorage, "insert reference", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO file_hashes (repo_id, file_path, namespace, sha256, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(repo_id, file_path) DO UPDATE SET sha256 = excluded.sha256, updated_at = excluded.updated_at
	`, repoID, filePath, namespace, sha256)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "upsert file hash", err)
	}

	if err := tx.Commit(); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "commit transaction", err)
	}
	return nil
}

// DeleteFileContents removes every chunk, embedding and reference
// belonging to a file, and its file-hash row, in one transaction. Used
// when the indexer detects a file was removed from disk (§4.2 step 4).
func (s *Store) DeleteFileContents(ctx context.Context, repoID, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "begin transaction", err)
	}
	defer tx.Rollback()

	if err := deleteFileContentsTx(ctx, tx, repoID, filePath); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM file_hashes WHERE repo_id = ? AND file_path = ?`, repoID, filePath); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "delete file hash", err)
	}
	if err := tx.Commit(); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "commit transaction", err)
	}
	return nil
}

func deleteFileContentsTx(ctx context.Context, tx *sql.Tx, repoID, filePath string) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM chunks WHERE repo_id = ? AND file_path = ?`, repoID, filePath)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "list existing chunks", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return coreerrors.Wrap(coreerrors.KindStorage, "scan chunk id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks_fts WHERE chunk_id = ?`, id); err != nil {
			return coreerrors.Wrap(coreerrors.KindStorage, "delete fts row", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE repo_id = ? AND file_path = ?`, repoID, filePath); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "delete chunks", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM refs WHERE repo_id = ? AND file_path = ?`, repoID, filePath); err != nil {
		return coreerrors.Wrap(coreerrors.KindStorage, "delete references", err)
	}
	return nil
}

// GetChunk fetches a single chunk by id.
func (s *Store) GetChunk(ctx context.Context, id string) (*coretypes.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, repo_id, file_path, language, node_kind, symbol_name, qualified_name, start_line, end_line, content
		FROM chunks WHERE id = ?
	`, id)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, coreerrors.New(coreerrors.KindNotFound, fmt.Sprintf("chunk %s not found", id))
	}
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "get chunk", err)
	}
	return c, nil
}

func scanChunk(row rowScanner) (*coretypes.Chunk, error) {
	var c coretypes.Chunk
	var lang, kind string
	err := row.Scan(&c.ID, &c.RepositoryID, &c.FilePath, &lang, &kind, &c.SymbolName, &c.QualifiedName, &c.StartLine, &c.EndLine, &c.Content)
	if err != nil {
		return nil, err
	}
	c.Language = coretypes.Language(lang)
	c.NodeKind = coretypes.NodeKind(kind)
	return &c, nil
}

// encodeVector serializes a float32 vector as little-endian bytes, the
// same layout sqlite-vec expects for its BLOB column, so the fallback
// decoder and the cgo extension agree on wire format.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector is the inverse of encodeVector.
func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec
}
