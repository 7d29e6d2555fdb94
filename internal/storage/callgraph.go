package storage

import (
	"context"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
)

// FindCallers returns every reference whose callee symbol exactly matches
// symbol, within a namespace, optionally narrowed to repositories (§4.4:
// "both operations honour the repository filter; without it, graph
// traversal spans all indexed repositories"). Used as the depth-1
// frontier of impact analysis and as the exact-match lookup of
// symbol-context queries.
func (s *Store) FindCallers(ctx context.Context, namespace, symbol string, repositories []string) ([]coretypes.Reference, error) {
	args := []any{namespace, symbol}
	query := `
		SELECT id, repo_id, file_path, line, column, caller_symbol, caller_file_path, enclosing_scope, callee_symbol, kind, language
		FROM refs WHERE namespace = ? AND callee_symbol = ?` + repoFilterClause("repo_id", repositories, &args)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "find callers", err)
	}
	defer rows.Close()
	return scanReferences(rows)
}

// FindCallees returns every reference whose caller symbol exactly matches
// symbol, within a namespace, optionally narrowed to repositories.
func (s *Store) FindCallees(ctx context.Context, namespace, symbol string, repositories []string) ([]coretypes.Reference, error) {
	args := []any{namespace, symbol}
	query := `
		SELECT id, repo_id, file_path, line, column, caller_symbol, caller_file_path, enclosing_scope, callee_symbol, kind, language
		FROM refs WHERE namespace = ? AND caller_symbol = ?` + repoFilterClause("repo_id", repositories, &args)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "find callees", err)
	}
	defer rows.Close()
	return scanReferences(rows)
}

// ResolveSymbols finds up to limit distinct qualified chunk symbol names in
// a namespace whose suffix matches symbol (e.g. "Store.Close" resolves
// "storage.Store.Close"), optionally narrowed to repositories.
// Used by the symbol-context fallback when no exact caller/callee match
// exists.
func (s *Store) ResolveSymbols(ctx context.Context, namespace, symbol string, limit int, repositories []string) ([]string, error) {
	args := []any{namespace, symbol, "%." + symbol}
	query := `
		SELECT DISTINCT qualified_name FROM chunks
		WHERE namespace = ? AND qualified_name != '' AND (qualified_name = ? OR qualified_name LIKE ?)` +
		repoFilterClause("repo_id", repositories, &args) + `
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "resolve symbols", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "scan resolved symbol", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// repoFilterClause appends an "AND column IN (...)" predicate when
// repositories is non-empty, mirroring SearchFilters.whereClause in
// search.go so every repository-scoped query in the store narrows the
// same way.
func repoFilterClause(column string, repositories []string, args *[]any) string {
	if len(repositories) == 0 {
		return ""
	}
	for _, r := range repositories {
		*args = append(*args, r)
	}
	return " AND " + column + " IN (" + placeholders(len(repositories)) + ")"
}

func scanReferences(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]coretypes.Reference, error) {
	var out []coretypes.Reference
	for rows.Next() {
		var r coretypes.Reference
		var kind, lang string
		if err := rows.Scan(&r.ID, &r.RepositoryID, &r.FilePath, &r.Line, &r.Column, &r.CallerSymbol, &r.CallerFilePath, &r.EnclosingScope, &r.CalleeSymbol, &kind, &lang); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "scan reference", err)
		}
		r.Kind = coretypes.ReferenceKind(kind)
		r.Language = coretypes.Language(lang)
		out = append(out, r)
	}
	return out, rows.Err()
}
