package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dshills/codesearch/internal/coreerrors"
	"github.com/dshills/codesearch/internal/coretypes"
)

// SearchFilters narrows a vector or keyword search to a subset of the
// namespace's chunks (§4.3's language/repository/node-kind filters).
type SearchFilters struct {
	Repositories []string
	Languages    []coretypes.Language
	NodeKinds    []coretypes.NodeKind
}

func (f SearchFilters) whereClause(args *[]any) string {
	var clauses []string
	if len(f.Repositories) > 0 {
		clauses = append(clauses, "c.repo_id IN ("+placeholders(len(f.Repositories))+")")
		for _, r := range f.Repositories {
			*args = append(*args, r)
		}
	}
	if len(f.Languages) > 0 {
		clauses = append(clauses, "c.language IN ("+placeholders(len(f.Languages))+")")
		for _, l := range f.Languages {
			*args = append(*args, string(l))
		}
	}
	if len(f.NodeKinds) > 0 {
		clauses = append(clauses, "c.node_kind IN ("+placeholders(len(f.NodeKinds))+")")
		for _, k := range f.NodeKinds {
			*args = append(*args, string(k))
		}
	}
	if len(clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(clauses, " AND ")
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ",")
}

// VectorSearch returns the limit chunks whose embeddings are closest by
// cosine similarity to query, restricted to a namespace and optional
// filters. On a cgo build with the sqlite-vec extension present, the
// comparison runs in SQL via vec_distance_cosine; otherwise every
// candidate embedding is decoded and compared in Go (see
// searchVectorFallback).
func (s *Store) VectorSearch(ctx context.Context, namespace string, query []float32, limit int, filters SearchFilters) ([]coretypes.SearchResult, error) {
	if VectorExtensionAvailable {
		return s.searchVectorSQL(ctx, namespace, query, limit, filters)
	}
	return s.searchVectorFallback(ctx, namespace, query, limit, filters)
}

func (s *Store) searchVectorSQL(ctx context.Context, namespace string, query []float32, limit int, filters SearchFilters) ([]coretypes.SearchResult, error) {
	args := []any{encodeVector(query), namespace}
	where := filters.whereClause(&args)
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT c.id, c.repo_id, c.file_path, c.language, c.node_kind, c.symbol_name, c.qualified_name, c.start_line, c.end_line, c.content,
		       1.0 - vec_distance_cosine(e.vector, ?) AS score
		FROM chunks c
		JOIN embeddings e ON e.chunk_id = c.id
		WHERE c.namespace = ?%s
		ORDER BY score DESC
		LIMIT ?
	`, where)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "vector search", err)
	}
	defer rows.Close()
	return scanScoredChunks(rows)
}

// searchVectorFallback is used on every build where VectorExtensionAvailable
// is false (any build without the sqlite_vec tag): it loads every
// candidate embedding in the namespace and computes cosine similarity in
// Go. This is O(namespace size) per query and is the documented ceiling on
// searchable corpus size for a purego build.
func (s *Store) searchVectorFallback(ctx context.Context, namespace string, query []float32, limit int, filters SearchFilters) ([]coretypes.SearchResult, error) {
	args := []any{namespace}
	where := filters.whereClause(&args)

	q := fmt.Sprintf(`
		SELECT c.id, c.repo_id, c.file_path, c.language, c.node_kind, c.symbol_name, c.qualified_name, c.start_line, c.end_line, c.content, e.vector
		FROM chunks c
		JOIN embeddings e ON e.chunk_id = c.id
		WHERE c.namespace = ?%s
	`, where)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "vector search fallback", err)
	}
	defer rows.Close()

	var scored []coretypes.SearchResult
	for rows.Next() {
		var c coretypes.Chunk
		var lang, kind string
		var blob []byte
		if err := rows.Scan(&c.ID, &c.RepositoryID, &c.FilePath, &lang, &kind, &c.SymbolName, &c.QualifiedName, &c.StartLine, &c.EndLine, &c.Content, &blob); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "scan vector candidate", err)
		}
		c.Language = coretypes.Language(lang)
		c.NodeKind = coretypes.NodeKind(kind)
		vec := decodeVector(blob)
		scored = append(scored, coretypes.SearchResult{Chunk: c, Score: cosineSimilarity(query, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "iterate vector candidates", err)
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TextSearch runs a BM25-ranked FTS5 query over chunk content, symbol
// names and qualified names. Special FTS5 query syntax characters in the
// caller's text are escaped so that arbitrary user queries never produce a
// syntax error or an unintended prefix/column query (§4.1 "keyword-search
// escaping").
func (s *Store) TextSearch(ctx context.Context, namespace, queryText string, limit int, filters SearchFilters) ([]coretypes.SearchResult, error) {
	escaped := EscapeFTS5Query(queryText)
	if escaped == "" {
		return nil, nil
	}

	args := []any{namespace, escaped}
	where := filters.whereClause(&args)
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT c.id, c.repo_id, c.file_path, c.language, c.node_kind, c.symbol_name, c.qualified_name, c.start_line, c.end_line, c.content,
		       bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.chunk_id
		WHERE chunks_fts.namespace = ? AND chunks_fts MATCH ?%s
		ORDER BY rank ASC
		LIMIT ?
	`, where)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindStorage, "text search", err)
	}
	defer rows.Close()

	var out []coretypes.SearchResult
	for rows.Next() {
		var c coretypes.Chunk
		var lang, kind string
		var rank float64
		if err := rows.Scan(&c.ID, &c.RepositoryID, &c.FilePath, &lang, &kind, &c.SymbolName, &c.QualifiedName, &c.StartLine, &c.EndLine, &c.Content, &rank); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "scan text result", err)
		}
		c.Language = coretypes.Language(lang)
		c.NodeKind = coretypes.NodeKind(kind)
		// bm25() returns lower-is-better; invert so callers treat every
		// leg's score as higher-is-better, matching VectorSearch.
		out = append(out, coretypes.SearchResult{Chunk: c, Score: -rank})
	}
	return out, rows.Err()
}

// EscapeFTS5Query neutralizes FTS5 query-syntax metacharacters (", *, :,
// (, ), the boolean keywords AND/OR/NOT/NEAR) by wrapping each whitespace-
// separated token in double quotes, turning the whole query into a plain
// phrase-per-token search. A raw quote inside a token is doubled per FTS5
// string-literal escaping rules.
func EscapeFTS5Query(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

func scanScoredChunks(rows *sql.Rows) ([]coretypes.SearchResult, error) {
	var out []coretypes.SearchResult
	for rows.Next() {
		var c coretypes.Chunk
		var lang, kind string
		var score float64
		if err := rows.Scan(&c.ID, &c.RepositoryID, &c.FilePath, &lang, &kind, &c.SymbolName, &c.QualifiedName, &c.StartLine, &c.EndLine, &c.Content, &score); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindStorage, "scan search result", err)
		}
		c.Language = coretypes.Language(lang)
		c.NodeKind = coretypes.NodeKind(kind)
		out = append(out, coretypes.SearchResult{Chunk: c, Score: score})
	}
	return out, rows.Err()
}
