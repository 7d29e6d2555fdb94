// Package parser implements the Go language adapter for ports.Parser using
// the standard library's go/parser and go/ast.
//
// A single Parse call returns both the chunks for a file (one per
// function, method, struct, interface, type alias, const and var
// declaration) and the call-graph references found inside it (calls,
// method calls, imports). Call sites are attributed to their enclosing
// definition in a second AST pass over the definitions collected in the
// first.
//
// # Basic usage
//
//	p := parser.New()
//	chunks, refs, err := p.Parse(ctx, repoID, "internal/foo/foo.go", content)
//
// Syntax errors in the source produce a hard error from Parse rather than
// a partial result: the indexer treats any Parse error as a per-file
// skip (§4.2 step 2), so there is no need for the parser itself to recover
// partial ASTs.
package parser
