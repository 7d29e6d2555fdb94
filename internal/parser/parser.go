// Package parser implements the Go adapter for ports.Parser: it turns a
// single Go source file's bytes into symbol-aligned chunks and call-graph
// references. It emits call, method_call, type_ref and import references;
// the remaining coretypes.ReferenceKind values belong to constructs Go
// doesn't have (macro invocation) or that this adapter doesn't yet
// distinguish (variable reference, field access, generic instantiation).
package parser

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"

	"github.com/dshills/codesearch/internal/coretypes"
)

// Parser is the Go language adapter. It holds no state between calls; a
// fresh *token.FileSet is used per file so that position information never
// leaks across files.
type Parser struct{}

// New returns a ready-to-use Go parser adapter.
func New() *Parser {
	return &Parser{}
}

// SupportsLanguage implements ports.Parser.
func (p *Parser) SupportsLanguage(lang coretypes.Language) bool {
	return lang == coretypes.LanguageGo
}

// definition is an enclosing named symbol used to resolve which chunk a
// call site or type reference falls inside.
type definition struct {
	name      string
	receiver  string // enclosing type name for a method, else ""
	startLine int
	endLine   int
}

// Parse implements ports.Parser. It performs two passes over the AST: the
// first collects every top-level definition (function, method, type,
// const, var) as a chunk; the second walks every call expression and
// resolves its enclosing definition against the first pass's definitions,
// sorted by start line, per the per-file pre-pass algorithm.
func (p *Parser) Parse(_ context.Context, repositoryID, path string, content []byte) ([]coretypes.Chunk, []coretypes.Reference, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	packageName := ""
	if file.Name != nil {
		packageName = file.Name.Name
	}

	ex := &extractor{
		fset:         fset,
		file:         file,
		path:         path,
		packageName:  packageName,
		repositoryID: repositoryID,
		content:      content,
	}
	ex.collectDefinitions()
	sort.Slice(ex.defs, func(i, j int) bool { return ex.defs[i].startLine < ex.defs[j].startLine })
	ex.collectReferences()

	return ex.chunks, ex.refs, nil
}

type extractor struct {
	fset         *token.FileSet
	file         *ast.File
	path         string
	packageName  string
	repositoryID string
	content      []byte

	chunks []coretypes.Chunk
	refs   []coretypes.Reference
	defs   []definition
}

// text slices the original file content spanning node, preserving
// comments and exact formatting for display and embedding.
func (e *extractor) text(node ast.Node) string {
	start := e.fset.Position(node.Pos()).Offset
	end := e.fset.Position(node.End()).Offset
	if start < 0 || end < start || end > len(e.content) {
		return ""
	}
	return string(e.content[start:end])
}

func (e *extractor) line(pos token.Pos) int {
	return e.fset.Position(pos).Line
}

func (e *extractor) column(pos token.Pos) int {
	return e.fset.Position(pos).Column
}

// collectDefinitions walks top-level declarations, emitting one chunk per
// function, method, struct, interface, type alias, const block member and
// var block member, and recording each as a definition for the reference
// pass.
func (e *extractor) collectDefinitions() {
	for _, decl := range e.file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			e.addFunction(d)
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					e.addTypeSpec(s, d.Doc)
				case *ast.ValueSpec:
					e.addValueSpec(s, d.Tok)
				}
			}
		}
	}
}

func (e *extractor) addFunction(decl *ast.FuncDecl) {
	name := decl.Name.Name
	kind := coretypes.NodeKindFunction
	qualified := e.packageName + "." + name
	receiver := ""

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		kind = coretypes.NodeKindMethod
		receiver = receiverTypeName(decl.Recv.List[0].Type)
		if receiver != "" {
			qualified = e.packageName + "." + receiver + "." + name
		}
	}

	start, end := e.line(decl.Pos()), e.line(decl.End())
	chunk := coretypes.Chunk{
		ID:            coretypes.ChunkID(e.repositoryID, e.path, start, name),
		RepositoryID:  e.repositoryID,
		FilePath:      e.path,
		Language:      coretypes.LanguageGo,
		NodeKind:      kind,
		SymbolName:    name,
		QualifiedName: qualified,
		StartLine:     start,
		EndLine:       end,
		Content:       e.text(decl),
	}
	if chunk.Validate() == nil {
		e.chunks = append(e.chunks, chunk)
	}
	e.defs = append(e.defs, definition{name: name, receiver: receiver, startLine: start, endLine: end})
}

func (e *extractor) addTypeSpec(spec *ast.TypeSpec, doc *ast.CommentGroup) {
	name := spec.Name.Name
	var kind coretypes.NodeKind
	switch spec.Type.(type) {
	case *ast.StructType:
		kind = coretypes.NodeKindStruct
	case *ast.InterfaceType:
		kind = coretypes.NodeKindInterface
	default:
		kind = coretypes.NodeKindTypeAlias
	}

	start, end := e.line(spec.Pos()), e.line(spec.End())
	if doc != nil {
		start = e.line(doc.Pos())
	}
	qualified := e.packageName + "." + name

	chunk := coretypes.Chunk{
		ID:            coretypes.ChunkID(e.repositoryID, e.path, start, name),
		RepositoryID:  e.repositoryID,
		FilePath:      e.path,
		Language:      coretypes.LanguageGo,
		NodeKind:      kind,
		SymbolName:    name,
		QualifiedName: qualified,
		StartLine:     start,
		EndLine:       end,
		Content:       e.text(spec),
	}
	if chunk.Validate() == nil {
		e.chunks = append(e.chunks, chunk)
	}
	e.defs = append(e.defs, definition{name: name, startLine: start, endLine: end})
}

func (e *extractor) addValueSpec(spec *ast.ValueSpec, tok token.Token) {
	kind := coretypes.NodeKindVar
	if tok == token.CONST {
		kind = coretypes.NodeKindConstant
	}
	start, end := e.line(spec.Pos()), e.line(spec.End())
	for _, name := range spec.Names {
		if name.Name == "_" {
			continue
		}
		qualified := e.packageName + "." + name.Name
		chunk := coretypes.Chunk{
			ID:            coretypes.ChunkID(e.repositoryID, e.path, start, name.Name),
			RepositoryID:  e.repositoryID,
			FilePath:      e.path,
			Language:      coretypes.LanguageGo,
			NodeKind:      kind,
			SymbolName:    name.Name,
			QualifiedName: qualified,
			StartLine:     start,
			EndLine:       end,
			Content:       e.text(spec),
		}
		if chunk.Validate() == nil {
			e.chunks = append(e.chunks, chunk)
		}
	}
}

// collectReferences walks every call expression, field/parameter type and
// import spec in the file, recording a Reference for each. Call and
// type-reference sites are attributed to their enclosing definition via
// enclosingDefinition; sites with no enclosing definition (init-time
// expressions, top-level var initializers with function literals) are
// attributed to coretypes.AnonymousCaller.
func (e *extractor) collectReferences() {
	for _, imp := range e.file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		line, col := e.line(imp.Pos()), e.column(imp.Pos())
		ref := coretypes.Reference{
			ID:             coretypes.ReferenceID(e.repositoryID, e.path, line, col, path),
			RepositoryID:   e.repositoryID,
			CallerSymbol:   coretypes.AnonymousCaller,
			CalleeSymbol:   path,
			CallerFilePath: e.path,
			FilePath:       e.path,
			Line:           line,
			Column:         col,
			Kind:           coretypes.ReferenceKindImport,
			Language:       coretypes.LanguageGo,
		}
		if ref.Validate() == nil {
			e.refs = append(e.refs, ref)
		}
	}

	ast.Inspect(e.file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		callee, kind := calleeName(call.Fun)
		if callee == "" {
			return true
		}

		line, col := e.line(call.Pos()), e.column(call.Pos())
		caller, scope := e.enclosingDefinition(line)

		ref := coretypes.Reference{
			ID:             coretypes.ReferenceID(e.repositoryID, e.path, line, col, callee),
			RepositoryID:   e.repositoryID,
			CallerSymbol:   caller,
			CalleeSymbol:   callee,
			CallerFilePath: e.path,
			FilePath:       e.path,
			Line:           line,
			Column:         col,
			Kind:           kind,
			Language:       coretypes.LanguageGo,
			EnclosingScope: scope,
		}
		if ref.Validate() == nil {
			e.refs = append(e.refs, ref)
		}
		return true
	})

	ast.Inspect(e.file, func(n ast.Node) bool {
		switch t := n.(type) {
		case *ast.Field:
			if t.Type != nil {
				e.emitTypeRef(t.Type)
			}
		case *ast.CompositeLit:
			if t.Type != nil {
				e.emitTypeRef(t.Type)
			}
		}
		return true
	})
}

// emitTypeRef records a type_ref reference for expr's named type, if it
// resolves to one (exported identifier or package-qualified selector;
// unqualified lowercase identifiers are builtins and skipped). Used for
// struct field types, function parameter and result types, and composite
// literal type expressions.
func (e *extractor) emitTypeRef(expr ast.Expr) {
	name, ok := typeRefName(expr)
	if !ok {
		return
	}
	line, col := e.line(expr.Pos()), e.column(expr.Pos())
	caller, scope := e.enclosingDefinition(line)

	ref := coretypes.Reference{
		ID:             coretypes.ReferenceID(e.repositoryID, e.path, line, col, name),
		RepositoryID:   e.repositoryID,
		CallerSymbol:   caller,
		CalleeSymbol:   name,
		CallerFilePath: e.path,
		FilePath:       e.path,
		Line:           line,
		Column:         col,
		Kind:           coretypes.ReferenceKindTypeRef,
		Language:       coretypes.LanguageGo,
		EnclosingScope: scope,
	}
	if ref.Validate() == nil {
		e.refs = append(e.refs, ref)
	}
}

// typeRefName unwraps pointer, slice, ellipsis and map type expressions to
// their named element type, and reports whether that type is worth
// recording: an exported identifier (a locally defined type) or a
// package-qualified selector (an imported type). Unqualified lowercase
// identifiers are builtins (int, string, error, ...) and are skipped.
func typeRefName(expr ast.Expr) (string, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		if !ast.IsExported(t.Name) {
			return "", false
		}
		return t.Name, true
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return "", false
		}
		return pkg.Name + "." + t.Sel.Name, true
	case *ast.StarExpr:
		return typeRefName(t.X)
	case *ast.ArrayType:
		return typeRefName(t.Elt)
	case *ast.Ellipsis:
		return typeRefName(t.Elt)
	case *ast.MapType:
		return typeRefName(t.Value)
	default:
		return "", false
	}
}

// enclosingDefinition finds the narrowest definition that contains line.
// e.defs is sorted by start line, so sort.Search locates the last
// definition starting at or before line in O(log n); the scan backward
// from there considers only definitions that could contain line. Top-level
// declarations don't overlap in this adapter, except when a function
// literal call site falls inside its enclosing function's range; the
// narrowest match wins so nested closures still attribute to their
// innermost named ancestor.
func (e *extractor) enclosingDefinition(line int) (symbol, scope string) {
	start := sort.Search(len(e.defs), func(i int) bool { return e.defs[i].startLine > line })

	best := -1
	for i := start - 1; i >= 0; i-- {
		d := e.defs[i]
		if line > d.endLine {
			continue
		}
		if best == -1 || (d.endLine-d.startLine) < (e.defs[best].endLine-e.defs[best].startLine) {
			best = i
		}
	}
	if best == -1 {
		return coretypes.AnonymousCaller, ""
	}
	d := e.defs[best]
	return d.name, d.receiver
}

// calleeName extracts the invoked symbol's name and reference kind from a
// call expression's function operand.
func calleeName(fn ast.Expr) (string, coretypes.ReferenceKind) {
	switch t := fn.(type) {
	case *ast.Ident:
		return t.Name, coretypes.ReferenceKindCall
	case *ast.SelectorExpr:
		return t.Sel.Name, coretypes.ReferenceKindMethodCall
	default:
		return "", coretypes.ReferenceKindUnknown
	}
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	case *ast.Ident:
		return t.Name
	}
	return ""
}
