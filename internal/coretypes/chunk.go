package coretypes

import "errors"

// NodeKind is the closed enumeration of code-construct kinds a chunk can
// represent, covering the multi-language surface a tree-sitter-style parser
// can recover. The Go parser adapter emits only the subset that Go's
// grammar admits (function, method, struct, interface, type alias, const,
// var).
type NodeKind string

const (
	NodeKindFunction  NodeKind = "function"
	NodeKindMethod    NodeKind = "method"
	NodeKindClass     NodeKind = "class"
	NodeKindStruct    NodeKind = "struct"
	NodeKindEnum      NodeKind = "enum"
	NodeKindTrait     NodeKind = "trait"
	NodeKindInterface NodeKind = "interface"
	NodeKindImpl      NodeKind = "impl"
	NodeKindModule    NodeKind = "module"
	NodeKindTypeAlias NodeKind = "type_alias"
	NodeKindConstant  NodeKind = "constant"
	NodeKindVar       NodeKind = "var"
	NodeKindBlock     NodeKind = "block"
)

// Errors returned by Chunk.Validate.
var (
	ErrChunkEmptyContent = errors.New("chunk content must not be empty")
	ErrChunkLineRange    = errors.New("chunk start_line must be <= end_line and >= 1")
	ErrChunkMissingRepo  = errors.New("chunk must belong to a repository")
	ErrChunkMissingPath  = errors.New("chunk must have a file path")
)

// Chunk is a contiguous, symbol-aligned region of a source file: the unit
// that is embedded, indexed for keyword search, and returned from search.
type Chunk struct {
	ID            string
	RepositoryID  string
	FilePath      string // relative to the repository root
	Language      Language
	NodeKind      NodeKind
	SymbolName    string // empty when the chunk has no single enclosing symbol
	QualifiedName string // empty when there is no enclosing scope to qualify with
	StartLine     int    // 1-based, inclusive
	EndLine       int    // 1-based, inclusive
	Content       string
}

// Validate checks the invariants of §3: 1 ≤ start_line ≤ end_line, content
// non-empty, chunk belongs to exactly one repository and file.
func (c *Chunk) Validate() error {
	if c.RepositoryID == "" {
		return ErrChunkMissingRepo
	}
	if c.FilePath == "" {
		return ErrChunkMissingPath
	}
	if c.StartLine < 1 || c.StartLine > c.EndLine {
		return ErrChunkLineRange
	}
	if c.Content == "" {
		return ErrChunkEmptyContent
	}
	return nil
}

// LineCount returns the number of lines the chunk spans.
func (c *Chunk) LineCount() int {
	return c.EndLine - c.StartLine + 1
}

// IsCallable reports whether the chunk represents an invocable unit.
func (c *Chunk) IsCallable() bool {
	return c.NodeKind == NodeKindFunction || c.NodeKind == NodeKindMethod
}

// IsTypeDefinition reports whether the chunk defines a type.
func (c *Chunk) IsTypeDefinition() bool {
	switch c.NodeKind {
	case NodeKindClass, NodeKindStruct, NodeKindEnum, NodeKindInterface, NodeKindTypeAlias, NodeKindTrait:
		return true
	default:
		return false
	}
}
