package coretypes

import "errors"

// ReferenceKind classifies a call-graph edge. The primary three kinds
// named by the data model (call, type_ref, import) are always populated by
// every parser adapter; the remaining kinds are recovered from the
// original implementation and populated only by adapters precise enough to
// distinguish them (currently only MethodCall, which the Go adapter emits
// alongside Call, TypeRef and Import).
type ReferenceKind string

const (
	ReferenceKindCall             ReferenceKind = "call"
	ReferenceKindMethodCall       ReferenceKind = "method_call"
	ReferenceKindTypeRef          ReferenceKind = "type_ref"
	ReferenceKindImport           ReferenceKind = "import"
	ReferenceKindVariableRef      ReferenceKind = "variable_reference"
	ReferenceKindFieldAccess      ReferenceKind = "field_access"
	ReferenceKindMacroInvocation  ReferenceKind = "macro_invocation"
	ReferenceKindInstantiation    ReferenceKind = "instantiation"
	ReferenceKindImplementation   ReferenceKind = "implementation"
	ReferenceKindInheritance      ReferenceKind = "inheritance"
	ReferenceKindGenericArgument  ReferenceKind = "generic_argument"
	ReferenceKindUnknown          ReferenceKind = "unknown"
)

// ErrReferenceEmptyCallee is returned by Reference.Validate when the
// callee symbol is empty.
var ErrReferenceEmptyCallee = errors.New("reference callee symbol must not be empty")

// AnonymousCaller is the sentinel recorded for a call site with no
// enclosing named symbol (a top-level statement, or a symbol the parser
// could not resolve). It is a real string, not a NULL, so it participates
// in impact-analysis BFS as any other caller does — see SPEC_FULL.md's
// Open Question decision on anonymous callers.
const AnonymousCaller = "<anonymous>"

// Reference is a call-graph edge: a single occurrence, at a specific
// source location, of one symbol referencing another. Multiple edges
// between the same pair of symbols at different lines are preserved.
type Reference struct {
	ID              string
	RepositoryID    string
	CallerSymbol    string // AnonymousCaller when there is no enclosing named symbol
	CalleeSymbol    string
	CallerFilePath  string
	FilePath        string // where the reference occurs; equals CallerFilePath except for cross-file macro expansion
	Line            int
	Column          int
	Kind            ReferenceKind
	Language        Language
	EnclosingScope  string // e.g. the receiver type name for a Go method
}

// Validate checks that the callee symbol is present.
func (r *Reference) Validate() error {
	if r.CalleeSymbol == "" {
		return ErrReferenceEmptyCallee
	}
	return nil
}

// QualifiedCaller returns "EnclosingScope.CallerSymbol" when a scope is
// recorded, otherwise the bare caller symbol.
func (r *Reference) QualifiedCaller() string {
	if r.EnclosingScope != "" && r.CallerSymbol != "" {
		return r.EnclosingScope + "." + r.CallerSymbol
	}
	return r.CallerSymbol
}
