package parser

import (
	"context"
	"testing"

	"github.com/dshills/codesearch/internal/coretypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `package testpkg

import "fmt"

// User represents a user in the system.
type User struct {
	ID   int
	Name string
}

// GetName returns the user's name.
func (u *User) GetName() string {
	return u.Name
}

func Greet(u *User) {
	fmt.Println(u.GetName())
}
`

func TestParse_ExtractsChunks(t *testing.T) {
	p := New()
	chunks, _, err := p.Parse(context.Background(), "repo1", "testpkg/user.go", []byte(sample))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var names []string
	for _, c := range chunks {
		names = append(names, c.SymbolName)
		assert.NoError(t, c.Validate())
		assert.Equal(t, coretypes.LanguageGo, c.Language)
	}
	assert.Contains(t, names, "User")
	assert.Contains(t, names, "GetName")
	assert.Contains(t, names, "Greet")
}

func TestParse_MethodChunkHasReceiverQualifiedName(t *testing.T) {
	p := New()
	chunks, _, err := p.Parse(context.Background(), "repo1", "testpkg/user.go", []byte(sample))
	require.NoError(t, err)

	for _, c := range chunks {
		if c.SymbolName == "GetName" {
			assert.Equal(t, coretypes.NodeKindMethod, c.NodeKind)
			assert.Equal(t, "testpkg.User.GetName", c.QualifiedName)
			return
		}
	}
	t.Fatal("GetName chunk not found")
}

func TestParse_ExtractsCallReferences(t *testing.T) {
	p := New()
	_, refs, err := p.Parse(context.Background(), "repo1", "testpkg/user.go", []byte(sample))
	require.NoError(t, err)

	var foundCall, foundImport bool
	for _, r := range refs {
		if r.CalleeSymbol == "GetName" && r.CallerSymbol == "Greet" {
			foundCall = true
			assert.Equal(t, coretypes.ReferenceKindMethodCall, r.Kind)
		}
		if r.CalleeSymbol == "fmt" && r.Kind == coretypes.ReferenceKindImport {
			foundImport = true
		}
	}
	assert.True(t, foundCall, "expected a Greet -> GetName call reference")
	assert.True(t, foundImport, "expected an import reference for fmt")
}

func TestParse_TopLevelCallIsAnonymous(t *testing.T) {
	src := `package testpkg

import "fmt"

var _ = fmt.Sprintf("boot: %d", 1)
`
	p := New()
	_, refs, err := p.Parse(context.Background(), "repo1", "testpkg/init.go", []byte(src))
	require.NoError(t, err)

	var found bool
	for _, r := range refs {
		if r.CalleeSymbol == "Sprintf" {
			found = true
			assert.Equal(t, coretypes.AnonymousCaller, r.CallerSymbol)
		}
	}
	assert.True(t, found, "expected a Sprintf call reference")
}

func TestParse_SyntaxErrorReturnsError(t *testing.T) {
	p := New()
	_, _, err := p.Parse(context.Background(), "repo1", "broken.go", []byte("package testpkg\nfunc ("))
	assert.Error(t, err)
}

func TestSupportsLanguage(t *testing.T) {
	p := New()
	assert.True(t, p.SupportsLanguage(coretypes.LanguageGo))
	assert.False(t, p.SupportsLanguage(coretypes.LanguagePython))
}
