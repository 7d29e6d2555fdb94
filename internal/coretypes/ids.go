package coretypes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
)

// RepositoryID is a stable identifier derived from a repository's root
// path. Two indexing runs against the same root path always produce the
// same repository id, so re-indexing a deleted repository at the same
// path recreates it under the same identity.
func RepositoryID(rootPath string) string {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		abs = rootPath
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])
}

// ChunkID is a stable identifier derived purely from the chunk's
// identifying fields: the repository it belongs to, its file path, its
// start line, and its symbol name (empty string for symbol-less chunks,
// e.g. a package-level chunk with no single enclosing symbol).
//
// Because the id is a pure function of these fields, indexing the same
// root twice — even across a delete and re-index — assigns the same ids
// to the same logical chunks.
func ChunkID(repoID, filePath string, startLine int, symbolName string) string {
	h := sha256.New()
	h.Write([]byte(repoID))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(startLine)))
	h.Write([]byte{0})
	h.Write([]byte(symbolName))
	return hex.EncodeToString(h.Sum(nil))
}

// ReferenceID is a stable identifier for a call-graph edge, derived from
// its site (file, line, column) and the callee it names. Reference sites
// are unique per (file, line, column) even when the same callee is
// invoked from many places in the same statement (rare, but the column
// disambiguates it).
func ReferenceID(repoID, filePath string, line, column int, calleeSymbol string) string {
	h := sha256.New()
	h.Write([]byte(repoID))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	fmt.Fprintf(h, "%d:%d", line, column)
	h.Write([]byte{0})
	h.Write([]byte(calleeSymbol))
	return hex.EncodeToString(h.Sum(nil))
}
