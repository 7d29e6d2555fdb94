//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package storage

// This file is compiled when building with the purego tag or without the
// sqlite_vec tag. Vector similarity falls back to Go-computed cosine
// distance over deserialized float32 blobs (see searchVectorFallback in
// search.go).
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates the sqlite-vec extension is not
	// present; vector search runs the pure-Go fallback.
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
