//go:build sqlite_vec
// +build sqlite_vec

package storage

// This file is compiled when building with CGO and the sqlite_vec tag. It
// enables the sqlite-vec extension, which is the store's substitute for a
// dedicated HNSW library: vec_distance_cosine gives SQL-level approximate
// cosine distance over the embeddings BLOB column without a separate ANN
// index process to manage.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec,fts5" ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite3"

	// VectorExtensionAvailable indicates the sqlite-vec extension's
	// vec_distance_cosine function can be used at the SQL layer.
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
