package storage

// Package layout:
//   store.go      - Store type, Open/Close, repository CRUD
//   migrations.go - schema and semver-gated migration runner
//   chunks.go      - chunk/embedding/reference/file-hash CRUD, ReplaceFileContents
//   search.go      - vector and keyword search, FTS5 escaping
//   callgraph.go   - FindCallers/FindCallees/ResolveSymbols
//   build_cgo.go, build_purego.go - driver selection by build tag
