// Package indexer walks a repository, parses each supported file into
// chunks and call-graph references, embeds the chunks in batches, and
// persists the result through storage.Store, one file per transaction.
//
// Incremental runs compare each file's SHA-256 against the last stored
// hash and skip re-parsing and re-embedding when it matches. After the
// walk, any file recorded in the store but not seen on disk is treated as
// deleted and its chunks, references and hash are removed.
//
// Only one Run may execute concurrently per Indexer; a second call while
// one is in flight returns an error immediately rather than queuing.
package indexer
