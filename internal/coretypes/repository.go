package coretypes

import "time"

// Repository is the top-level ownership unit of §3: an indexed source
// tree, identified by a stable hash of its root path, scoped to a
// namespace (the logical isolation unit for schemas and embedding
// dimension).
type Repository struct {
	ID          string
	Name        string
	RootPath    string
	Namespace   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileCount   int
	ChunkCount  int
	BuildMode   string // "cgo" or "purego"; recorded at index time for diagnostics
}

// IsIndexed reports whether the repository has any chunks.
func (r *Repository) IsIndexed() bool {
	return r.ChunkCount > 0
}

// UpdateStats refreshes the aggregate counters and touches UpdatedAt.
func (r *Repository) UpdateStats(fileCount, chunkCount int) {
	r.FileCount = fileCount
	r.ChunkCount = chunkCount
	r.UpdatedAt = time.Now()
}
