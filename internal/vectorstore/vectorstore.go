// Package vectorstore implements deskrag's C4 component. Both
// implementations satisfy the same Store contract; distance is always
// defined so that smaller is closer, the opposite convention from the
// teacher's cosine-similarity memory_vector.go, which this package
// inverts throughout.
package vectorstore

import "context"

// Record is one upserted vector: a chunk's text, metadata, and embedding.
type Record struct {
	ChunkID   string
	Text      string
	Metadata  map[string]any
	Embedding []float32
}

// Result is a retrieved chunk, ordered by ascending distance (lower score
// means closer). Consumers must not assume normalization.
type Result struct {
	ID       string
	Text     string
	Metadata map[string]any
	Score    float32
}

// Store is the vector store contract of spec.md §4.4.
type Store interface {
	// Upsert is idempotent by ChunkID: it overwrites metadata and
	// embedding on conflict.
	Upsert(ctx context.Context, records []Record) error
	// Search returns up to k items ordered by ascending distance. k must
	// be >= 1.
	Search(ctx context.Context, queryVec []float32, k int) ([]Result, error)
	Ping(ctx context.Context) bool
	Close() error
}
