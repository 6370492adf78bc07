// Package embedder implements deskrag's C3 component. All three variants
// of spec.md §4.3 satisfy the same Embedder contract; the stub
// (deterministic) is grounded on the teacher's
// rag/embedder.deterministicEmbedder FNV-1a 3-gram hashing scheme.
package embedder

import "context"

// Embedder converts text batches to fixed-dimension embeddings.
type Embedder interface {
	// EmbedBatch returns one embedding per input text, same length and
	// order as texts. Must tolerate an empty slice (returns nil, nil).
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
	Dimension() int
	Ping(ctx context.Context) error
}
