// Package graphstore implements deskrag's C5 component: Document/Chunk/
// Entity nodes and typed edges, extended past the teacher's GraphDB
// interface (UpsertNode/UpsertEdge/Neighbors/GetNode) with the two
// operations spec.md §4.5 requires: Degrees and ChunksForEntities.
package graphstore

import (
	"context"

	"deskrag/internal/model"
)

// Edge relation types. ABOUT is the only relation sanitized/validated by
// LinkChunkEntity; HasChunk is used internally between Document and Chunk.
const (
	RelAbout    = "ABOUT"
	RelHasChunk = "HAS_CHUNK"
)

// Store is the graph store contract of spec.md §4.5.
type Store interface {
	UpsertDocument(ctx context.Context, docID, title string) error
	UpsertChunk(ctx context.Context, chunkID, docID string, ord int, text string, tokens int) error
	LinkDocChunk(ctx context.Context, docID, chunkID string) error
	UpsertEntity(ctx context.Context, entityKey, displayName string) error
	// LinkChunkEntity creates an edge of relation rel (sanitized to
	// [A-Z_]+; callers pass RelAbout) from chunkID to entityKey.
	LinkChunkEntity(ctx context.Context, chunkID, entityKey, rel string) error

	// Degrees returns the number of ABOUT edges per entity key. Missing
	// keys return 0.
	Degrees(ctx context.Context, entityKeys []string) (map[string]int, error)
	// ChunksForEntities returns chunks with an ABOUT edge to any of the
	// given entities, each chunk at most once, scored 1/(1+matchCount),
	// ties broken by (doc_id, ord).
	ChunksForEntities(ctx context.Context, entityKeys []string, limit int) ([]model.RetrievedChunk, error)

	Ping(ctx context.Context) bool
	Close() error
}
