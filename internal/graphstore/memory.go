package graphstore

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"deskrag/internal/apperr"
	"deskrag/internal/model"
)

var relSanitizer = regexp.MustCompile(`[^A-Z_]`)

type node struct {
	id    string
	label string
	props map[string]any
}

type edgeKey struct{ endpoint, rel string }

// memory is the in-memory fallback of spec.md §4.5, grounded on the
// teacher's memory_graph.go edgeKey/adjacency-map shape, extended with a
// reverse adjacency index so Degrees and ChunksForEntities — which the
// teacher's GraphDB does not need — can answer without a full scan.
type memory struct {
	mu       sync.RWMutex
	nodes    map[string]node
	forward  map[edgeKey]map[string]struct{} // (src, rel) -> dsts
	backward map[edgeKey]map[string]struct{} // (dst, rel) -> srcs
}

// NewMemory constructs the in-memory graph store fallback.
func NewMemory() Store {
	return &memory{
		nodes:    make(map[string]node),
		forward:  make(map[edgeKey]map[string]struct{}),
		backward: make(map[edgeKey]map[string]struct{}),
	}
}

func (m *memory) upsertNode(id, label string, props map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]any, len(props))
	for k, v := range props {
		cp[k] = v
	}
	m.nodes[id] = node{id: id, label: label, props: cp}
}

func (m *memory) upsertEdge(src, rel, dst string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fk := edgeKey{endpoint: src, rel: rel}
	if m.forward[fk] == nil {
		m.forward[fk] = make(map[string]struct{})
	}
	m.forward[fk][dst] = struct{}{}

	bk := edgeKey{endpoint: dst, rel: rel}
	if m.backward[bk] == nil {
		m.backward[bk] = make(map[string]struct{})
	}
	m.backward[bk][src] = struct{}{}
}

func (m *memory) UpsertDocument(_ context.Context, docID, title string) error {
	m.upsertNode(docID, "Document", map[string]any{"title": title})
	return nil
}

func (m *memory) UpsertChunk(_ context.Context, chunkID, docID string, ord int, text string, tokens int) error {
	m.upsertNode(chunkID, "Chunk", map[string]any{
		"doc_id": docID,
		"ord":    ord,
		"text":   text,
		"tokens": tokens,
	})
	return nil
}

func (m *memory) LinkDocChunk(_ context.Context, docID, chunkID string) error {
	m.upsertEdge(docID, RelHasChunk, chunkID)
	return nil
}

func (m *memory) UpsertEntity(_ context.Context, entityKey, displayName string) error {
	m.upsertNode(entityKey, "Entity", map[string]any{"display_name": displayName})
	return nil
}

func (m *memory) LinkChunkEntity(_ context.Context, chunkID, entityKey, rel string) error {
	sanitized := relSanitizer.ReplaceAllString(rel, "")
	if sanitized == "" {
		return apperr.BadInput("graphstore.memory.LinkChunkEntity", nil)
	}
	m.upsertEdge(chunkID, sanitized, entityKey)
	return nil
}

func (m *memory) Degrees(_ context.Context, entityKeys []string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(entityKeys))
	for _, key := range entityKeys {
		bk := edgeKey{endpoint: key, rel: RelAbout}
		out[key] = len(m.backward[bk])
	}
	return out, nil
}

func (m *memory) ChunksForEntities(_ context.Context, entityKeys []string, limit int) ([]model.RetrievedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matchCount := make(map[string]int)
	for _, key := range entityKeys {
		bk := edgeKey{endpoint: key, rel: RelAbout}
		for chunkID := range m.backward[bk] {
			matchCount[chunkID]++
		}
	}

	type candidate struct {
		chunk model.RetrievedChunk
		docID string
		ord   int
	}

	candidates := make([]candidate, 0, len(matchCount))
	for chunkID, count := range matchCount {
		n, ok := m.nodes[chunkID]
		if !ok {
			continue
		}
		docID, _ := n.props["doc_id"].(string)
		ord, _ := n.props["ord"].(int)
		text, _ := n.props["text"].(string)
		score := float32(1) / float32(1+count)
		candidates = append(candidates, candidate{
			chunk: model.RetrievedChunk{
				ID:    chunkID,
				DocID: docID,
				Ord:   ord,
				Text:  text,
				Metadata: map[string]any{
					"doc_id": docID,
					"ord":    ord,
				},
				Score: score,
			},
			docID: docID,
			ord:   ord,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].chunk.Score != candidates[j].chunk.Score {
			return candidates[i].chunk.Score < candidates[j].chunk.Score
		}
		if candidates[i].docID != candidates[j].docID {
			return candidates[i].docID < candidates[j].docID
		}
		return candidates[i].ord < candidates[j].ord
	})

	if limit > 0 && limit < len(candidates) {
		candidates = candidates[:limit]
	}

	out := make([]model.RetrievedChunk, len(candidates))
	for i, c := range candidates {
		out[i] = c.chunk
	}
	return out, nil
}

func (m *memory) Ping(_ context.Context) bool { return true }
func (m *memory) Close() error                { return nil }
