package vectorstore

import (
	"context"
	"sort"
	"sync"
)

// memory is the in-memory fallback of spec.md §4.4, grounded on the
// teacher's memory_vector.go RWMutex-guarded map, with squared-L2
// distance in place of cosine similarity so smaller always means closer.
type memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory constructs the in-memory vector store fallback.
func NewMemory() Store {
	return &memory{records: make(map[string]Record)}
}

func (m *memory) Upsert(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		cp := r
		cp.Metadata = copyMeta(r.Metadata)
		cp.Embedding = append([]float32(nil), r.Embedding...)
		m.records[r.ChunkID] = cp
	}
	return nil
}

func (m *memory) Search(_ context.Context, queryVec []float32, k int) ([]Result, error) {
	if k < 1 {
		k = 1
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		res  Result
		dist float32
	}

	all := make([]scored, 0, len(m.records))
	// Deterministic iteration order for the empty-query case: sort by ID.
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := m.records[id]
		var dist float32
		if len(queryVec) == 0 {
			dist = 0
		} else {
			dist = sqDist(queryVec, r.Embedding)
		}
		all = append(all, scored{
			res: Result{
				ID:       r.ChunkID,
				Text:     r.Text,
				Metadata: copyMeta(r.Metadata),
				Score:    dist,
			},
			dist: dist,
		})
	}

	if len(queryVec) == 0 {
		if k > len(all) {
			k = len(all)
		}
		out := make([]Result, k)
		for i := 0; i < k; i++ {
			out[i] = all[i].res
		}
		return out, nil
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if k > len(all) {
		k = len(all)
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = all[i].res
	}
	return out, nil
}

func (m *memory) Ping(_ context.Context) bool { return true }
func (m *memory) Close() error                { return nil }

func sqDist(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
