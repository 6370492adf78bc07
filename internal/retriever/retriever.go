// Package retriever implements deskrag's C8 component: executing the
// planner's chosen mode with the fallback lattice of spec.md §4.8.
// Unlike the teacher's rag/retrieve package — which fuses two independent
// rankings via reciprocal rank fusion (fusion.go) and expands results by
// walking graph edges outward (graph_expand.go) — this package implements
// spec.md's simpler, pinned algorithm: filter vector hits by graph
// membership, falling back to unfiltered vectors when the intersection is
// empty. The teacher's RRF/expand logic is not reused (see DESIGN.md).
package retriever

import (
	"context"

	"deskrag/internal/embedder"
	"deskrag/internal/graphstore"
	"deskrag/internal/model"
	"deskrag/internal/obs"
	"deskrag/internal/vectorstore"
)

// Diagnostics records which fallback path, if any, fired — surfaced for
// observability per spec.md §8's property 7.
type Diagnostics struct {
	ExecutedMode model.PlannerMode
	FallbackUsed bool
	FallbackFrom model.PlannerMode
}

// Retriever executes a PlannerDecision against the vector and graph
// stores. It never mutates state (spec.md §2: "C8 is read-only").
type Retriever struct {
	Vector   vectorstore.Store
	Graph    graphstore.Store
	Embedder embedder.Embedder
}

// New constructs a Retriever.
func New(vs vectorstore.Store, gs graphstore.Store, emb embedder.Embedder) *Retriever {
	return &Retriever{Vector: vs, Graph: gs, Embedder: emb}
}

// Retrieve implements spec.md §4.8's VECTOR/GRAPH/HYBRID algorithms.
func (r *Retriever) Retrieve(ctx context.Context, question string, decision model.PlannerDecision) ([]model.RetrievedChunk, Diagnostics, error) {
	chunks, diag, err := r.retrieve(ctx, question, decision)
	if err == nil {
		obs.RetrieveModeTotal.WithLabelValues(string(decision.Mode), string(diag.ExecutedMode)).Inc()
	}
	return chunks, diag, err
}

func (r *Retriever) retrieve(ctx context.Context, question string, decision model.PlannerDecision) ([]model.RetrievedChunk, Diagnostics, error) {
	switch decision.Mode {
	case model.ModeVector:
		chunks, err := r.vectorSearch(ctx, question, decision.TopK)
		return chunks, Diagnostics{ExecutedMode: model.ModeVector}, err

	case model.ModeGraph:
		g, err := r.Graph.ChunksForEntities(ctx, decision.Entities, decision.TopK)
		if err != nil {
			return nil, Diagnostics{}, err
		}
		if len(g) == 0 {
			chunks, err := r.vectorSearch(ctx, question, decision.TopK)
			return chunks, Diagnostics{ExecutedMode: model.ModeVector, FallbackUsed: true, FallbackFrom: model.ModeGraph}, err
		}
		return g, Diagnostics{ExecutedMode: model.ModeGraph}, nil

	case model.ModeHybrid:
		g, err := r.Graph.ChunksForEntities(ctx, decision.Entities, decision.TopK)
		if err != nil {
			return nil, Diagnostics{}, err
		}
		if len(g) == 0 {
			chunks, err := r.vectorSearch(ctx, question, decision.TopK)
			return chunks, Diagnostics{ExecutedMode: model.ModeVector, FallbackUsed: true, FallbackFrom: model.ModeHybrid}, err
		}

		v, err := r.vectorSearch(ctx, question, decision.TopK)
		if err != nil {
			return nil, Diagnostics{}, err
		}

		inGraph := make(map[string]struct{}, len(g))
		for _, c := range g {
			inGraph[c.ID] = struct{}{}
		}
		var filtered []model.RetrievedChunk
		for _, c := range v {
			if _, ok := inGraph[c.ID]; ok {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) == 0 {
			// Graph provided no usable intersection; vectors win.
			return v, Diagnostics{ExecutedMode: model.ModeHybrid, FallbackUsed: true, FallbackFrom: model.ModeHybrid}, nil
		}
		return filtered, Diagnostics{ExecutedMode: model.ModeHybrid}, nil

	default:
		chunks, err := r.vectorSearch(ctx, question, decision.TopK)
		return chunks, Diagnostics{ExecutedMode: model.ModeVector}, err
	}
}

func (r *Retriever) vectorSearch(ctx context.Context, question string, topK int) ([]model.RetrievedChunk, error) {
	vecs, err := r.Embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	var qvec []float32
	if len(vecs) > 0 {
		qvec = vecs[0]
	}
	results, err := r.Vector.Search(ctx, qvec, topK)
	if err != nil {
		return nil, err
	}
	out := make([]model.RetrievedChunk, len(results))
	for i, res := range results {
		docID, _ := res.Metadata["doc_id"].(string)
		ord, _ := res.Metadata["ord"].(int)
		out[i] = model.RetrievedChunk{
			ID:       res.ID,
			DocID:    docID,
			Ord:      ord,
			Text:     res.Text,
			Metadata: res.Metadata,
			Score:    res.Score,
		}
	}
	return out, nil
}
