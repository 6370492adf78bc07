// Package planner implements deskrag's C7 component: routing a question
// to VECTOR/GRAPH/HYBRID with reasons, per spec.md §4.7. Orchestration
// shape (building an explicit decision value for downstream
// observability) is grounded on the teacher's
// rag/retrieve/query.go BuildQueryPlan.
package planner

import (
	"context"
	"fmt"

	"deskrag/internal/entity"
	"deskrag/internal/graphstore"
	"deskrag/internal/model"
)

// DefaultGraphThreshold is the named constant GRAPH_THRESHOLD of spec.md
// §4.7: the minimum maximum-degree at which the planner selects pure
// GRAPH mode.
const DefaultGraphThreshold = 3

// Planner decides a retrieval mode for a question.
type Planner struct {
	Graph          graphstore.Store
	TopK           int
	GraphThreshold int
}

// New constructs a Planner. graphThreshold <= 0 uses DefaultGraphThreshold;
// topK <= 0 uses 6 (spec.md §4.7's default).
func New(graph graphstore.Store, topK, graphThreshold int) *Planner {
	if topK <= 0 {
		topK = 6
	}
	if graphThreshold <= 0 {
		graphThreshold = DefaultGraphThreshold
	}
	return &Planner{Graph: graph, TopK: topK, GraphThreshold: graphThreshold}
}

// Plan implements spec.md §4.7's five-step algorithm.
func (p *Planner) Plan(ctx context.Context, question string) (model.PlannerDecision, error) {
	qents := entity.Extract([]entity.Chunk{{Text: question}})

	deg, err := p.Graph.Degrees(ctx, qents)
	if err != nil {
		return model.PlannerDecision{}, err
	}

	maxDeg := 0
	for _, d := range deg {
		if d > maxDeg {
			maxDeg = d
		}
	}

	var mode model.PlannerMode
	var reason string
	switch {
	case len(qents) == 0 || maxDeg == 0:
		mode = model.ModeVector
		reason = "no graph entities"
	case maxDeg >= p.GraphThreshold:
		mode = model.ModeGraph
		reason = fmt.Sprintf("graph coverage ≥ %d", p.GraphThreshold)
	default:
		mode = model.ModeHybrid
		reason = "graph is sparse"
	}

	var entities []string
	for _, e := range qents {
		if deg[e] > 0 {
			entities = append(entities, e)
		}
	}

	return model.PlannerDecision{
		Mode:     mode,
		Reasons:  []string{reason},
		TopK:     p.TopK,
		Entities: entities,
	}, nil
}
