// Package model holds the handful of value types spec.md §3 shares across
// the vector store, graph store, planner, retriever, and responder, so
// those packages can exchange results without import cycles.
package model

// RetrievedChunk is a single retrieval hit: lower Score means closer
// (distance semantics). Consumers must not assume normalization.
type RetrievedChunk struct {
	ID       string
	DocID    string
	Ord      int
	Text     string
	Metadata map[string]any
	Score    float32
}

// PlannerMode is the retrieval mode the planner selects.
type PlannerMode string

const (
	ModeVector PlannerMode = "VECTOR"
	ModeGraph  PlannerMode = "GRAPH"
	ModeHybrid PlannerMode = "HYBRID"
)

// PlannerDecision is C7's output, per spec.md §3.
type PlannerDecision struct {
	Mode     PlannerMode
	Reasons  []string
	TopK     int
	Entities []string
}
