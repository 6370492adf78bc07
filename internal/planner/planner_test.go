package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskrag/internal/model"
)

// fakeGraph lets each test control the degree map Degrees returns, without
// depending on graphstore's in-memory implementation.
type fakeGraph struct {
	degrees map[string]int
}

func (f *fakeGraph) UpsertDocument(context.Context, string, string) error          { return nil }
func (f *fakeGraph) UpsertChunk(context.Context, string, string, int, string, int) error {
	return nil
}
func (f *fakeGraph) LinkDocChunk(context.Context, string, string) error           { return nil }
func (f *fakeGraph) UpsertEntity(context.Context, string, string) error           { return nil }
func (f *fakeGraph) LinkChunkEntity(context.Context, string, string, string) error { return nil }
func (f *fakeGraph) Degrees(_ context.Context, keys []string) (map[string]int, error) {
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[k] = f.degrees[k]
	}
	return out, nil
}
func (f *fakeGraph) ChunksForEntities(context.Context, []string, int) ([]model.RetrievedChunk, error) {
	return nil, nil
}
func (f *fakeGraph) Ping(context.Context) bool { return true }
func (f *fakeGraph) Close() error              { return nil }

// TestPlan_NoEntitiesSelectsVector pins spec.md §8 property 4: a question
// with no extractable entities always routes to VECTOR.
func TestPlan_NoEntitiesSelectsVector(t *testing.T) {
	p := New(&fakeGraph{}, 6, 3)
	decision, err := p.Plan(context.Background(), "is it ok")
	require.NoError(t, err)
	assert.Equal(t, model.ModeVector, decision.Mode)
}

func TestPlan_ZeroDegreeEntitiesSelectsVector(t *testing.T) {
	p := New(&fakeGraph{degrees: map[string]int{"router": 0}}, 6, 3)
	decision, err := p.Plan(context.Background(), "Router issue")
	require.NoError(t, err)
	assert.Equal(t, model.ModeVector, decision.Mode)
}

// TestPlan_HighDegreeSelectsGraph pins spec.md §8 property 4: max degree at
// or above GRAPH_THRESHOLD selects pure GRAPH mode.
func TestPlan_HighDegreeSelectsGraph(t *testing.T) {
	p := New(&fakeGraph{degrees: map[string]int{"router": 5}}, 6, 3)
	decision, err := p.Plan(context.Background(), "Router issue")
	require.NoError(t, err)
	assert.Equal(t, model.ModeGraph, decision.Mode)
	assert.Contains(t, decision.Entities, "router")
}

func TestPlan_SparseGraphSelectsHybrid(t *testing.T) {
	p := New(&fakeGraph{degrees: map[string]int{"router": 1}}, 6, 3)
	decision, err := p.Plan(context.Background(), "Router issue")
	require.NoError(t, err)
	assert.Equal(t, model.ModeHybrid, decision.Mode)
}

func TestNew_AppliesDefaults(t *testing.T) {
	p := New(&fakeGraph{}, 0, 0)
	assert.Equal(t, 6, p.TopK)
	assert.Equal(t, DefaultGraphThreshold, p.GraphThreshold)
}

func TestPlan_DecisionCarriesTopK(t *testing.T) {
	p := New(&fakeGraph{}, 9, 3)
	decision, err := p.Plan(context.Background(), "no entities here")
	require.NoError(t, err)
	assert.Equal(t, 9, decision.TopK)
}
