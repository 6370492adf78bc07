package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskrag/internal/model"
	"deskrag/internal/vectorstore"
)

type fakeEmbedder struct {
	dim int
	err error
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}
func (f *fakeEmbedder) Name() string              { return "fake" }
func (f *fakeEmbedder) Dimension() int            { return f.dim }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }

type fakeVector struct {
	upserted []vectorstore.Record
	err      error
}

func (f *fakeVector) Upsert(_ context.Context, records []vectorstore.Record) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, records...)
	return nil
}
func (f *fakeVector) Search(context.Context, []float32, int) ([]vectorstore.Result, error) {
	return nil, nil
}
func (f *fakeVector) Ping(context.Context) bool { return true }
func (f *fakeVector) Close() error              { return nil }

type fakeGraph struct {
	docUpsertErr error
	chunkCount   int
	entityCount  int
}

func (f *fakeGraph) UpsertDocument(context.Context, string, string) error { return f.docUpsertErr }
func (f *fakeGraph) UpsertChunk(context.Context, string, string, int, string, int) error {
	f.chunkCount++
	return nil
}
func (f *fakeGraph) LinkDocChunk(context.Context, string, string) error { return nil }
func (f *fakeGraph) UpsertEntity(context.Context, string, string) error {
	f.entityCount++
	return nil
}
func (f *fakeGraph) LinkChunkEntity(context.Context, string, string, string) error { return nil }
func (f *fakeGraph) Degrees(context.Context, []string) (map[string]int, error)    { return nil, nil }
func (f *fakeGraph) ChunksForEntities(context.Context, []string, int) ([]model.RetrievedChunk, error) {
	return nil, nil
}
func (f *fakeGraph) Ping(context.Context) bool { return true }
func (f *fakeGraph) Close() error              { return nil }

// TestIngestText_CountsMatch pins spec.md §8 invariant 1: the returned
// chunk/vector counts match what was actually written.
func TestIngestText_CountsMatch(t *testing.T) {
	vs := &fakeVector{}
	gs := &fakeGraph{}
	c := New(vs, gs, &fakeEmbedder{dim: 4}, Settings{ChunkTokens: 4, ChunkOverlap: 1})

	text := "Router Outage Network Operations Center escalated the VPN Gateway issue today"
	res, err := c.IngestText(context.Background(), "Incident 42", text)
	require.NoError(t, err)

	assert.Equal(t, res.Chunks, len(vs.upserted))
	assert.Equal(t, res.Chunks, gs.chunkCount)
	assert.Equal(t, res.Entities, gs.entityCount)
	assert.NotEmpty(t, res.DocID)
}

func TestIngestText_EmptyTextIsANoOp(t *testing.T) {
	vs := &fakeVector{}
	c := New(vs, &fakeGraph{}, &fakeEmbedder{dim: 4}, Settings{ChunkTokens: 4, ChunkOverlap: 1})

	res, err := c.IngestText(context.Background(), "title", "   ")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Chunks)
	assert.Empty(t, vs.upserted)
}

func TestIngestText_AbortsOnEmbeddingFailureBeforeAnyMutation(t *testing.T) {
	vs := &fakeVector{}
	gs := &fakeGraph{}
	c := New(vs, gs, &fakeEmbedder{dim: 4, err: errors.New("embedder down")}, Settings{ChunkTokens: 4, ChunkOverlap: 1})

	_, err := c.IngestText(context.Background(), "title", "some text to embed")
	require.Error(t, err)
	assert.Empty(t, vs.upserted)
	assert.Zero(t, gs.chunkCount)
}

func TestIngestText_PartialGraphFailureStillSucceeds(t *testing.T) {
	vs := &fakeVector{}
	gs := &fakeGraph{docUpsertErr: errors.New("graph down")}
	c := New(vs, gs, &fakeEmbedder{dim: 4}, Settings{ChunkTokens: 4, ChunkOverlap: 1})

	res, err := c.IngestText(context.Background(), "title", "some text content to chunk and embed here")
	require.NoError(t, err)
	assert.Equal(t, res.Chunks, len(vs.upserted))
	assert.Equal(t, 0, gs.chunkCount) // document upsert failed, so chunk linking was skipped
}

func TestIngestText_RejectsInvalidChunkSettingsAsBadInput(t *testing.T) {
	c := New(&fakeVector{}, &fakeGraph{}, &fakeEmbedder{dim: 4}, Settings{ChunkTokens: 0, ChunkOverlap: 0})
	_, err := c.IngestText(context.Background(), "title", "some text")
	require.Error(t, err)
}

func TestIngestText_UntitledDefaultsWhenTitleBlank(t *testing.T) {
	vs := &fakeVector{}
	c := New(vs, &fakeGraph{}, &fakeEmbedder{dim: 4}, Settings{ChunkTokens: 4, ChunkOverlap: 1})

	res, err := c.IngestText(context.Background(), "   ", "some text content here")
	require.NoError(t, err)
	require.NotEmpty(t, vs.upserted)
	assert.Equal(t, "Untitled", vs.upserted[0].Metadata["title"])
	_ = res
}
