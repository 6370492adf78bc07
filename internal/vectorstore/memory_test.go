package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_UpsertAndSearch_SmallerScoreIsCloser(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	err := store.Upsert(ctx, []Record{
		{ChunkID: "near", Text: "near", Embedding: []float32{1, 0, 0}},
		{ChunkID: "far", Text: "far", Embedding: []float32{0, 0, 10}},
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].ID)
	assert.Equal(t, "far", results[1].ID)
	assert.Less(t, results[0].Score, results[1].Score)
}

func TestMemory_Search_TopKLimitsResults(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []Record{
		{ChunkID: "a", Embedding: []float32{0, 0}},
		{ChunkID: "b", Embedding: []float32{1, 1}},
		{ChunkID: "c", Embedding: []float32{2, 2}},
	}))

	results, err := store.Search(ctx, []float32{0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestMemory_Search_EmptyQueryIsDeterministicByID(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []Record{
		{ChunkID: "zzz", Embedding: []float32{1}},
		{ChunkID: "aaa", Embedding: []float32{2}},
	}))

	results, err := store.Search(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "aaa", results[0].ID)
	assert.Equal(t, "zzz", results[1].ID)
}

func TestMemory_UpsertOverwritesByChunkID(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []Record{{ChunkID: "a", Text: "v1", Embedding: []float32{0}}}))
	require.NoError(t, store.Upsert(ctx, []Record{{ChunkID: "a", Text: "v2", Embedding: []float32{0}}}))

	results, err := store.Search(ctx, []float32{0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v2", results[0].Text)
}

func TestMemory_PingAlwaysTrue(t *testing.T) {
	store := NewMemory()
	assert.True(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}
