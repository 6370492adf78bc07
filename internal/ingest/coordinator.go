// Package ingest implements deskrag's C6 component: the ingestion
// coordinator orchestrating C1 (chunker), C2 (entity extractor), C3
// (embedder), C4 (vector store), and C5 (graph store) under the
// atomicity and idempotency constraints of spec.md §4.6. Orchestration
// style — per-stage timing, structured logging — is grounded on the
// teacher's rag/service/service.go Ingest method.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"deskrag/internal/apperr"
	"deskrag/internal/chunker"
	"deskrag/internal/embedder"
	"deskrag/internal/entity"
	"deskrag/internal/graphstore"
	"deskrag/internal/obs"
	"deskrag/internal/vectorstore"
)

// Settings configures the coordinator's chunking behavior.
type Settings struct {
	ChunkTokens  int
	ChunkOverlap int
}

// Result is C6's IngestResult, per spec.md §4.6.
type Result struct {
	DocID       string
	Chunks      int
	Entities    int
	VectorCount int
	Ms          int64
	Pages       int
}

// Coordinator orchestrates the ingestion pipeline.
type Coordinator struct {
	Vector   vectorstore.Store
	Graph    graphstore.Store
	Embedder embedder.Embedder
	Settings Settings
}

// New constructs a Coordinator over the given stores and embedder.
func New(vs vectorstore.Store, gs graphstore.Store, emb embedder.Embedder, settings Settings) *Coordinator {
	return &Coordinator{Vector: vs, Graph: gs, Embedder: emb, Settings: settings}
}

// IngestText implements spec.md §4.6's seven-step pipeline.
func (c *Coordinator) IngestText(ctx context.Context, title, text string) (Result, error) {
	start := time.Now()
	logger := obs.WithTrace(ctx)

	ctx, span := obs.StartSpan(ctx, "ingest.IngestText")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Ms: time.Since(start).Milliseconds()}, nil
	}

	docID := strings.ReplaceAll(uuid.New().String(), "-", "")

	stageStart := time.Now()
	rawChunks, err := chunker.Split(text, c.Settings.ChunkTokens, c.Settings.ChunkOverlap)
	obs.IngestStageMillis.WithLabelValues("chunk").Observe(float64(time.Since(stageStart).Milliseconds()))
	if err != nil {
		return Result{}, apperr.BadInput("ingest.IngestText.chunk", err)
	}

	type chunkRecord struct {
		chunkID string
		ord     int
		text    string
		tokens  int
	}
	chunks := make([]chunkRecord, len(rawChunks))
	texts := make([]string, len(rawChunks))
	for i, ch := range rawChunks {
		chunks[i] = chunkRecord{
			chunkID: fmt.Sprintf("%s-%d", docID, ch.Ord),
			ord:     ch.Ord,
			text:    ch.Text,
			tokens:  ch.Tokens,
		}
		texts[i] = ch.Text
	}

	stageStart = time.Now()
	vectors, err := c.Embedder.EmbedBatch(ctx, texts)
	obs.IngestStageMillis.WithLabelValues("embed").Observe(float64(time.Since(stageStart).Milliseconds()))
	if err != nil {
		logger.Warn().Err(err).Str("doc_id", docID).Msg("ingest: embedding failed, aborting before any store mutation")
		return Result{}, apperr.ProviderError("ingest.IngestText.embed", err)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, ch := range chunks {
		records[i] = vectorstore.Record{
			ChunkID: ch.chunkID,
			Text:    ch.text,
			Metadata: map[string]any{
				"doc_id": docID,
				"ord":    ch.ord,
				"title":  title,
			},
			Embedding: vectors[i],
		}
	}

	// Vector-first ordering: if graph upserts fail after this succeeds,
	// the chunk is still vector-searchable, satisfying spec.md §4.6's
	// invariant that HYBRID never returns a chunk with no vector record.
	stageStart = time.Now()
	if err := c.Vector.Upsert(ctx, records); err != nil {
		obs.IngestStageMillis.WithLabelValues("vector_upsert").Observe(float64(time.Since(stageStart).Milliseconds()))
		return Result{}, apperr.StoreError("ingest.IngestText.vector_upsert", err)
	}
	obs.IngestStageMillis.WithLabelValues("vector_upsert").Observe(float64(time.Since(stageStart).Milliseconds()))

	stageStart = time.Now()
	if err := c.Graph.UpsertDocument(ctx, docID, title); err != nil {
		logger.Warn().Err(err).Str("doc_id", docID).Msg("ingest: graph document upsert failed; result accepted with partial graph state per §4.6")
	} else {
		for _, ch := range chunks {
			if err := c.Graph.UpsertChunk(ctx, ch.chunkID, docID, ch.ord, ch.text, ch.tokens); err != nil {
				logger.Warn().Err(err).Str("chunk_id", ch.chunkID).Msg("ingest: graph chunk upsert failed; result accepted with partial graph state")
				continue
			}
			if err := c.Graph.LinkDocChunk(ctx, docID, ch.chunkID); err != nil {
				logger.Warn().Err(err).Str("chunk_id", ch.chunkID).Msg("ingest: HAS_CHUNK link failed; result accepted with partial graph state")
			}
		}
	}
	obs.IngestStageMillis.WithLabelValues("graph_upsert").Observe(float64(time.Since(stageStart).Milliseconds()))

	stageStart = time.Now()
	entityChunks := make([]entity.Chunk, len(chunks))
	for i, ch := range chunks {
		entityChunks[i] = entity.Chunk{Text: ch.text}
	}
	entityKeys := entity.Extract(entityChunks)
	for _, key := range entityKeys {
		if err := c.Graph.UpsertEntity(ctx, key, key); err != nil {
			logger.Warn().Err(err).Str("entity", key).Msg("ingest: entity upsert failed")
			continue
		}
		for _, ch := range chunks {
			if strings.Contains(strings.ToLower(ch.text), key) {
				if err := c.Graph.LinkChunkEntity(ctx, ch.chunkID, key, graphstore.RelAbout); err != nil {
					logger.Warn().Err(err).Str("entity", key).Str("chunk_id", ch.chunkID).Msg("ingest: ABOUT link failed")
				}
			}
		}
	}
	obs.IngestStageMillis.WithLabelValues("entities").Observe(float64(time.Since(stageStart).Milliseconds()))

	return Result{
		DocID:       docID,
		Chunks:      len(chunks),
		Entities:    len(entityKeys),
		VectorCount: len(records),
		Ms:          time.Since(start).Milliseconds(),
	}, nil
}
