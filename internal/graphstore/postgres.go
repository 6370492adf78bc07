package graphstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"deskrag/internal/apperr"
	"deskrag/internal/model"
)

// postgres is the persistent implementation of spec.md §4.5, grounded on
// the teacher's postgres_graph.go nodes/edges JSONB schema, with Degrees
// and ChunksForEntities added as SQL queries over the same `edges` table
// the teacher uses for Neighbors.
type postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed graph store, creating the
// nodes/edges tables if they do not already exist. Node and edge upserts
// use ON CONFLICT merges so concurrent ingests touching the same entity
// converge to one node, per spec.md §9's commutative-merge design note.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (Store, error) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			props JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			id BIGSERIAL PRIMARY KEY,
			source TEXT NOT NULL,
			rel TEXT NOT NULL,
			target TEXT NOT NULL,
			UNIQUE(source, rel, target)
		)`,
		`CREATE INDEX IF NOT EXISTS edges_src_rel ON edges(source, rel)`,
		`CREATE INDEX IF NOT EXISTS edges_dst_rel ON edges(target, rel)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, err
		}
	}
	return &postgres{pool: pool}, nil
}

func (g *postgres) upsertNode(ctx context.Context, id, label string, props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}
	_, err := g.pool.Exec(ctx, `
INSERT INTO nodes(id, label, props) VALUES($1,$2,$3)
ON CONFLICT (id) DO UPDATE SET label=EXCLUDED.label, props=EXCLUDED.props
`, id, label, props)
	return err
}

func (g *postgres) upsertEdge(ctx context.Context, src, rel, dst string) error {
	_, err := g.pool.Exec(ctx, `
INSERT INTO edges(source, rel, target) VALUES($1,$2,$3)
ON CONFLICT (source, rel, target) DO NOTHING
`, src, rel, dst)
	return err
}

func (g *postgres) UpsertDocument(ctx context.Context, docID, title string) error {
	return g.upsertNode(ctx, docID, "Document", map[string]any{"title": title})
}

func (g *postgres) UpsertChunk(ctx context.Context, chunkID, docID string, ord int, text string, tokens int) error {
	return g.upsertNode(ctx, chunkID, "Chunk", map[string]any{
		"doc_id": docID,
		"ord":    ord,
		"text":   text,
		"tokens": tokens,
	})
}

func (g *postgres) LinkDocChunk(ctx context.Context, docID, chunkID string) error {
	return g.upsertEdge(ctx, docID, RelHasChunk, chunkID)
}

func (g *postgres) UpsertEntity(ctx context.Context, entityKey, displayName string) error {
	return g.upsertNode(ctx, entityKey, "Entity", map[string]any{"display_name": displayName})
}

func (g *postgres) LinkChunkEntity(ctx context.Context, chunkID, entityKey, rel string) error {
	sanitized := relSanitizer.ReplaceAllString(rel, "")
	if sanitized == "" {
		return apperr.BadInput("graphstore.postgres.LinkChunkEntity", nil)
	}
	return g.upsertEdge(ctx, chunkID, sanitized, entityKey)
}

func (g *postgres) Degrees(ctx context.Context, entityKeys []string) (map[string]int, error) {
	out := make(map[string]int, len(entityKeys))
	for _, key := range entityKeys {
		out[key] = 0
	}
	if len(entityKeys) == 0 {
		return out, nil
	}
	rows, err := g.pool.Query(ctx, `
SELECT target, COUNT(*) FROM edges WHERE rel=$1 AND target = ANY($2) GROUP BY target
`, RelAbout, entityKeys)
	if err != nil {
		return nil, apperr.StoreError("graphstore.postgres.Degrees", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, apperr.StoreError("graphstore.postgres.Degrees", err)
		}
		out[key] = count
	}
	return out, rows.Err()
}

func (g *postgres) ChunksForEntities(ctx context.Context, entityKeys []string, limit int) ([]model.RetrievedChunk, error) {
	if len(entityKeys) == 0 {
		return nil, nil
	}
	rows, err := g.pool.Query(ctx, `
SELECT e.source AS chunk_id,
       c.props->>'doc_id' AS doc_id,
       (c.props->>'ord')::int AS ord,
       c.props->>'text' AS text,
       COUNT(*) AS match_count
FROM edges e
JOIN nodes c ON c.id = e.source
WHERE e.rel = $1 AND e.target = ANY($2)
GROUP BY e.source, c.props
ORDER BY match_count DESC, doc_id ASC, ord ASC
`, RelAbout, entityKeys)
	if err != nil {
		return nil, apperr.StoreError("graphstore.postgres.ChunksForEntities", err)
	}
	defer rows.Close()

	var out []model.RetrievedChunk
	for rows.Next() {
		var chunkID, docID, text string
		var ord, matchCount int
		if err := rows.Scan(&chunkID, &docID, &ord, &text, &matchCount); err != nil {
			return nil, apperr.StoreError("graphstore.postgres.ChunksForEntities", err)
		}
		out = append(out, model.RetrievedChunk{
			ID:    chunkID,
			DocID: docID,
			Ord:   ord,
			Text:  text,
			Metadata: map[string]any{
				"doc_id": docID,
				"ord":    ord,
			},
			Score: float32(1) / float32(1+matchCount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreError("graphstore.postgres.ChunksForEntities", err)
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (g *postgres) Ping(ctx context.Context) bool {
	return g.pool.Ping(ctx) == nil
}

func (g *postgres) Close() error {
	g.pool.Close()
	return nil
}
