package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// payloadIDField stores the original chunk_id in the point payload, since
// Qdrant point IDs must be UUIDs or positive integers.
const payloadIDField = "_original_id"

// payloadTextField stores the chunk text alongside its metadata, since
// Qdrant has no separate text column.
const payloadTextField = "_text"

// qdrantStore is the persistent implementation of spec.md §4.4, grounded
// on the teacher's qdrant_vector.go. The collection is created with
// Euclidean distance rather than the teacher's default cosine, so scores
// stay in the "smaller is closer" convention spec.md §3 requires.
type qdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewQdrant constructs a Qdrant-backed vector store, creating the
// collection if it does not already exist.
func NewQdrant(dsn, collection string, dimension int) (Store, error) {
	if collection == "" {
		return nil, fmt.Errorf("vectorstore: collection name is required")
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: parse qdrant dsn: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	portStr := parsed.Port()
	if portStr == "" {
		portStr = "6334"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: invalid port in qdrant dsn: %w", err)
	}
	cfg := &qdrant.Config{Host: host, Port: port}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: create qdrant client: %w", err)
	}

	q := &qdrantStore{client: client, collection: collection, dimension: dimension}
	if err := q.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("vectorstore: ensure collection: %w", err)
	}
	return q, nil
}

func (q *qdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection exists: %w", err)
	}
	if exists {
		return nil
	}
	if q.dimension <= 0 {
		return fmt.Errorf("qdrant requires dimension > 0")
	}
	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: qdrant.Distance_Euclid,
		}),
	})
}

func (q *qdrantStore) Upsert(ctx context.Context, records []Record) error {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		pointID := chunkPointID(r.ChunkID)

		payload := make(map[string]any, len(r.Metadata)+2)
		for k, v := range r.Metadata {
			payload[k] = v
		}
		payload[payloadTextField] = r.Text
		payload[payloadIDField] = r.ChunkID

		vec := append([]float32(nil), r.Embedding...)
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID),
			Vectors: qdrant.NewVectorsDense(vec),
			Payload: qdrant.NewValueMap(payload),
		})
	}
	if len(points) == 0 {
		return nil
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	return err
}

func (q *qdrantStore) Search(ctx context.Context, queryVec []float32, k int) ([]Result, error) {
	if k < 1 {
		k = 1
	}
	limit := uint64(k)
	vec := append([]float32(nil), queryVec...)
	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(hits))
	for _, hit := range hits {
		var originalID, text string
		metadata := make(map[string]any)
		if hit.Payload != nil {
			for k, v := range hit.Payload {
				switch k {
				case payloadIDField:
					originalID = v.GetStringValue()
				case payloadTextField:
					text = v.GetStringValue()
				default:
					metadata[k] = v.GetStringValue()
				}
			}
		}
		id := originalID
		if id == "" {
			id = hit.Id.GetUuid()
		}
		out = append(out, Result{
			ID:       id,
			Text:     text,
			Metadata: metadata,
			// Qdrant's Euclidean query score is the raw distance; smaller
			// is closer, matching spec.md's convention directly.
			Score: hit.Score,
		})
	}
	return out, nil
}

func (q *qdrantStore) Ping(ctx context.Context) bool {
	_, err := q.client.CollectionExists(ctx, q.collection)
	return err == nil
}

func (q *qdrantStore) Close() error { return q.client.Close() }

// chunkPointID deterministically derives a Qdrant-legal UUID point ID from
// a deskrag chunk_id, since Qdrant only allows UUID or integer point IDs.
func chunkPointID(chunkID string) string {
	if _, err := uuid.Parse(chunkID); err == nil {
		return chunkID
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
