package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"deskrag/internal/apperr"
	"deskrag/internal/obs"
)

// remote is the Remote HTTP embedder variant of spec.md §4.3(a), grounded
// on the teacher's internal/embedding.EmbedText: a raw POST to an
// OpenAI-compatible /embeddings-style endpoint.
type remote struct {
	baseURL   string
	path      string
	apiHeader string
	apiKey    string
	model     string
	dim       int
	timeout   time.Duration
	client    *http.Client
}

// NewRemote constructs a remote HTTP embedder. apiHeader selects how
// apiKey is sent: "Authorization" sends "Bearer <key>"; any other
// non-empty value is used as the literal header name.
func NewRemote(baseURL, path, apiHeader, apiKey, model string, dim int, timeout time.Duration) Embedder {
	if path == "" {
		path = "/embeddings"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &remote{
		baseURL:   baseURL,
		path:      path,
		apiHeader: apiHeader,
		apiKey:    apiKey,
		model:     model,
		dim:       dim,
		timeout:   timeout,
		client:    obs.NewHTTPClient(nil),
	}
}

func (r *remote) Name() string   { return r.model }
func (r *remote) Dimension() int { return r.dim }

func (r *remote) Ping(ctx context.Context) error {
	_, err := r.EmbedBatch(ctx, []string{"ping"})
	if err != nil {
		return apperr.ProviderError("embedder.remote.Ping", err)
	}
	return nil
}

type embedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResp struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (r *remote) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, span := obs.StartSpan(ctx, "embedder.remote.EmbedBatch")
	defer span.End()

	reqBody, err := json.Marshal(embedReq{Model: r.model, Input: texts})
	if err != nil {
		return nil, apperr.ProviderError("embedder.remote.EmbedBatch", err)
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, r.baseURL+r.path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, apperr.ProviderError("embedder.remote.EmbedBatch", err)
	}
	if r.apiHeader == "Authorization" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	} else if r.apiHeader != "" {
		req.Header.Set(r.apiHeader, r.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperr.ProviderError("embedder.remote.EmbedBatch", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.ProviderError("embedder.remote.EmbedBatch", fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode/100 != 2 {
		return nil, apperr.ProviderError("embedder.remote.EmbedBatch", fmt.Errorf("status %s: %s", resp.Status, string(body)))
	}

	var er embedResp
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, apperr.ProviderError("embedder.remote.EmbedBatch", fmt.Errorf("malformed payload: %w", err))
	}
	if len(er.Data) != len(texts) {
		return nil, apperr.ProviderError("embedder.remote.EmbedBatch", fmt.Errorf("unexpected embedding count: got %d, want %d", len(er.Data), len(texts)))
	}

	out := make([][]float32, len(er.Data))
	for i := range er.Data {
		out[i] = er.Data[i].Embedding
	}
	return out, nil
}
