package embedder

import (
	"context"
	"fmt"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"deskrag/internal/apperr"
	"deskrag/internal/obs"
)

func errUnexpectedCount(got, want int) error {
	return fmt.Errorf("unexpected embedding count: got %d, want %d", got, want)
}

// openaiEmbedder is the in-process-SDK embedding variant of spec.md
// §4.3(b), grounded on the teacher's internal/llm/openai/client.go SDK
// usage, adapted from chat completions to the embeddings endpoint.
type openaiEmbedder struct {
	client sdk.Client
	model  string
	dim    int
}

// NewOpenAI constructs an embedder backed by the OpenAI embeddings API.
func NewOpenAI(apiKey, baseURL, model string, dim int) Embedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, option.WithHTTPClient(obs.NewHTTPClient(nil)))
	return &openaiEmbedder{client: sdk.NewClient(opts...), model: model, dim: dim}
}

func (o *openaiEmbedder) Name() string   { return o.model }
func (o *openaiEmbedder) Dimension() int { return o.dim }

func (o *openaiEmbedder) Ping(ctx context.Context) error {
	_, err := o.EmbedBatch(ctx, []string{"ping"})
	if err != nil {
		return apperr.ProviderError("embedder.openai.Ping", err)
	}
	return nil
}

func (o *openaiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, span := obs.StartSpan(ctx, "embedder.openai.EmbedBatch")
	defer span.End()

	resp, err := o.client.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Model: o.model,
		Input: sdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, apperr.ProviderError("embedder.openai.EmbedBatch", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, apperr.ProviderError("embedder.openai.EmbedBatch", errUnexpectedCount(len(resp.Data), len(texts)))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float32(f)
		}
		out[i] = vec
	}
	return out, nil
}
