package llmprovider

import (
	"context"
	"time"

	"google.golang.org/genai"

	"deskrag/internal/apperr"
	"deskrag/internal/obs"
)

// googleProvider is a single-turn Gemini adapter, grounded on the
// teacher's internal/llm/google/client.go genai.ClientConfig
// construction.
type googleProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGoogle constructs a Gemini-backed LM provider.
func NewGoogle(ctx context.Context, apiKey, model string, timeout time.Duration) (Provider, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		HTTPClient: obs.NewHTTPClient(nil),
	})
	if err != nil {
		return nil, apperr.ProviderError("llmprovider.NewGoogle", err)
	}
	return &googleProvider{client: client, model: model, timeout: timeout}, nil
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := obs.StartSpan(ctx, "llmprovider.google.Generate")
	defer span.End()

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(cctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", apperr.ProviderError("llmprovider.google.Generate", err)
	}
	text := resp.Text()
	if text == "" {
		return "", apperr.ProviderError("llmprovider.google.Generate", errEmptyResponse("google"))
	}
	return text, nil
}
