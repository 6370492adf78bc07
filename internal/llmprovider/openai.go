package llmprovider

import (
	"context"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"deskrag/internal/apperr"
	"deskrag/internal/obs"
)

// openaiProvider is a single-turn OpenAI-compatible adapter, grounded on
// the teacher's internal/llm/openai/client.go SDK usage; baseURL lets the
// same adapter target self-hosted OpenAI-compatible servers, matching the
// teacher's "local" provider kind.
type openaiProvider struct {
	client  sdk.Client
	model   string
	timeout time.Duration
}

// NewOpenAI constructs an OpenAI-backed LM provider. baseURL may be empty
// to use the default OpenAI API.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithHTTPClient(obs.NewHTTPClient(nil))}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openaiProvider{client: sdk.NewClient(opts...), model: model, timeout: timeout}
}

func (p *openaiProvider) Name() string { return "openai" }

func (p *openaiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := obs.StartSpan(ctx, "llmprovider.openai.Generate")
	defer span.End()

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(cctx, sdk.ChatCompletionNewParams{
		Model: p.model,
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", apperr.ProviderError("llmprovider.openai.Generate", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperr.ProviderError("llmprovider.openai.Generate", errEmptyResponse("openai"))
	}
	return resp.Choices[0].Message.Content, nil
}
