package llmprovider

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"deskrag/internal/apperr"
	"deskrag/internal/obs"
)

// anthropicProvider is a single-turn Anthropic adapter, grounded on the
// teacher's internal/llm/anthropic/client.go Messages.New call. The
// teacher's streaming, extended-thinking, and tool-calling machinery is
// dropped: spec.md §4.9's contract is generate(prompt) -> string.
type anthropicProvider struct {
	sdk     anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropic constructs an Anthropic-backed LM provider.
func NewAnthropic(apiKey, model string, timeout time.Duration) Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(obs.NewHTTPClient(nil)),
	)
	return &anthropicProvider{sdk: client, model: model, timeout: timeout}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := obs.StartSpan(ctx, "llmprovider.anthropic.Generate")
	defer span.End()

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.sdk.Messages.New(cctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", apperr.ProviderError("llmprovider.anthropic.Generate", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", apperr.ProviderError("llmprovider.anthropic.Generate", errEmptyResponse("anthropic"))
	}
	return text, nil
}
