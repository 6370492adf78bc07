package llmprovider

import (
	"context"
	"fmt"
	"time"

	"deskrag/internal/apperr"
	"deskrag/internal/obs"
)

func errEmptyResponse(vendor string) error {
	return fmt.Errorf("%s: empty response payload", vendor)
}

// Settings configures provider construction and the auto-selection
// preference order.
type Settings struct {
	Provider        string // explicit name, or "auto"
	Model           string
	TimeoutSec      int
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GoogleAPIKey    string
	// PreferenceOrder is the vendor try-order for "auto" selection.
	PreferenceOrder []string
}

// Select constructs the configured provider, per spec.md §4.9's
// selection rule: an explicit name is constructed directly; "auto" probes
// hosted/local vendors in configured preference order and falls back to
// the stub with a logged, human-readable reason. Reachability is probed
// with a bounded timeout via a trial Generate call.
func Select(ctx context.Context, s Settings) (provider Provider, fellBack bool, reason string) {
	timeout := time.Duration(s.TimeoutSec) * time.Second

	build := func(name string) (Provider, error) {
		switch name {
		case "anthropic":
			if s.AnthropicAPIKey == "" {
				return nil, fmt.Errorf("anthropic: no API key configured")
			}
			return NewAnthropic(s.AnthropicAPIKey, s.Model, timeout), nil
		case "openai":
			if s.OpenAIAPIKey == "" {
				return nil, fmt.Errorf("openai: no API key configured")
			}
			return NewOpenAI(s.OpenAIAPIKey, s.OpenAIBaseURL, s.Model, timeout), nil
		case "google":
			if s.GoogleAPIKey == "" {
				return nil, fmt.Errorf("google: no API key configured")
			}
			return NewGoogle(ctx, s.GoogleAPIKey, s.Model, timeout)
		case "stub":
			return NewStub(), nil
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}

	probe := func(p Provider) bool {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		_, err := p.Generate(pctx, "ping")
		return err == nil
	}

	if s.Provider != "auto" && s.Provider != "" {
		p, err := build(s.Provider)
		if err != nil {
			obs.Logger.Warn().Err(err).Str("provider", s.Provider).Msg("llmprovider: configured provider unavailable, falling back to stub")
			return NewStub(), true, apperr.StartupFallback("llmprovider.Select", err).Error()
		}
		return p, false, ""
	}

	order := s.PreferenceOrder
	if len(order) == 0 {
		order = []string{"anthropic", "openai", "google"}
	}
	for _, name := range order {
		p, err := build(name)
		if err != nil {
			continue
		}
		if probe(p) {
			return p, false, ""
		}
	}

	reason = "no configured vendor was reachable; using stub provider"
	obs.Logger.Warn().Msg("llmprovider: " + reason)
	return NewStub(), true, apperr.StartupFallback("llmprovider.Select", fmt.Errorf("%s", reason)).Error()
}
