// Package state implements deskrag's C11 component: the startup
// construct-or-fallback lifecycle of spec.md §4.11, grounded on the
// teacher's Manager{Search, Vector, Graph, Chat, Playground} aggregate
// (internal/persistence/databases/interfaces.go), generalized to
// deskrag's four dependencies (vector, graph, embedder, LM provider) and
// explicit StartupFallback logging at each fallback site.
package state

import (
	"context"
	"time"

	"deskrag/internal/apperr"
	"deskrag/internal/config"
	"deskrag/internal/embedder"
	"deskrag/internal/graphstore"
	"deskrag/internal/llmprovider"
	"deskrag/internal/obs"
	"deskrag/internal/vectorstore"
)

// ComponentHealth reports reachability, active implementation, and
// configured-vs-active model name for one of C3/C4/C5/C9.
type ComponentHealth struct {
	Reachable       bool
	ActiveImpl      string
	ConfiguredModel string
	ActiveModel     string
}

// Process holds the one process-wide instance each of vector store,
// graph store, embedder, and LM provider, per spec.md §9's "explicit
// context struct" design note — no package-level singletons beyond this
// struct.
type Process struct {
	Vector   vectorstore.Store
	Graph    graphstore.Store
	Embedder embedder.Embedder
	LM       llmprovider.Provider

	vectorIsFallback   bool
	graphIsFallback    bool
	embedderIsFallback bool
	lmIsFallback       bool
	lmConfiguredName   string
	lmConfiguredModel  string
}

// Start implements spec.md §4.11's four-step startup sequence: construct
// each dependency, substituting a fallback and logging a StartupFallback
// event when construction or a reachability probe fails.
func Start(ctx context.Context, cfg *config.Config, vectorCtor func() (vectorstore.Store, error), graphCtor func() (graphstore.Store, error)) *Process {
	p := &Process{}

	// 1. Vector store (persistent, then in-memory fallback).
	if vs, err := vectorCtor(); err != nil {
		logFallback("vectorstore", err)
		p.Vector = vectorstore.NewMemory()
		p.vectorIsFallback = true
	} else if !vs.Ping(ctx) {
		logFallback("vectorstore", errNotReachable("vector store"))
		_ = vs.Close()
		p.Vector = vectorstore.NewMemory()
		p.vectorIsFallback = true
	} else {
		p.Vector = vs
	}

	// 2. Graph store (persistent, then in-memory fallback).
	if gs, err := graphCtor(); err != nil {
		logFallback("graphstore", err)
		p.Graph = graphstore.NewMemory()
		p.graphIsFallback = true
	} else if !gs.Ping(ctx) {
		logFallback("graphstore", errNotReachable("graph store"))
		_ = gs.Close()
		p.Graph = graphstore.NewMemory()
		p.graphIsFallback = true
	} else {
		p.Graph = gs
	}

	// 3. Embedder (per settings, then stub).
	p.Embedder, p.embedderIsFallback = buildEmbedder(ctx, cfg)

	// 4. LM provider (per selection, then stub).
	timeoutSec := cfg.ModelTimeoutSec
	lm, fellBack, reason := llmprovider.Select(ctx, llmprovider.Settings{
		Provider:        cfg.ModelProvider,
		Model:           cfg.ModelName,
		TimeoutSec:      timeoutSec,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		GoogleAPIKey:    cfg.GoogleAPIKey,
	})
	if fellBack {
		logFallback("llmprovider", errString(reason))
	}
	p.LM = lm
	p.lmIsFallback = fellBack
	p.lmConfiguredName = cfg.ModelProvider
	p.lmConfiguredModel = cfg.ModelName

	return p
}

func buildEmbedder(ctx context.Context, cfg *config.Config) (embedder.Embedder, bool) {
	var emb embedder.Embedder
	switch cfg.EmbedProvider {
	case "remote":
		emb = embedder.NewRemote(cfg.EmbedURL, "/embeddings", "Authorization", cfg.EmbedAPIKey, cfg.ModelName, cfg.VectorDim, time.Duration(cfg.ModelTimeoutSec)*time.Second)
	case "openai":
		emb = embedder.NewOpenAI(cfg.EmbedAPIKey, cfg.EmbedURL, cfg.ModelName, cfg.VectorDim)
	case "stub":
		return embedder.NewDeterministic(cfg.VectorDim, true, 0), false
	default: // "auto"
		emb = embedder.NewRemote(cfg.EmbedURL, "/embeddings", "Authorization", cfg.EmbedAPIKey, cfg.ModelName, cfg.VectorDim, time.Duration(cfg.ModelTimeoutSec)*time.Second)
	}
	if err := emb.Ping(ctx); err != nil {
		logFallback("embedder", err)
		return embedder.NewDeterministic(cfg.VectorDim, true, 0), true
	}
	return emb, false
}

// Health returns the health of each of C3/C4/C5/C9.
func (p *Process) Health(ctx context.Context) map[string]ComponentHealth {
	activeModel := p.lmConfiguredModel
	if p.lmIsFallback {
		activeModel = p.LM.Name()
	}
	return map[string]ComponentHealth{
		"embedder": {
			Reachable:  p.Embedder.Ping(ctx) == nil,
			ActiveImpl: p.Embedder.Name(),
		},
		"vector_store": {
			Reachable:  p.Vector.Ping(ctx),
			ActiveImpl: fallbackLabel(p.vectorIsFallback, "persistent"),
		},
		"graph_store": {
			Reachable:  p.Graph.Ping(ctx),
			ActiveImpl: fallbackLabel(p.graphIsFallback, "persistent"),
		},
		"llm_provider": {
			Reachable:       !p.lmIsFallback,
			ActiveImpl:      p.LM.Name(),
			ConfiguredModel: p.lmConfiguredModel,
			ActiveModel:     activeModel,
		},
	}
}

// Close releases external handles held by whichever of C4/C5 hold them.
func (p *Process) Close() error {
	if err := p.Vector.Close(); err != nil {
		return err
	}
	return p.Graph.Close()
}

func fallbackLabel(isFallback bool, persistentName string) string {
	if isFallback {
		return "memory"
	}
	return persistentName
}

func logFallback(component string, err error) {
	obs.ProviderFallbackTotal.WithLabelValues(component, "startup").Inc()
	fe := apperr.StartupFallback("state.Start."+component, err)
	obs.Logger.Warn().Err(fe).Str("component", component).Msg("state: activating fallback")
}

func errNotReachable(what string) error {
	return &notReachableErr{what: what}
}

type notReachableErr struct{ what string }

func (e *notReachableErr) Error() string { return e.what + " is not reachable" }

func errString(s string) error {
	if s == "" {
		return nil
	}
	return &notReachableErr{what: s}
}
