// Package config loads deskrag's process configuration from the
// environment, applying the defaults and validation rules of spec.md §6.
// A .env file is loaded first (for local development) via godotenv, with
// real process environment variables always taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is deskrag's full runtime configuration.
type Config struct {
	// LM provider selection.
	ModelProvider   string // auto | anthropic | openai | google | stub
	ModelName       string
	ModelTimeoutSec int
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	// Embedding provider selection.
	EmbedProvider string // auto | remote | openai | stub
	EmbedURL      string
	EmbedAPIKey   string

	// Retrieval.
	TopK           int
	GraphThreshold int

	// Ingestion.
	ChunkTokens  int
	ChunkOverlap int

	// Graph store (persistent).
	GraphURI      string
	GraphUser     string
	GraphPassword string

	// Vector store (persistent).
	VectorDir string
	VectorDim int

	// HTTP transport.
	HTTPAddr       string
	AllowedOrigins []string

	// Ambient.
	LogLevel string
}

// Load reads configuration from the environment (after attempting to load
// a local .env file) and validates it per spec.md §6.
func Load() (*Config, error) {
	_ = godotenv.Load() // best-effort; absence of .env is not an error

	cfg := &Config{
		ModelProvider:   lowerOr(os.Getenv("MODEL_PROVIDER"), "auto"),
		ModelName:       os.Getenv("MODEL_NAME"),
		ModelTimeoutSec: 0,
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		EmbedProvider:   lowerOr(os.Getenv("EMBED_PROVIDER"), "auto"),
		EmbedURL:        os.Getenv("EMBED_URL"),
		EmbedAPIKey:     os.Getenv("EMBED_API_KEY"),
		TopK:            0,
		GraphThreshold:  0,
		ChunkTokens:     0,
		ChunkOverlap:    0,
		GraphURI:        os.Getenv("GRAPH_URI"),
		GraphUser:       os.Getenv("GRAPH_USER"),
		GraphPassword:   os.Getenv("GRAPH_PASSWORD"),
		VectorDir:       os.Getenv("VECTOR_DIR"),
		VectorDim:       0,
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        lowerOr(os.Getenv("LOG_LEVEL"), "info"),
	}

	var err error
	if cfg.ModelTimeoutSec, err = positiveIntOr("MODEL_TIMEOUT_SEC", 10); err != nil {
		return nil, err
	}
	if cfg.TopK, err = positiveIntOr("TOP_K", 6); err != nil {
		return nil, err
	}
	if cfg.GraphThreshold, err = positiveIntOr("GRAPH_THRESHOLD", 3); err != nil {
		return nil, err
	}
	if cfg.ChunkTokens, err = positiveIntOr("CHUNK_TOKENS", 512); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = nonNegativeIntOr("CHUNK_OVERLAP", 64); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap >= cfg.ChunkTokens {
		return nil, fmt.Errorf("config: CHUNK_OVERLAP (%d) must be < CHUNK_TOKENS (%d)", cfg.ChunkOverlap, cfg.ChunkTokens)
	}
	if cfg.VectorDim, err = positiveIntOr("VECTOR_DIM", 384); err != nil {
		return nil, err
	}
	if cfg.VectorDir == "" {
		cfg.VectorDir = "./data/vectors"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}

func lowerOr(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

func positiveIntOr(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %d", key, n)
	}
	return n, nil
}

func nonNegativeIntOr(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("config: %s must be non-negative, got %d", key, n)
	}
	return n, nil
}
