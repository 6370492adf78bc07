package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MODEL_PROVIDER", "MODEL_NAME", "MODEL_TIMEOUT_SEC",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY",
		"EMBED_PROVIDER", "EMBED_URL", "EMBED_API_KEY",
		"TOP_K", "GRAPH_THRESHOLD", "CHUNK_TOKENS", "CHUNK_OVERLAP",
		"GRAPH_URI", "GRAPH_USER", "GRAPH_PASSWORD",
		"VECTOR_DIR", "VECTOR_DIM", "HTTP_ADDR", "ALLOWED_ORIGINS", "LOG_LEVEL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.ModelProvider)
	assert.Equal(t, 6, cfg.TopK)
	assert.Equal(t, 3, cfg.GraphThreshold)
	assert.Equal(t, 512, cfg.ChunkTokens)
	assert.Equal(t, 64, cfg.ChunkOverlap)
	assert.Equal(t, 384, cfg.VectorDim)
	assert.Equal(t, "./data/vectors", cfg.VectorDir)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_RejectsOverlapGreaterThanOrEqualChunkTokens(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHUNK_TOKENS", "10")
	t.Setenv("CHUNK_OVERLAP", "10")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonIntegerEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOP_K", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_LowercasesProviderNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PROVIDER", "OpenAI")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.ModelProvider)
}

func TestLoad_ParsesAllowedOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}
