package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskrag/internal/config"
	"deskrag/internal/graphstore"
	"deskrag/internal/ingest"
	"deskrag/internal/llmprovider"
	"deskrag/internal/planner"
	"deskrag/internal/responder"
	"deskrag/internal/retriever"
	"deskrag/internal/state"
	"deskrag/internal/vectorstore"
)

type noopCrawler struct{}

func (noopCrawler) Crawl(context.Context, string, int, int) ([]ingest.Page, error) {
	return []ingest.Page{{URL: "https://example.com", Text: "example page body content about widgets"}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{ModelProvider: "stub", EmbedProvider: "stub", VectorDim: 8, TopK: 6, GraphThreshold: 3, ChunkTokens: 64, ChunkOverlap: 8}
	process := state.Start(context.Background(), cfg,
		func() (vectorstore.Store, error) { return vectorstore.NewMemory(), nil },
		func() (graphstore.Store, error) { return graphstore.NewMemory(), nil },
	)
	coordinator := ingest.New(process.Vector, process.Graph, process.Embedder, ingest.Settings{ChunkTokens: 64, ChunkOverlap: 8})
	pl := planner.New(process.Graph, 6, 3)
	rt := retriever.New(process.Vector, process.Graph, process.Embedder)
	rs := responder.New(process.LM, "stub", true)

	return New(coordinator, noopCrawler{}, pl, rt, rs, process, "./data/vectors")
}

func TestHandleIngestPaste_AndAsk(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{
		"title": "Widget Manual",
		"text":  "The Widget Gateway Service handles widget provisioning requests for the Widget Team.",
	})
	resp, err := http.Post(ts.URL+"/ingest/paste", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ingestResp ingestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ingestResp))
	assert.Greater(t, ingestResp.Chunks, 0)

	askBody, _ := json.Marshal(map[string]string{"question": "What does the Widget Gateway Service do?"})
	askHTTP, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewReader(askBody))
	require.NoError(t, err)
	defer askHTTP.Body.Close()
	assert.Equal(t, http.StatusOK, askHTTP.StatusCode)

	var ask askResponse
	require.NoError(t, json.NewDecoder(askHTTP.Body).Decode(&ask))
	assert.Equal(t, llmprovider.DefaultStubAnswer, ask.Answer)
}

func TestHandleAsk_RejectsEmptyQuestion(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"question": ""})
	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleIngestURL_UsesCrawler(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"url": "https://example.com", "max_depth": 1, "max_pages": 1})
	resp, err := http.Post(ts.URL+"/ingest/url", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ingestResp ingestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ingestResp))
	assert.Equal(t, 1, ingestResp.Pages)
}

func TestHandleHealth_ReportsOK(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
