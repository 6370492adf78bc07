package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"deskrag/internal/apperr"
	"deskrag/internal/obs"
	"deskrag/internal/responder"
)

// recordIngestOutcome increments the per-source ingest counter. outcome is
// "ok" or "error".
func recordIngestOutcome(source string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	obs.IngestRequestsTotal.WithLabelValues(source, outcome).Inc()
}

type pasteRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type urlRequest struct {
	URL      string `json:"url"`
	MaxDepth int    `json:"max_depth"`
	MaxPages int    `json:"max_pages"`
}

type ingestResponse struct {
	Chunks      int   `json:"chunks"`
	Entities    int   `json:"entities"`
	VectorCount int   `json:"vector_count"`
	Ms          int64 `json:"ms"`
	Pages       int   `json:"pages,omitempty"`
}

type askRequest struct {
	Question         string `json:"question"`
	TopK             int    `json:"top_k"`
	ProviderOverride string `json:"provider_override"`
}

type citationDTO struct {
	DocID   string  `json:"doc_id"`
	ChunkID string  `json:"chunk_id"`
	Score   float32 `json:"score"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
}

type askResponse struct {
	Answer     string            `json:"answer"`
	Citations  []citationDTO     `json:"citations"`
	Planner    plannerDTO        `json:"planner"`
	LatencyMs  int64             `json:"latency_ms"`
	Provider   string            `json:"provider"`
	Confidence float64           `json:"confidence"`
	Question   string            `json:"question"`
}

type plannerDTO struct {
	Mode     string   `json:"mode"`
	Reasons  []string `json:"reasons"`
	TopK     int      `json:"top_k"`
	Entities []string `json:"entities"`
}

func (s *Server) handleIngestPaste(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPasteBytes)
	var req pasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("httpapi.handleIngestPaste", err))
		return
	}
	res, err := s.coordinator.IngestText(r.Context(), req.Title, req.Text)
	recordIngestOutcome("paste", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Chunks: res.Chunks, Entities: res.Entities, VectorCount: res.VectorCount, Ms: res.Ms,
	})
}

func (s *Server) handleIngestPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPasteBytes)
	if err := r.ParseMultipartForm(maxPasteBytes); err != nil {
		writeError(w, apperr.BadInput("httpapi.handleIngestPDF", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.BadInput("httpapi.handleIngestPDF", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.BadInput("httpapi.handleIngestPDF", err))
		return
	}

	res, err := s.coordinator.IngestPDF(r.Context(), header.Filename, data)
	recordIngestOutcome("pdf", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Chunks: res.Chunks, Entities: res.Entities, VectorCount: res.VectorCount, Ms: res.Ms, Pages: res.Pages,
	})
}

func (s *Server) handleIngestURL(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBytes)
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("httpapi.handleIngestURL", err))
		return
	}
	res, err := s.coordinator.IngestURL(r.Context(), s.crawler, req.URL, req.MaxDepth, req.MaxPages)
	recordIngestOutcome("url", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Chunks: res.Chunks, Entities: res.Entities, VectorCount: res.VectorCount, Ms: res.Ms, Pages: res.Pages,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBytes)
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("httpapi.handleAsk", err))
		return
	}
	if req.Question == "" {
		writeError(w, apperr.BadInput("httpapi.handleAsk", errors.New("question must not be empty")))
		return
	}

	decision, err := s.planner.Plan(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.TopK > 0 {
		decision.TopK = req.TopK
	}

	chunks, _, err := s.retriever.Retrieve(r.Context(), req.Question, decision)
	if err != nil {
		obs.Logger.Warn().Err(err).Msg("httpapi: retrieval failed; answering with no citations")
		chunks = nil
	}

	resp := s.responder.Answer(r.Context(), req.Question, decision, chunks)
	writeJSON(w, http.StatusOK, toAskResponse(resp, req.Question))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.process.Health(r.Context())
	_, statErr := os.Stat(s.vectorDir)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                    "ok",
		"provider":                  health["llm_provider"].ActiveImpl,
		"model_name":                health["llm_provider"].ActiveModel,
		"embedder_reachable":        health["embedder"].Reachable,
		"vector_store_reachable":    health["vector_store"].Reachable,
		"graph_store_reachable":     health["graph_store"].Reachable,
		"llm_provider_reachable":    health["llm_provider"].Reachable,
		"graph_backend":             health["graph_store"].ActiveImpl,
		"vector_store_path":         s.vectorDir,
		"vector_store_path_exists":  statErr == nil,
	})
}

func toAskResponse(r responder.Response, question string) askResponse {
	citations := make([]citationDTO, len(r.Citations))
	for i, c := range r.Citations {
		citations[i] = citationDTO{DocID: c.DocID, ChunkID: c.ChunkID, Score: c.Score, Title: c.Title, Snippet: c.Snippet}
	}
	return askResponse{
		Answer:    r.Answer,
		Citations: citations,
		Planner: plannerDTO{
			Mode:     string(r.Planner.Mode),
			Reasons:  r.Planner.Reasons,
			TopK:     r.Planner.TopK,
			Entities: r.Planner.Entities,
		},
		LatencyMs:  r.LatencyMs,
		Provider:   r.Provider,
		Confidence: r.Confidence,
		Question:   question,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	if kind, ok := apperr.KindOf(err); ok {
		switch kind {
		case apperr.KindBadInput:
			status = http.StatusBadRequest
		case apperr.KindStoreError:
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
