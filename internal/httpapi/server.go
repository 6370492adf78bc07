// Package httpapi is the thin HTTP transport around deskrag's core,
// grounded on the teacher's internal/httpapi/server.go Go 1.22+
// http.ServeMux method-pattern routing. Routes, middleware, and size
// limits are explicitly out of scope per spec.md §1; this layer exists
// only to give C6-C10 a runnable entry point, so it stays minimal:
// decode, call the core, encode, map apperr taxonomy to status codes.
package httpapi

import (
	"net/http"

	"deskrag/internal/ingest"
	"deskrag/internal/planner"
	"deskrag/internal/responder"
	"deskrag/internal/retriever"
	"deskrag/internal/state"
)

const (
	maxPasteBytes = 5 << 20 // 5 MiB, per spec.md §5
	maxAskBytes   = 1 << 20 // 1 MiB, per spec.md §5
)

// Server wires the ingestion coordinator, planner, retriever, and
// responder behind an HTTP handler.
type Server struct {
	mux         *http.ServeMux
	coordinator *ingest.Coordinator
	crawler     ingest.Crawler
	planner     *planner.Planner
	retriever   *retriever.Retriever
	responder   *responder.Responder
	process     *state.Process
	vectorDir   string
}

// New constructs a Server and registers its routes.
func New(coordinator *ingest.Coordinator, crawler ingest.Crawler, pl *planner.Planner, rt *retriever.Retriever, rs *responder.Responder, proc *state.Process, vectorDir string) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		coordinator: coordinator,
		crawler:     crawler,
		planner:     pl,
		retriever:   rt,
		responder:   rs,
		process:     proc,
		vectorDir:   vectorDir,
	}
	s.registerRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /ingest/paste", s.handleIngestPaste)
	s.mux.HandleFunc("POST /ingest/pdf", s.handleIngestPDF)
	s.mux.HandleFunc("POST /ingest/url", s.handleIngestURL)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}
