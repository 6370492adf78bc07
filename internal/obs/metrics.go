package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestStageMillis records per-stage ingest latency, mirroring the
// teacher's ingestion_stage_ms histogram but keyed by deskrag's own
// pipeline stages (chunk, embed, vector_upsert, graph_upsert, entities).
var IngestStageMillis = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "deskrag_ingest_stage_ms",
	Help:    "Milliseconds spent per ingest pipeline stage.",
	Buckets: prometheus.ExponentialBuckets(1, 2, 14),
}, []string{"stage"})

// RetrieveModeTotal counts retrievals by the mode the planner selected and
// the mode that actually ran after fallback.
var RetrieveModeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "deskrag_retrieve_mode_total",
	Help: "Count of retrievals by planned mode and executed mode.",
}, []string{"planned_mode", "executed_mode"})

// ProviderFallbackTotal counts StartupFallback and per-request
// ProviderError downgrades, by component and reason ("startup" or
// "request").
var ProviderFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "deskrag_provider_fallback_total",
	Help: "Count of provider/store fallbacks, by component and reason.",
}, []string{"component", "reason"})

// IngestRequestsTotal counts ingest calls by source (paste/pdf/url) and
// outcome (ok/error).
var IngestRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "deskrag_ingest_requests_total",
	Help: "Count of ingest requests by source and outcome.",
}, []string{"source", "outcome"})
