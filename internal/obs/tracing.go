package obs

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the process-wide tracer used for ingest/ask/provider-call
// spans. It delegates to the global OpenTelemetry TracerProvider, which is
// a no-op unless one is registered with otel.SetTracerProvider; deskrag
// itself registers none, so spans are no-ops by default.
var Tracer = otel.Tracer("deskrag")

// StartSpan starts a span named name as a child of ctx's current span.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, name)
}

// NewHTTPClient returns base instrumented with an OpenTelemetry transport,
// used for every outbound call to a remote C3/C9 provider.
func NewHTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	base.Transport = otelhttp.NewTransport(rt)
	return base
}
