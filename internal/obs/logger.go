// Package obs carries deskrag's ambient logging, tracing, and metrics,
// wired the way intelligencedev/manifold wires its observability package:
// zerolog for structured logs, OpenTelemetry for request tracing,
// Prometheus for ingestion/retrieval metrics.
package obs

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the process-wide base logger. Configure once at startup via
// Init; every request path enriches it through WithTrace.
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the base logger's level and output from settings.
func Init(level string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	Logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// WithTrace returns a logger enriched with trace_id/span_id from ctx, if
// ctx carries a span context with a trace ID; trace_sampled is added when
// that span is sampled.
func WithTrace(ctx context.Context) *zerolog.Logger {
	l := Logger
	if ctx == nil {
		return &l
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
		if sc.HasSpanID() {
			l = l.With().Str("span_id", sc.SpanID().String()).Logger()
		}
		if sc.IsSampled() {
			l = l.With().Bool("trace_sampled", true).Logger()
		}
	}
	return &l
}
