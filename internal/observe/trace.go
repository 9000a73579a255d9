package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// scopeName is the instrumentation scope for murmur spans.
const scopeName = "github.com/MrWong99/murmur"

// Tracer returns the murmur tracer from the globally installed provider.
func Tracer() trace.Tracer {
	return otel.Tracer(scopeName)
}

// StartSpan opens a span named after the operation. End it with span.End().
func StartSpan(ctx context.Context, op string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, op, opts...)
}

// Logger derives a span-scoped logger from ctx. Inside a recorded span the
// trace and span IDs ride along as attributes, tying decode log lines back
// to their pipeline spans; outside a span it is the process default logger.
func Logger(ctx context.Context) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return slog.Default()
	}
	return slog.Default().With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}
