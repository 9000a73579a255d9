package observe

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestTracerProvider returns a TracerProvider with an in-memory exporter
// for inspecting recorded spans.
func newTestTracerProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exp
}

func TestStartSpan_CreatesSpan(t *testing.T) {
	tp, exp := newTestTracerProvider(t)

	// Temporarily override the global provider.
	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	_, span := StartSpan(context.Background(), "test-op")
	span.End()

	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no spans recorded")
	}
	if spans[0].Name != "test-op" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "test-op")
	}
}

func TestLogger_IncludesTraceID(t *testing.T) {
	tp, _ := newTestTracerProvider(t)
	tracer := tp.Tracer("test")

	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	prev := slog.Default()
	slog.SetDefault(slog.New(handler))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx, span := tracer.Start(context.Background(), "log-test")
	defer span.End()

	Logger(ctx).Info("test message")

	logged := buf.String()
	if !bytes.Contains([]byte(logged), []byte("trace_id=")) {
		t.Errorf("log output missing trace_id, got: %s", logged)
	}
	if !bytes.Contains([]byte(logged), []byte("span_id=")) {
		t.Errorf("log output missing span_id, got: %s", logged)
	}
}

func TestLogger_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	prev := slog.Default()
	slog.SetDefault(slog.New(handler))
	t.Cleanup(func() { slog.SetDefault(prev) })

	Logger(context.Background()).Info("test message")

	logged := buf.String()
	if bytes.Contains([]byte(logged), []byte("trace_id")) {
		t.Errorf("log output should not contain trace_id, got: %s", logged)
	}
}

func TestTracer_ReturnsValidTracer(t *testing.T) {
	if Tracer() == nil {
		t.Fatal("Tracer() returned nil")
	}
}
