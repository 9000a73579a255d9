package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig identifies the process in exported telemetry and,
// optionally, routes spans to an exporter.
type ProviderConfig struct {
	// ServiceName defaults to "murmur".
	ServiceName string

	// ServiceVersion is stamped on the telemetry resource.
	ServiceVersion string

	// TraceExporter receives finished spans. Leaving it nil keeps tracing
	// in-process, the normal desktop configuration: spans then only enrich
	// log lines with trace and span IDs.
	TraceExporter sdktrace.SpanExporter
}

// InitProvider installs the global OpenTelemetry providers: metrics flow to
// the Prometheus exporter scraped through the diagnostics listener, traces
// to cfg.TraceExporter when one is set. The returned function tears both
// down; call it with a bounded context during shutdown.
func InitProvider(_ context.Context, cfg ProviderConfig) (func(context.Context) error, error) {
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("observe: build resource: %w", err)
	}

	mp, err := newMeterProvider(res)
	if err != nil {
		return nil, fmt.Errorf("observe: metrics setup: %w", err)
	}
	otel.SetMeterProvider(mp)

	tp := newTracerProvider(res, cfg.TraceExporter)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}

// serviceResource describes this murmur instance in every exported metric
// and span.
func serviceResource(cfg ProviderConfig) (*resource.Resource, error) {
	name := cfg.ServiceName
	if name == "" {
		name = "murmur"
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(name),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
}

func newMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exp, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exp),
	), nil
}

func newTracerProvider(res *resource.Resource, exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...)
}
