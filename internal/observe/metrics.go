// Package observe provides application-wide observability primitives for
// murmur: OpenTelemetry metrics, tracing, and the Prometheus exporter
// bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported
// via a Prometheus bridge so they can be scraped from the optional /metrics
// endpoint. A package-level default [Metrics] instance ([DefaultMetrics]) is
// provided for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all murmur metrics.
const meterName = "github.com/MrWong99/murmur"

// Metrics holds all OpenTelemetry metric instruments for the pipeline.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// PartialDecodeDuration tracks rolling-window partial decode latency.
	PartialDecodeDuration metric.Float64Histogram

	// FinalDecodeDuration tracks per-segment final decode latency.
	FinalDecodeDuration metric.Float64Histogram

	// SegmentsFinalized counts completed segments handed to the final
	// decoder. Use with attribute.String("status", "ok"|"empty"|"error").
	SegmentsFinalized metric.Int64Counter

	// PartialCycles counts partial decode cycles. Use with
	// attribute.String("status", "ok"|"skipped"|"error").
	PartialCycles metric.Int64Counter

	// FramesDropped counts frames rejected at the capture boundary under
	// queue overflow.
	FramesDropped metric.Int64Counter

	// EventsDropped counts events missed by slow listeners. Use with
	// attribute.String("listener", ...).
	EventsDropped metric.Int64Counter

	// ActiveSegments tracks whether a speech segment is currently open
	// (0 or 1 for a single-stream pipeline).
	ActiveSegments metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for local-inference decode latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.PartialDecodeDuration, err = m.Float64Histogram("murmur.decode.partial.duration",
		metric.WithDescription("Latency of rolling-window partial decodes."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FinalDecodeDuration, err = m.Float64Histogram("murmur.decode.final.duration",
		metric.WithDescription("Latency of per-segment final decodes."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.SegmentsFinalized, err = m.Int64Counter("murmur.segments.finalized",
		metric.WithDescription("Completed segments handed to the final decoder, by status."),
	); err != nil {
		return nil, err
	}
	if met.PartialCycles, err = m.Int64Counter("murmur.partial.cycles",
		metric.WithDescription("Partial decode cycles by status."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("murmur.frames.dropped",
		metric.WithDescription("Frames rejected at the capture boundary under queue overflow."),
	); err != nil {
		return nil, err
	}
	if met.EventsDropped, err = m.Int64Counter("murmur.events.dropped",
		metric.WithDescription("Events missed by slow listeners, by listener."),
	); err != nil {
		return nil, err
	}

	if met.ActiveSegments, err = m.Int64UpDownCounter("murmur.segments.active",
		metric.WithDescription("Whether a speech segment is currently open."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}
