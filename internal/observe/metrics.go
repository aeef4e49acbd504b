// Package observe provides application-wide observability primitives for
// kineto: OpenTelemetry metrics and the provider bootstrap that exposes
// them through a Prometheus exporter.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A
// package-level default [Metrics] instance ([Default]) is provided for
// convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all kineto metrics.
const meterName = "github.com/akemper/kineto"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// CaptureDrops counts samples dropped by capture writers. Use with
	// attributes:
	//   attribute.String("kind", ...), attribute.String("reason", ...)
	CaptureDrops metric.Int64Counter

	// CaptureSessions tracks the number of live recording sessions.
	CaptureSessions metric.Int64UpDownCounter

	// ExportRuns counts export attempts. Use with attributes:
	//   attribute.String("mode", ...), attribute.String("status", ...)
	ExportRuns metric.Int64Counter

	// ExportDuration tracks end-to-end export latency. Use with attribute:
	//   attribute.String("mode", ...)
	ExportDuration metric.Float64Histogram

	// NoiseGateDuration tracks the audio enhancement pass latency.
	NoiseGateDuration metric.Float64Histogram
}

// durationBuckets defines histogram bucket boundaries (in seconds) sized
// for offline media processing.
var durationBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CaptureDrops, err = m.Int64Counter("kineto.capture.dropped_samples",
		metric.WithDescription("Samples dropped by capture writers."),
	); err != nil {
		return nil, err
	}
	if met.CaptureSessions, err = m.Int64UpDownCounter("kineto.capture.sessions",
		metric.WithDescription("Live recording sessions."),
	); err != nil {
		return nil, err
	}
	if met.ExportRuns, err = m.Int64Counter("kineto.export.runs",
		metric.WithDescription("Export attempts by mode and status."),
	); err != nil {
		return nil, err
	}
	if met.ExportDuration, err = m.Float64Histogram("kineto.export.duration",
		metric.WithDescription("End-to-end export latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.NoiseGateDuration, err = m.Float64Histogram("kineto.noisegate.duration",
		metric.WithDescription("Audio enhancement pass latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the shared [Metrics] instance built from the global OTel
// meter provider. The first call fixes the provider — call [InitProvider]
// before any metric is recorded.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			// Instrument creation only fails on invalid names; fall back
			// to no-op instruments rather than panic in a media path.
			m, _ = NewMetrics(noop.NewMeterProvider())
		}
		defaultMetrics = m
	})
	return defaultMetrics
}
