package observe_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/akemper/kineto/internal/observe"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewMetricsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	m.CaptureDrops.Add(ctx, 3, metric.WithAttributes(
		attribute.String("kind", "video"),
		attribute.String("reason", "queue_full"),
	))
	m.CaptureSessions.Add(ctx, 1)
	m.CaptureSessions.Add(ctx, -1)
	m.ExportRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", "final"),
		attribute.String("status", "ok"),
	))
	m.ExportDuration.Record(ctx, 12.5, metric.WithAttributes(attribute.String("mode", "final")))
	m.NoiseGateDuration.Record(ctx, 0.8)

	rm := collect(t, reader)

	drops, ok := findMetric(rm, "kineto.capture.dropped_samples")
	if !ok {
		t.Fatal("dropped_samples metric not collected")
	}
	sum, ok := drops.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 3 {
		t.Errorf("dropped_samples = %+v, want one point of 3", drops.Data)
	}

	sessions, ok := findMetric(rm, "kineto.capture.sessions")
	if !ok {
		t.Fatal("sessions metric not collected")
	}
	gauge, ok := sessions.Data.(metricdata.Sum[int64])
	if !ok || len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 0 {
		t.Errorf("sessions = %+v, want net zero", sessions.Data)
	}

	if _, ok := findMetric(rm, "kineto.export.runs"); !ok {
		t.Error("export.runs metric not collected")
	}
	dur, ok := findMetric(rm, "kineto.export.duration")
	if !ok {
		t.Fatal("export.duration metric not collected")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Sum != 12.5 {
		t.Errorf("export.duration = %+v", dur.Data)
	}
	if _, ok := findMetric(rm, "kineto.noisegate.duration"); !ok {
		t.Error("noisegate.duration metric not collected")
	}
}

func TestDefaultNeverNil(t *testing.T) {
	if observe.Default() == nil {
		t.Fatal("Default() returned nil")
	}
	// Recording through the default instance must be safe even without
	// InitProvider.
	observe.Default().CaptureDrops.Add(context.Background(), 1)
}
