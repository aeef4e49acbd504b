package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/akemper/kineto/pkg/config"
	"github.com/akemper/kineto/pkg/export"
)

type stubRenderer struct{}

func (stubRenderer) Render(context.Context, export.Job) error { return nil }

func TestRegistryDefaultRenderer(t *testing.T) {
	reg := config.NewRegistry()

	r, err := reg.CreateRenderer(config.ExportConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(export.CutRenderer); !ok {
		t.Errorf("default renderer = %T, want CutRenderer", r)
	}

	r, err = reg.CreateRenderer(config.ExportConfig{Renderer: "cut"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(export.CutRenderer); !ok {
		t.Errorf("named renderer = %T, want CutRenderer", r)
	}
}

func TestRegistryUnknownRenderer(t *testing.T) {
	reg := config.NewRegistry()
	_, err := reg.CreateRenderer(config.ExportConfig{Renderer: "metal"})
	if !errors.Is(err, config.ErrRendererNotRegistered) {
		t.Fatalf("err = %v, want ErrRendererNotRegistered", err)
	}
}

func TestRegistryCustomRenderer(t *testing.T) {
	reg := config.NewRegistry()
	reg.RegisterRenderer("stub", func(config.ExportConfig) (export.Renderer, error) {
		return stubRenderer{}, nil
	})

	r, err := reg.CreateRenderer(config.ExportConfig{Renderer: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(stubRenderer); !ok {
		t.Errorf("renderer = %T, want stubRenderer", r)
	}
}

func TestDiff(t *testing.T) {
	old := &config.Config{
		Output:   config.OutputConfig{Dir: "/a"},
		LogLevel: config.LogInfo,
	}
	updated := &config.Config{
		Output:   config.OutputConfig{Dir: "/b"},
		LogLevel: config.LogDebug,
		Capture:  config.CaptureConfig{QueueSize: 64},
		Export:   config.ExportConfig{EnhanceAudio: true},
	}

	d := config.Diff(old, updated)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
		t.Error("log level change not detected")
	}
	if !d.OutputDirChanged {
		t.Error("output dir change not detected")
	}
	if !d.CaptureChanged {
		t.Error("capture change not detected")
	}
	if !d.ExportChanged {
		t.Error("export change not detected")
	}

	if got := config.Diff(old, old); got != (config.ConfigDiff{}) {
		t.Errorf("identical configs diff = %+v, want zero", got)
	}
}
