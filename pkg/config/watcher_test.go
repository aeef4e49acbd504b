package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/akemper/kineto/pkg/config"
	"github.com/akemper/kineto/pkg/export"
)

const watcherValidYAML = `
output:
  dir: /home/user/Videos
log_level: info
`

const watcherUpdatedYAML = `
output:
  dir: /home/user/Videos
log_level: debug
export:
  enhance_audio: true
`

const watcherInvalidYAML = `
output:
  dir: /home/user/Videos
log_level: bananas
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %q: %v", path, err)
	}
}

func TestWatcherInitialLoad(t *testing.T) {
	t.Parallel()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfgPath, watcherValidYAML)

	w, err := config.NewWatcher(cfgPath, nil, config.WithInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()

	cfg := w.Current()
	if cfg == nil {
		t.Fatal("Current() returned nil after initial load")
	}
	if cfg.LogLevel != config.LogInfo {
		t.Errorf("log_level = %q, want %q", cfg.LogLevel, config.LogInfo)
	}
}

func TestWatcherInitialLoadInvalid(t *testing.T) {
	t.Parallel()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfgPath, watcherInvalidYAML)

	if _, err := config.NewWatcher(cfgPath, nil); err == nil {
		t.Fatal("want error for invalid initial config")
	}
}

func TestWatcherDetectsChange(t *testing.T) {
	t.Parallel()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfgPath, watcherValidYAML)

	var mu sync.Mutex
	var gotOld, gotNew *config.Config
	called := make(chan struct{}, 1)

	w, err := config.NewWatcher(cfgPath, func(old, new *config.Config) {
		mu.Lock()
		gotOld, gotNew = old, new
		mu.Unlock()
		select {
		case called <- struct{}{}:
		default:
		}
	}, config.WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()

	// Backdate the original mtime so the rewrite is always detected even on
	// coarse filesystem timestamps.
	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(cfgPath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	writeFile(t, cfgPath, watcherUpdatedYAML)

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange was not called")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotOld == nil || gotOld.LogLevel != config.LogInfo {
		t.Errorf("old config = %+v", gotOld)
	}
	if gotNew == nil || gotNew.LogLevel != config.LogDebug {
		t.Errorf("new config = %+v", gotNew)
	}
	if d := config.Diff(gotOld, gotNew); !d.ExportChanged {
		t.Error("diff must flag export change")
	}
	if w.Current().LogLevel != config.LogDebug {
		t.Errorf("Current() = %q, want updated config", w.Current().LogLevel)
	}
}

// The embedding application reloads export defaults between sessions:
// onChange filters on the diff and rebuilds the renderer from the new
// export section.
func TestWatcherHotReloadsExportDefaults(t *testing.T) {
	t.Parallel()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfgPath, watcherValidYAML)

	reg := config.NewRegistry()
	var mu sync.Mutex
	var renderer export.Renderer

	w, err := config.NewWatcher(cfgPath, func(old, new *config.Config) {
		if !config.Diff(old, new).ExportChanged {
			return
		}
		r, err := reg.CreateRenderer(new.Export)
		if err != nil {
			t.Errorf("recreate renderer: %v", err)
			return
		}
		mu.Lock()
		renderer = r
		mu.Unlock()
	}, config.WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()

	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(cfgPath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	writeFile(t, cfgPath, watcherUpdatedYAML)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		r := renderer
		mu.Unlock()
		if r != nil {
			if _, ok := r.(export.CutRenderer); !ok {
				t.Fatalf("renderer = %T, want CutRenderer", r)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("export defaults were not reloaded")
}

func TestWatcherKeepsOldConfigOnInvalidUpdate(t *testing.T) {
	t.Parallel()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfgPath, watcherValidYAML)

	w, err := config.NewWatcher(cfgPath, func(old, new *config.Config) {
		t.Error("onChange must not fire for an invalid config")
	}, config.WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()

	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(cfgPath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	writeFile(t, cfgPath, watcherInvalidYAML)

	time.Sleep(200 * time.Millisecond)
	if w.Current().LogLevel != config.LogInfo {
		t.Errorf("Current() = %q, old config must stay in force", w.Current().LogLevel)
	}
}
