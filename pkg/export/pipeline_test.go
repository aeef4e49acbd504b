package export

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akemper/kineto/pkg/media"
	"github.com/akemper/kineto/pkg/timeline"
)

// fakeRenderer lets tests script the render outcome and observe the job.
type fakeRenderer struct {
	err     error
	leave   bool // leave a partial output file behind on failure
	lastJob Job
	calls   int
}

func (f *fakeRenderer) Render(_ context.Context, job Job) error {
	f.calls++
	f.lastJob = job
	if f.err != nil {
		if f.leave {
			os.WriteFile(job.OutputPath, []byte("partial"), 0o644)
		}
		return f.err
	}
	return os.WriteFile(job.OutputPath, []byte("video"), 0o644)
}

func testInfo() SourceInfo {
	return SourceInfo{
		Width:         1920,
		Height:        1080,
		VideoDuration: 10 * time.Second,
		AudioDuration: 10 * time.Second,
		HasAudio:      true,
		AudioFormat:   media.Format{SampleRate: 48000, Channels: 1},
	}
}

func testPipeline(t *testing.T, r Renderer) *Pipeline {
	t.Helper()
	p := NewPipeline(r, t.TempDir(), WithClock(func() time.Time {
		return time.Date(2026, 8, 25, 14, 3, 1, 0, time.UTC)
	}))
	p.probe = func(string) (SourceInfo, error) { return testInfo(), nil }
	p.decodeAudio = func(string, media.Format) ([]float64, error) {
		return make([]float64, 48000), nil
	}
	return p
}

func baseRequest() Request {
	return Request{
		PrimaryPath: "/recordings/raw.mp4",
		Title:       "Demo Session",
		Mode:        ModeFinal,
	}
}

func TestExportHappyPath(t *testing.T) {
	r := &fakeRenderer{}
	p := testPipeline(t, r)

	path, err := p.Export(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "Demo-Session-20260825-140301.mp4" {
		t.Errorf("output name = %q", filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file missing: %v", err)
	}
	if r.lastJob.Plan == nil || !r.lastJob.Plan.SingleAudioPass {
		t.Error("unedited export should plan a single audio pass")
	}
	if r.lastJob.ReplacementAudio != nil {
		t.Error("no enhancement requested, audio must pass through")
	}
}

func TestExportPreviewNaming(t *testing.T) {
	r := &fakeRenderer{}
	p := testPipeline(t, r)

	req := baseRequest()
	req.Mode = ModePreview
	req.BurnCaptions = true

	path, err := p.Export(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "-preview.mp4") {
		t.Errorf("preview output = %q, want -preview suffix", path)
	}
	if r.lastJob.BurnCaptions {
		t.Error("previews must never burn captions")
	}
}

func TestExportMissingPrimary(t *testing.T) {
	p := testPipeline(t, &fakeRenderer{})
	req := baseRequest()
	req.PrimaryPath = ""

	_, err := p.Export(context.Background(), req)
	if !errors.Is(err, ErrNoPrimaryTrack) {
		t.Fatalf("err = %v, want ErrNoPrimaryTrack", err)
	}
}

func TestExportProbeFailure(t *testing.T) {
	p := testPipeline(t, &fakeRenderer{})
	p.probe = func(string) (SourceInfo, error) { return SourceInfo{}, ErrNoPrimaryTrack }

	_, err := p.Export(context.Background(), baseRequest())
	if !errors.Is(err, ErrNoPrimaryTrack) {
		t.Fatalf("err = %v, want ErrNoPrimaryTrack", err)
	}
}

func TestExportAllContentExcluded(t *testing.T) {
	p := testPipeline(t, &fakeRenderer{})
	req := baseRequest()
	req.Exclusions = []timeline.Range{{Start: 0, End: 10 * time.Second}}

	_, err := p.Export(context.Background(), req)
	if !errors.Is(err, timeline.ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
	if got := UserMessage(err); !strings.Contains(got, "Nothing left to export") {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestExportRendererFailureRemovesPartialOutput(t *testing.T) {
	r := &fakeRenderer{err: ErrEncoderRuntime, leave: true}
	p := testPipeline(t, r)

	_, err := p.Export(context.Background(), baseRequest())
	if !errors.Is(err, ErrEncoderRuntime) {
		t.Fatalf("err = %v, want ErrEncoderRuntime", err)
	}
	if _, statErr := os.Stat(r.lastJob.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("partial output file left behind after failure")
	}
}

func TestExportWrapsUnknownRendererError(t *testing.T) {
	r := &fakeRenderer{err: errors.New("codec exploded")}
	p := testPipeline(t, r)

	_, err := p.Export(context.Background(), baseRequest())
	if !errors.Is(err, ErrEncoderRuntime) {
		t.Fatalf("err = %v, want wrapped ErrEncoderRuntime", err)
	}
}

func TestExportCancellation(t *testing.T) {
	r := &fakeRenderer{err: context.Canceled, leave: true}
	p := testPipeline(t, r)

	_, err := p.Export(context.Background(), baseRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := UserMessage(err); got != "Export cancelled." {
		t.Errorf("UserMessage = %q", got)
	}
	if _, statErr := os.Stat(r.lastJob.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("partial output file left behind after cancellation")
	}
}

func TestExportEnhancementProducesReplacementAudio(t *testing.T) {
	r := &fakeRenderer{}
	p := testPipeline(t, r)

	req := baseRequest()
	req.EnhanceAudio = true

	if _, err := p.Export(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.lastJob.ReplacementAudio == nil {
		t.Fatal("enhancement requested but no replacement audio in job")
	}
	if r.lastJob.AudioFormat.Channels != 1 {
		t.Errorf("replacement format = %+v, want mono", r.lastJob.AudioFormat)
	}
}

func TestExportEnhancementDecodeFailureFallsBack(t *testing.T) {
	r := &fakeRenderer{}
	p := testPipeline(t, r)
	p.decodeAudio = func(string, media.Format) ([]float64, error) {
		return nil, errors.New("corrupt opus stream")
	}

	req := baseRequest()
	req.EnhanceAudio = true

	if _, err := p.Export(context.Background(), req); err != nil {
		t.Fatalf("fallback must not fail the export: %v", err)
	}
	if r.lastJob.ReplacementAudio != nil {
		t.Error("undecodable audio must export unmodified")
	}
}

// compositingRenderer advertises the geometric-stage capability.
type compositingRenderer struct {
	fakeRenderer
}

func (*compositingRenderer) Composites() bool { return true }

// messageCapture collects log messages emitted during a test.
type messageCapture struct {
	mu   sync.Mutex
	msgs []string
}

func (h *messageCapture) Enabled(context.Context, slog.Level) bool { return true }

func (h *messageCapture) Handle(_ context.Context, rec slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, rec.Message)
	return nil
}

func (h *messageCapture) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *messageCapture) WithGroup(string) slog.Handler      { return h }

func (h *messageCapture) contains(substr string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range h.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func captureLogs(t *testing.T) *messageCapture {
	t.Helper()
	h := &messageCapture{}
	prev := slog.Default()
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return h
}

func TestExportWarnsWhenLayoutNotApplied(t *testing.T) {
	for _, layout := range []timeline.Layout{timeline.LayoutCircleBubble, timeline.LayoutSideBySide} {
		t.Run(layout.String(), func(t *testing.T) {
			logs := captureLogs(t)
			r := &fakeRenderer{}
			p := testPipeline(t, r)

			req := baseRequest()
			req.SecondaryPath = "/recordings/camera.mp4"
			req.Layout = layout

			if _, err := p.Export(context.Background(), req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// The export succeeds, but a backend without the geometric stage
			// must say so out loud.
			if !logs.contains("cannot apply the camera layout") {
				t.Error("no warning logged for a two-source plan on a packet-copy backend")
			}
		})
	}
}

func TestExportNoLayoutWarningForCapableBackend(t *testing.T) {
	logs := captureLogs(t)
	r := &compositingRenderer{}
	p := testPipeline(t, r)

	req := baseRequest()
	req.SecondaryPath = "/recordings/camera.mp4"
	req.Layout = timeline.LayoutCircleBubble

	if _, err := p.Export(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.contains("cannot apply the camera layout") {
		t.Error("warning logged although the backend composites")
	}
	if !r.lastJob.Plan.UseCompositor {
		t.Error("bubble plan with a secondary track must set UseCompositor")
	}
}

func TestExportEditedPlanReachesRenderer(t *testing.T) {
	r := &fakeRenderer{}
	p := testPipeline(t, r)

	req := baseRequest()
	req.Exclusions = []timeline.Range{{Start: 2 * time.Second, End: 6 * time.Second}}

	if _, err := p.Export(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan := r.lastJob.Plan
	if plan.SingleAudioPass {
		t.Error("edited export must not use a single audio pass")
	}
	if plan.Duration != 6*time.Second {
		t.Errorf("plan duration = %v, want 6s", plan.Duration)
	}
}
