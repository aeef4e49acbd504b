package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/akemper/kineto/internal/observe"
	"github.com/akemper/kineto/pkg/media"
	"github.com/akemper/kineto/pkg/timeline"
	"github.com/akemper/kineto/pkg/transcribe"
)

// Request describes one export as the user configured it: source files,
// edit state, presentation choices and the output flavour.
type Request struct {
	// PrimaryPath is the screen (or sole) recording. Required.
	PrimaryPath string

	// SecondaryPath is the camera recording for two-source layouts.
	SecondaryPath string

	// Title seeds the output file name; it is sanitized, never trusted.
	Title string

	// Exclusions are the user's deleted ranges on the source timeline.
	Exclusions []timeline.Range

	// Captions are the recording's captions on the unedited timeline.
	Captions []transcribe.TimedCaption

	Layout timeline.Layout
	Bubble timeline.BubblePosition
	Aspect timeline.AspectRatio

	Mode Mode

	// BurnCaptions requests caption rendering in the final output.
	// Ignored in preview mode.
	BurnCaptions bool

	// EnhanceAudio runs the spectral noise gate over the primary audio
	// track before export. Best effort: a failing gate falls back to the
	// original audio.
	EnhanceAudio bool
}

// Pipeline orchestrates exports: probe, audio resolution, composition
// planning and the render backend, with output file lifecycle and metrics
// handled here so renderers stay pure.
type Pipeline struct {
	renderer Renderer
	outDir   string
	now      func() time.Time

	// probe and decodeAudio are swappable seams for tests.
	probe       func(path string) (SourceInfo, error)
	decodeAudio func(path string, format media.Format) ([]float64, error)
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithClock overrides the timestamp source used for output file names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline writing into outDir through the given
// render backend.
func NewPipeline(renderer Renderer, outDir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer:    renderer,
		outDir:      outDir,
		now:         time.Now,
		probe:       probeSource,
		decodeAudio: decodePrimaryAudio,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export runs one export attempt end to end and returns the output file
// path. On failure no partial output file is left behind; the returned
// error maps to a user-presentable message via [UserMessage].
func (p *Pipeline) Export(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	path, err := p.export(ctx, req)

	met := observe.Default()
	mode := attribute.String("mode", req.Mode.String())
	status := "ok"
	if err != nil {
		status = reason(err)
	}
	met.ExportRuns.Add(ctx, 1, metric.WithAttributes(mode, attribute.String("status", status)))
	met.ExportDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(mode))

	if err != nil {
		slog.Error("export failed", "mode", req.Mode, "error", err)
		return "", err
	}
	slog.Info("export finished", "mode", req.Mode, "path", path,
		"took", time.Since(start).Round(time.Millisecond))
	return path, nil
}

func (p *Pipeline) export(ctx context.Context, req Request) (string, error) {
	if req.PrimaryPath == "" {
		return "", ErrNoPrimaryTrack
	}

	info, err := p.probe(req.PrimaryPath)
	if err != nil {
		return "", err
	}

	var secInfo SourceInfo
	if req.SecondaryPath != "" {
		secInfo, err = p.probe(req.SecondaryPath)
		if err != nil {
			return "", fmt.Errorf("%w: secondary source: %v", ErrComposition, err)
		}
	}

	// Audio enhancement and composition planning are independent; the gate
	// dominates wall time on long recordings, so they run concurrently.
	var (
		replacement []float64
		audioFormat media.Format
		plan        *timeline.Plan
	)
	g, gctx := errgroup.WithContext(ctx)

	if req.EnhanceAudio && info.HasAudio {
		g.Go(func() error {
			pcm, err := p.decodeAudio(req.PrimaryPath, info.AudioFormat)
			if err != nil {
				// Enhancement is best effort end to end: an undecodable
				// audio track exports as-is.
				slog.Warn("export: audio decode for enhancement failed, using original audio", "error", err)
				return nil
			}
			replacement = enhanceAudio(gctx, pcm, info.AudioFormat.SampleRate)
			audioFormat = media.Format{SampleRate: info.AudioFormat.SampleRate, Channels: 1}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		plan, err = timeline.Build(timeline.BuildInput{
			VideoDuration:   info.VideoDuration,
			AudioDuration:   info.AudioDuration,
			PrimaryWidth:    info.Width,
			PrimaryHeight:   info.Height,
			SecondaryWidth:  secInfo.Width,
			SecondaryHeight: secInfo.Height,
			Exclusions:      req.Exclusions,
			Captions:        req.Captions,
			Layout:          req.Layout,
			Bubble:          req.Bubble,
			Aspect:          req.Aspect,
		})
		if err != nil {
			if errors.Is(err, timeline.ErrNoContent) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrComposition, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// A plan with a geometric stage needs a decoding backend. A packet-copy
	// backend still produces a valid export, but the camera layout is not
	// applied — that must never happen silently.
	if (plan.UseCompositor || len(plan.Placements) > 0) && !composites(p.renderer) {
		slog.Warn("export: render backend cannot apply the camera layout, output keeps the primary track geometry",
			"layout", plan.Layout.String(), "renderer", fmt.Sprintf("%T", p.renderer))
	}

	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create output directory: %v", ErrEncoderStart, err)
	}
	outputPath := filepath.Join(p.outDir, outputFileName(req.Title, p.now(), req.Mode == ModePreview))
	// Delete-then-create keeps retries from appending onto stale output.
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: replace existing output: %v", ErrEncoderStart, err)
	}

	job := Job{
		Plan:             plan,
		PrimaryPath:      req.PrimaryPath,
		SecondaryPath:    req.SecondaryPath,
		OutputPath:       outputPath,
		Mode:             req.Mode,
		BurnCaptions:     req.BurnCaptions && req.Mode == ModeFinal,
		ReplacementAudio: replacement,
		AudioFormat:      audioFormat,
	}

	if err := p.renderer.Render(ctx, job); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("export: could not remove partial output", "path", outputPath, "error", rmErr)
		}
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return "", err
		case errors.Is(err, ErrEncoderStart) || errors.Is(err, ErrEncoderRuntime) || errors.Is(err, ErrNoPrimaryTrack):
			return "", err
		default:
			return "", fmt.Errorf("%w: %v", ErrEncoderRuntime, err)
		}
	}

	return outputPath, nil
}

// composites reports whether the render backend advertises the
// [Compositing] capability.
func composites(r Renderer) bool {
	c, ok := r.(Compositing)
	return ok && c.Composites()
}
