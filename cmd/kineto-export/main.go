// Command kineto-export runs the export pipeline over finished recordings
// from the command line. It is a developer utility: the embedding
// application drives the same pipeline through the library API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/akemper/kineto/internal/observe"
	"github.com/akemper/kineto/pkg/config"
	"github.com/akemper/kineto/pkg/export"
	"github.com/akemper/kineto/pkg/timeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	primary := flag.String("primary", "", "path to the screen (or sole) recording")
	secondary := flag.String("secondary", "", "path to the camera recording, if any")
	title := flag.String("title", "", "title used for the output file name")
	cuts := flag.String("cuts", "", "comma-separated deleted ranges, e.g. 2s-4s,10s-12.5s")
	preview := flag.Bool("preview", false, "produce a preview instead of a final export")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "kineto-export: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "kineto-export: %v\n", err)
		}
		return 1
	}
	if *primary == "" {
		fmt.Fprintln(os.Stderr, "kineto-export: -primary is required")
		return 1
	}

	slog.SetDefault(newLogger(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "kineto-export"})
	if err != nil {
		slog.Error("telemetry init failed", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		ms := observe.NewMetricsServer(cfg.MetricsAddr)
		go func() {
			if err := ms.Start(); err != nil {
				slog.Error("metrics endpoint error", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ms.Shutdown(shutdownCtx); err != nil {
				slog.Warn("metrics endpoint shutdown error", "err", err)
			}
		}()
	}

	exclusions, err := parseCuts(*cuts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kineto-export: %v\n", err)
		return 1
	}

	renderer, err := config.NewRegistry().CreateRenderer(cfg.Export)
	if err != nil {
		slog.Error("renderer setup failed", "err", err)
		return 1
	}

	mode := export.ModeFinal
	if *preview {
		mode = export.ModePreview
	}
	pipeline := export.NewPipeline(renderer, cfg.Output.Dir)
	path, err := pipeline.Export(ctx, export.Request{
		PrimaryPath:   *primary,
		SecondaryPath: *secondary,
		Title:         *title,
		Exclusions:    exclusions,
		Layout:        cfg.Export.Layout.Resolve(),
		Bubble:        cfg.Export.Bubble.Resolve(),
		Aspect:        cfg.Export.Aspect.Resolve(),
		Mode:          mode,
		BurnCaptions:  cfg.Export.BurnCaptions,
		EnhanceAudio:  cfg.Export.EnhanceAudio,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, export.UserMessage(err))
		return 1
	}

	fmt.Println(path)
	return 0
}

// parseCuts parses "2s-4s,10s-12.5s" into timeline ranges. Durations use
// Go's duration syntax.
func parseCuts(s string) ([]timeline.Range, error) {
	if s == "" {
		return nil, nil
	}
	var ranges []timeline.Range
	for _, part := range strings.Split(s, ",") {
		lo, hi, ok := strings.Cut(strings.TrimSpace(part), "-")
		if !ok {
			return nil, fmt.Errorf("cut %q: want start-end", part)
		}
		start, err := time.ParseDuration(lo)
		if err != nil {
			return nil, fmt.Errorf("cut %q: %w", part, err)
		}
		end, err := time.ParseDuration(hi)
		if err != nil {
			return nil, fmt.Errorf("cut %q: %w", part, err)
		}
		if end <= start {
			return nil, fmt.Errorf("cut %q: end must be after start", part)
		}
		ranges = append(ranges, timeline.Range{Start: start, End: end})
	}
	return ranges, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
