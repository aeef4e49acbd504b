// Package config provides the configuration schema, loader, and renderer
// registry for the kineto recording toolkit.
//
// The embedding application owns the config file's lifetime: it loads the
// file with [Load], selects a render backend through [Registry], and may run
// a [Watcher] to pick up edits while recording sessions are idle. [Diff]
// tells the application which subsystems a reload actually touched, so it
// can swap export defaults without disturbing an active capture.
package config

import (
	"time"

	"github.com/akemper/kineto/pkg/timeline"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Aspect selects the output canvas shape for exports.
type Aspect string

const (
	AspectWide     Aspect = "wide"
	AspectVertical Aspect = "vertical"
	AspectSquare   Aspect = "square"
)

// IsValid reports whether a is a recognised aspect preset.
func (a Aspect) IsValid() bool {
	switch a {
	case AspectWide, AspectVertical, AspectSquare:
		return true
	}
	return false
}

// Resolve maps the preset to its timeline counterpart. Unknown values map
// to the wide default; [Validate] rejects them beforehand.
func (a Aspect) Resolve() timeline.AspectRatio {
	switch a {
	case AspectVertical:
		return timeline.AspectVertical
	case AspectSquare:
		return timeline.AspectSquare
	default:
		return timeline.AspectWide
	}
}

// Layout selects how a camera track is combined with the screen track.
type Layout string

const (
	LayoutSideBySide   Layout = "side_by_side"
	LayoutCircleBubble Layout = "circle_bubble"
	LayoutSquareBubble Layout = "square_bubble"
)

// IsValid reports whether l is a recognised layout.
func (l Layout) IsValid() bool {
	switch l {
	case LayoutSideBySide, LayoutCircleBubble, LayoutSquareBubble:
		return true
	}
	return false
}

// Resolve maps the layout name to its timeline counterpart.
func (l Layout) Resolve() timeline.Layout {
	switch l {
	case LayoutCircleBubble:
		return timeline.LayoutCircleBubble
	case LayoutSquareBubble:
		return timeline.LayoutSquareBubble
	default:
		return timeline.LayoutSideBySide
	}
}

// BubblePosition selects the canvas corner for bubble layouts.
type BubblePosition string

const (
	BubbleBottomRight BubblePosition = "bottom_right"
	BubbleBottomLeft  BubblePosition = "bottom_left"
	BubbleTopRight    BubblePosition = "top_right"
	BubbleTopLeft     BubblePosition = "top_left"
)

// IsValid reports whether b is a recognised bubble position.
func (b BubblePosition) IsValid() bool {
	switch b {
	case BubbleBottomRight, BubbleBottomLeft, BubbleTopRight, BubbleTopLeft:
		return true
	}
	return false
}

// Resolve maps the bubble position to its timeline counterpart.
func (b BubblePosition) Resolve() timeline.BubblePosition {
	switch b {
	case BubbleBottomLeft:
		return timeline.BubbleBottomLeft
	case BubbleTopRight:
		return timeline.BubbleTopRight
	case BubbleTopLeft:
		return timeline.BubbleTopLeft
	default:
		return timeline.BubbleBottomRight
	}
}

// Config is the root configuration structure for kineto.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Capture CaptureConfig `yaml:"capture"`
	Export  ExportConfig  `yaml:"export"`

	// LogLevel controls verbosity. Empty means info.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the address the Prometheus metrics endpoint listens
	// on. Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// OutputConfig holds destination settings for exports.
type OutputConfig struct {
	// Dir is the directory finished exports are written into.
	Dir string `yaml:"dir"`
}

// CaptureConfig holds recording-time settings.
type CaptureConfig struct {
	// QueueSize is the writer's sample queue depth. Zero means the
	// default.
	QueueSize int `yaml:"queue_size"`

	// AudioDelayMs shifts audio timestamps relative to video by the given
	// number of milliseconds, compensating a fixed pipeline latency. May
	// be negative.
	AudioDelayMs int `yaml:"audio_delay_ms"`

	// SampleRate is the microphone PCM sample rate. Zero means 48000.
	SampleRate int `yaml:"sample_rate"`

	// Channels is the microphone channel count. Zero means 1.
	Channels int `yaml:"channels"`
}

// AudioDelay returns the configured delay as a [time.Duration].
func (c CaptureConfig) AudioDelay() time.Duration {
	return time.Duration(c.AudioDelayMs) * time.Millisecond
}

// ExportConfig holds default presentation choices for exports. Each export
// request may override them.
type ExportConfig struct {
	// Renderer selects the registered render backend. Empty means "cut".
	Renderer string `yaml:"renderer"`

	Aspect Aspect         `yaml:"aspect"`
	Layout Layout         `yaml:"layout"`
	Bubble BubblePosition `yaml:"bubble"`

	// BurnCaptions renders captions into final exports by default.
	BurnCaptions bool `yaml:"burn_captions"`

	// EnhanceAudio runs the noise gate over exported audio by default.
	EnhanceAudio bool `yaml:"enhance_audio"`
}
