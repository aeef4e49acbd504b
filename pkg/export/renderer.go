package export

import (
	"context"

	"github.com/akemper/kineto/pkg/media"
	"github.com/akemper/kineto/pkg/timeline"
)

// Mode selects the output flavour produced from one composition plan.
type Mode int

const (
	// ModeFinal writes the shareable export: captions burned in (when
	// enabled) and the file placed in the recordings directory.
	ModeFinal Mode = iota

	// ModePreview produces a lightweight render for on-screen playback:
	// no caption burn-in.
	ModePreview
)

// String returns the human-readable name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFinal:
		return "final"
	case ModePreview:
		return "preview"
	default:
		return "unknown"
	}
}

// Job is one fully resolved render request handed to a [Renderer]: the
// composition plan plus source and destination paths and the resolved
// audio.
type Job struct {
	// Plan is the composition to execute.
	Plan *timeline.Plan

	// PrimaryPath is the screen (or sole) recording.
	PrimaryPath string

	// SecondaryPath is the camera recording for two-source layouts, or
	// empty.
	SecondaryPath string

	// OutputPath is the destination file. The pipeline guarantees no file
	// exists there when Render is called and removes partial output when
	// Render fails.
	OutputPath string

	Mode Mode

	// BurnCaptions requests caption rendering. Always false in preview
	// mode.
	BurnCaptions bool

	// ReplacementAudio, when non-nil, substitutes the primary source's
	// audio track with enhanced mono PCM in AudioFormat. Nil means the
	// source audio passes through untouched.
	ReplacementAudio []float64

	// AudioFormat describes ReplacementAudio.
	AudioFormat media.Format
}

// Renderer executes one composition plan into an output file.
//
// Implementations wrap an encode backend. They should return
// [ErrEncoderStart] (wrapped) when the session cannot be created and
// honour ctx cancellation promptly; all other failures are converted to
// [ErrEncoderRuntime] by the pipeline.
type Renderer interface {
	Render(ctx context.Context, job Job) error
}

// Compositing is the optional capability interface for render backends that
// decode video and can execute a plan's geometric stage — side-by-side
// placements and bubble compositing. Backends that do not implement it (or
// return false) apply only the edit timeline, and the pipeline warns when a
// two-source plan reaches one.
type Compositing interface {
	Composites() bool
}
