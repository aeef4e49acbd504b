package export

import (
	"context"
	"errors"

	"github.com/akemper/kineto/pkg/timeline"
)

// The export failure taxonomy. Low-level backend failures are converted
// into these at the component boundary so the UI layer can match on them;
// [UserMessage] renders each as one human-readable message.
var (
	// ErrNoPrimaryTrack: the request named no usable primary recording.
	// Configuration error — recoverable by retrying with a valid source.
	ErrNoPrimaryTrack = errors.New("export: no primary video track found")

	// ErrComposition: the edited timeline could not be assembled into a
	// composition.
	ErrComposition = errors.New("export: building composition failed")

	// ErrEncoderStart: the render backend could not start its encoder
	// session. Often resource contention — retry is the user's choice.
	ErrEncoderStart = errors.New("export: encoder session could not be started")

	// ErrEncoderRuntime: the encode failed partway through.
	ErrEncoderRuntime = errors.New("export: encoding failed")
)

// UserMessage maps any export error to exactly one human-readable message.
// Cancellation is a distinct outcome, not a failure.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "Export cancelled."
	case errors.Is(err, timeline.ErrNoContent):
		return "Nothing left to export — your edits removed all content."
	case errors.Is(err, ErrNoPrimaryTrack):
		return "No video track was found in this recording."
	case errors.Is(err, ErrComposition):
		return "The edited timeline could not be assembled."
	case errors.Is(err, ErrEncoderStart):
		return "The video encoder could not be started. Another app may be using it."
	case errors.Is(err, ErrEncoderRuntime):
		return "Exporting failed partway through. Please try again."
	default:
		return "Export failed unexpectedly."
	}
}

// reason returns the metric attribute value for a failed export.
func reason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, timeline.ErrNoContent):
		return "no_content"
	case errors.Is(err, ErrNoPrimaryTrack):
		return "no_primary_track"
	case errors.Is(err, ErrComposition):
		return "composition"
	case errors.Is(err, ErrEncoderStart):
		return "encoder_start"
	case errors.Is(err, ErrEncoderRuntime):
		return "encoder_runtime"
	default:
		return "other"
	}
}
