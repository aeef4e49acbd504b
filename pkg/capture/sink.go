package capture

import (
	"github.com/akemper/kineto/pkg/media"
)

// VideoConfig carries the pixel dimensions learned from the first video
// frame, used to configure the sink's video track lazily.
type VideoConfig struct {
	Width  int
	Height int
}

// Sink is the encoder/container backend a [Writer] feeds. The shipped
// implementation is [MP4Sink]; tests substitute fakes.
//
// The Writer serialises all calls on its owner goroutine — implementations
// need not be safe for concurrent use. All sample timestamps handed to a
// Sink are already rebased to the session's zero-based clock.
type Sink interface {
	// Start configures the sink's tracks and opens the destination. Called
	// exactly once, when the first video frame's dimensions are known.
	// audio is nil for video-only sessions.
	Start(video VideoConfig, audio *media.Format) error

	// Ready reports whether the sink can accept another sample of the
	// given kind right now. The Writer drops samples while Ready is false
	// — real-time capture favours timeliness over completeness.
	Ready(kind media.Kind) bool

	// WriteVideo appends one encoded video sample.
	WriteVideo(s media.Sample) error

	// WriteAudio appends one PCM audio sample.
	WriteAudio(s media.Sample) error

	// Finish finalizes the container. The sink must not be used afterwards.
	Finish() error

	// Abort discards the session, removing any partial output file.
	// Safe to call whether or not Start succeeded.
	Abort() error

	// Path returns the destination path of the finalized output.
	Path() string
}
