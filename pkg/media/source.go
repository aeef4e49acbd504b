package media

import "context"

// Stream represents an active capture session on a camera or screen device.
//
// A Stream is obtained by calling [Source.Open] and remains valid until
// [Stream.Close] is called. Both sample channels are closed automatically
// when the stream terminates.
//
// Implementations must be safe for concurrent use.
type Stream interface {
	// Video returns the read-only channel delivering encoded video samples
	// in capture order. The channel is closed when the stream ends.
	Video() <-chan Sample

	// Audio returns the read-only channel delivering PCM audio samples in
	// capture order, or a nil channel when the device captures no audio.
	// The channel is closed when the stream ends.
	Audio() <-chan Sample

	// Close tears down the capture session and closes both sample channels.
	// It is safe to call Close more than once; subsequent calls are no-ops
	// and return nil.
	Close() error
}

// Source is the entry point for a capture device provider. Implementations
// wrap platform capture APIs (ScreenCaptureKit, V4L2, …) and expose a
// uniform [Stream] abstraction.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Open starts capturing from the device and returns an active [Stream].
	// The supplied ctx governs the lifetime of the open attempt only; once
	// capturing, the Stream remains alive until [Stream.Close] is called.
	//
	// Returns an error if the device cannot be opened (permission denied,
	// device in use, disconnected, …).
	Open(ctx context.Context) (Stream, error)
}
