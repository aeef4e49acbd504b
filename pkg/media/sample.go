package media

import "time"

// Kind classifies the payload carried by a [Sample].
type Kind int

const (
	// KindVideo marks a sample carrying one encoded video access unit.
	KindVideo Kind = iota

	// KindAudio marks a sample carrying a chunk of interleaved PCM audio.
	KindAudio
)

// String returns the human-readable name of the sample kind.
func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Format describes the sample rate and channel count of an audio stream.
type Format struct {
	SampleRate int
	Channels   int
}

// Sample is one media unit flowing from a capture adapter into a writer:
// either an encoded video access unit or a chunk of little-endian int16 PCM
// audio.
//
// Ownership: a Sample is produced by the platform capture layer and consumed
// exactly once. Platform adapters must call [Sample.Clone] before handing a
// sample across a goroutine boundary when the underlying buffer is transient
// (owned by the OS capture stack) — the writer assumes Data is stable for
// the lifetime of the sample. Samples are never mutated after handoff;
// retiming produces a new value via [Sample.WithPTS].
type Sample struct {
	// Data is the payload: an H.264 access unit for video, interleaved
	// little-endian int16 PCM for audio.
	Data []byte

	// PTS is the presentation timestamp in the capture clock's terms. The
	// capture clock is monotonic but has an arbitrary origin — writers
	// rebase all timestamps so output files start at zero.
	PTS time.Duration

	// Duration is the presentation duration of this sample.
	Duration time.Duration

	// Kind discriminates video from audio.
	Kind Kind

	// Keyframe reports whether a video sample is a sync sample (IDR).
	// Ignored for audio.
	Keyframe bool

	// Width and Height are the pixel dimensions of a video sample. The
	// first video sample's dimensions configure the encoder (lazy start),
	// so adapters must populate them on every video sample. Ignored for
	// audio.
	Width, Height int

	// Format describes the PCM layout of an audio sample. Ignored for video.
	Format Format
}

// WithPTS returns a copy of s with its presentation timestamp replaced.
// The payload is shared, not copied — use [Sample.Clone] first when the
// original buffer is transient.
func (s Sample) WithPTS(pts time.Duration) Sample {
	s.PTS = pts
	return s
}

// Clone returns a deep copy of s with its own payload buffer. Platform
// adapters use this to detach a sample from an OS-owned transient buffer
// before pushing it into a [Stream] channel.
func (s Sample) Clone() Sample {
	if s.Data != nil {
		data := make([]byte, len(s.Data))
		copy(data, s.Data)
		s.Data = data
	}
	return s
}

// End returns the presentation time at which this sample ends.
func (s Sample) End() time.Duration {
	return s.PTS + s.Duration
}
