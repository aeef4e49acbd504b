package capture

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"layeh.com/gopus"

	"github.com/akemper/kineto/pkg/media"
	"github.com/akemper/kineto/pkg/media/mux"
)

// Compile-time interface assertion.
var _ Sink = (*MP4Sink)(nil)

// Opus framing for the audio track: 20 ms frames, the codec's native
// conversational frame size.
const (
	opusFrameMillis = 20
	opusMaxBytes    = 4000
)

// MP4Sink writes a session into an MP4 file: H.264 video passed through
// from the capture layer, PCM audio encoded to Opus.
//
// The destination file is created lazily in Start — a session that never
// sees a video frame leaves no file behind. Not safe for concurrent use;
// the [Writer] serialises all calls.
type MP4Sink struct {
	path string

	file  *os.File
	muxer *mux.MP4Muxer

	enc       *gopus.Encoder
	format    media.Format
	frameSize int // samples per channel per opus frame

	pcmBuf   []int16
	audioPTS time.Duration
	audioSet bool
}

// NewMP4Sink creates a sink targeting path. Nothing touches the filesystem
// until the first video frame starts the session.
func NewMP4Sink(path string) *MP4Sink {
	return &MP4Sink{path: path}
}

// Start creates the destination file and declares the container tracks.
func (s *MP4Sink) Start(video VideoConfig, audio *media.Format) error {
	if video.Width <= 0 || video.Height <= 0 {
		return fmt.Errorf("capture: invalid video dimensions %dx%d", video.Width, video.Height)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("capture: create %q: %w", s.path, err)
	}

	m, err := mux.NewMP4Muxer(f)
	if err != nil {
		f.Close()
		os.Remove(s.path)
		return err
	}
	if err := m.AddVideoTrack(video.Width, video.Height); err != nil {
		f.Close()
		os.Remove(s.path)
		return err
	}

	if audio != nil {
		enc, err := gopus.NewEncoder(audio.SampleRate, audio.Channels, gopus.Audio)
		if err != nil {
			f.Close()
			os.Remove(s.path)
			return fmt.Errorf("capture: create opus encoder: %w", err)
		}
		if err := m.AddAudioTrack(*audio); err != nil {
			f.Close()
			os.Remove(s.path)
			return err
		}
		s.enc = enc
		s.format = *audio
		s.frameSize = audio.SampleRate * opusFrameMillis / 1000
	}

	s.file = f
	s.muxer = m
	return nil
}

// Ready always reports true: a local file sink has no encoder input queue
// to fill. Hardware-encoder sinks report real backpressure here.
func (s *MP4Sink) Ready(media.Kind) bool { return true }

// WriteVideo passes one H.264 access unit through to the container.
func (s *MP4Sink) WriteVideo(sample media.Sample) error {
	// Capture encoders emit no B-frames; decode order equals presentation
	// order.
	return s.muxer.WriteVideo(sample.Data, sample.PTS, sample.PTS, sample.Keyframe)
}

// WriteAudio accumulates PCM and emits full Opus frames. The first sample's
// timestamp anchors the audio clock; subsequent frame timestamps advance by
// the fixed frame duration so the encoded stream stays gapless.
func (s *MP4Sink) WriteAudio(sample media.Sample) error {
	if s.enc == nil {
		return nil
	}
	if !s.audioSet {
		s.audioPTS = sample.PTS
		s.audioSet = true
	}

	s.pcmBuf = append(s.pcmBuf, media.BytesToInt16s(sample.Data)...)

	frameLen := s.frameSize * s.format.Channels
	for len(s.pcmBuf) >= frameLen {
		frame := s.pcmBuf[:frameLen]
		s.pcmBuf = s.pcmBuf[frameLen:]
		if err := s.encodeFrame(frame); err != nil {
			return err
		}
	}
	return nil
}

// Finish flushes the trailing partial audio frame (padded with silence) and
// finalizes the container.
func (s *MP4Sink) Finish() error {
	if s.muxer == nil {
		return fmt.Errorf("capture: finish before start")
	}

	if s.enc != nil && len(s.pcmBuf) > 0 {
		frameLen := s.frameSize * s.format.Channels
		frame := make([]int16, frameLen)
		copy(frame, s.pcmBuf)
		s.pcmBuf = nil
		if err := s.encodeFrame(frame); err != nil {
			return err
		}
	}

	if err := s.muxer.Finalize(); err != nil {
		s.file.Close()
		return err
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("capture: close %q: %w", s.path, err)
	}
	return nil
}

// Abort closes and removes any partial output. Safe to call at any point.
func (s *MP4Sink) Abort() error {
	if s.file == nil {
		return nil
	}
	s.file.Close()
	s.file = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("capture: remove partial output %q: %w", s.path, err)
	}
	slog.Debug("capture: partial output removed", "path", s.path)
	return nil
}

// Path returns the destination path.
func (s *MP4Sink) Path() string { return s.path }

// encodeFrame encodes one full PCM frame to Opus and writes it with the
// running audio timestamp.
func (s *MP4Sink) encodeFrame(frame []int16) error {
	data, err := s.enc.Encode(frame, s.frameSize, opusMaxBytes)
	if err != nil {
		return fmt.Errorf("capture: opus encode: %w", err)
	}
	pts := s.audioPTS
	s.audioPTS += opusFrameMillis * time.Millisecond
	return s.muxer.WriteAudio(data, pts)
}
