package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"layeh.com/gopus"

	"github.com/akemper/kineto/internal/observe"
	"github.com/akemper/kineto/pkg/media"
	"github.com/akemper/kineto/pkg/media/mux"
	"github.com/akemper/kineto/pkg/noisegate"
)

// SourceInfo describes one recording file as the pipeline sees it: track
// presence, geometry and per-track durations.
type SourceInfo struct {
	Width  int
	Height int

	// VideoDuration is the video track length.
	VideoDuration time.Duration

	// AudioDuration is the audio track length, zero without audio.
	AudioDuration time.Duration

	HasAudio    bool
	AudioFormat media.Format
}

// probeSource scans a recording's packets to measure both tracks. Returns
// [ErrNoPrimaryTrack] when the file carries no video.
func probeSource(path string) (SourceInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return SourceInfo{}, fmt.Errorf("%w: %v", ErrNoPrimaryTrack, err)
	}
	defer f.Close()

	dem, err := mux.OpenMP4(f)
	if err != nil {
		return SourceInfo{}, fmt.Errorf("%w: %v", ErrNoPrimaryTrack, err)
	}
	if !dem.HasVideo() {
		return SourceInfo{}, ErrNoPrimaryTrack
	}

	info := SourceInfo{HasAudio: dem.HasAudio()}
	info.Width, info.Height = dem.VideoSize()
	if info.HasAudio {
		info.AudioFormat = dem.AudioFormat()
	}

	// Track duration is the last packet's start plus its estimated length;
	// the container stores no per-sample durations, so the previous
	// inter-packet gap stands in for the final frame.
	var lastVideo, lastAudio, videoGap, audioGap time.Duration
	for {
		pkt, err := dem.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return SourceInfo{}, fmt.Errorf("%w: %v", ErrNoPrimaryTrack, err)
		}
		switch pkt.Kind {
		case media.KindVideo:
			if pkt.PTS > lastVideo {
				videoGap = pkt.PTS - lastVideo
				lastVideo = pkt.PTS
			}
		case media.KindAudio:
			if pkt.PTS > lastAudio {
				audioGap = pkt.PTS - lastAudio
				lastAudio = pkt.PTS
			}
		}
	}
	info.VideoDuration = lastVideo + videoGap
	if info.HasAudio {
		info.AudioDuration = lastAudio + audioGap
	}
	return info, nil
}

// decodePrimaryAudio reads the recording's Opus track and decodes it to
// normalised mono float64 PCM, the input the noise gate operates on.
func decodePrimaryAudio(path string, format media.Format) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dem, err := mux.OpenMP4(f)
	if err != nil {
		return nil, err
	}

	dec, err := gopus.NewDecoder(format.SampleRate, format.Channels)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}
	frameSize := format.SampleRate * 20 / 1000

	var mono []float64
	for {
		pkt, err := dem.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return mono, nil
			}
			return nil, err
		}
		if pkt.Kind != media.KindAudio {
			continue
		}
		pcm, err := dec.Decode(pkt.Data, frameSize, false)
		if err != nil {
			return nil, fmt.Errorf("opus decode: %w", err)
		}
		mono = append(mono, interleavedToMono(pcm, format.Channels)...)
	}
}

// interleavedToMono down-mixes interleaved int16 frames to normalised mono
// samples by averaging channels.
func interleavedToMono(pcm []int16, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}
	frames := len(pcm) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm[i*channels+ch]) / 32768.0
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// enhanceAudio runs the noise gate over decoded PCM. Enhancement is best
// effort: when the gate rejects the input the original samples are exported
// instead, logged but never fatal.
func enhanceAudio(ctx context.Context, samples []float64, sampleRate int) []float64 {
	start := time.Now()
	gated, err := noisegate.Process(samples, sampleRate)
	observe.Default().NoiseGateDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		slog.Warn("export: noise gate skipped, using original audio", "error", err)
		return samples
	}
	return gated
}
