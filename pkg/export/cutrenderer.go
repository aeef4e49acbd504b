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

	"github.com/akemper/kineto/pkg/media"
	"github.com/akemper/kineto/pkg/media/mux"
	"github.com/akemper/kineto/pkg/timeline"
)

// Compile-time interface assertion.
var _ Renderer = (*CutRenderer)(nil)

// cancelCheckInterval is how many packets are copied between context
// checks.
const cancelCheckInterval = 256

// CutRenderer executes a plan by container-level packet copy: included
// segments are copied from the source into the output back-to-back, and an
// enhanced audio track (when present) is encoded to Opus in place of the
// original.
//
// It never decodes video, so it applies the edit timeline but not
// geometric transforms or bubble compositing — the output keeps the source
// geometry, and cut points decode cleanly from the next sync sample.
// Caption burn-in is likewise out of reach without pixels; when requested,
// the remapped captions are written as a WebVTT sidecar next to the output.
// Platform render backends implement [Renderer] with real codecs for the
// full treatment.
type CutRenderer struct{}

// Render executes the job. Setup failures (unreadable source, output
// creation) are reported as [ErrEncoderStart]; failures while copying
// media as [ErrEncoderRuntime].
func (CutRenderer) Render(ctx context.Context, job Job) error {
	in, err := os.Open(job.PrimaryPath)
	if err != nil {
		return fmt.Errorf("%w: open source: %v", ErrEncoderStart, err)
	}
	defer in.Close()

	dem, err := mux.OpenMP4(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderStart, err)
	}

	out, err := os.Create(job.OutputPath)
	if err != nil {
		return fmt.Errorf("%w: create output: %v", ErrEncoderStart, err)
	}
	defer out.Close()

	m, err := mux.NewMP4Muxer(out)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderStart, err)
	}

	w, h := dem.VideoSize()
	if err := m.AddVideoTrack(w, h); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderStart, err)
	}

	replaceAudio := job.ReplacementAudio != nil
	switch {
	case replaceAudio:
		if err := m.AddAudioTrack(job.AudioFormat); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoderStart, err)
		}
	case dem.HasAudio():
		if err := m.AddAudioTrack(dem.AudioFormat()); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoderStart, err)
		}
	}

	if err := copyPackets(ctx, dem, m, job.Plan, replaceAudio); err != nil {
		return err
	}

	if replaceAudio {
		if err := writeReplacementAudio(m, job); err != nil {
			return err
		}
	}

	if err := m.Finalize(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderRuntime, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close output: %v", ErrEncoderRuntime, err)
	}

	if job.BurnCaptions && len(job.Plan.Captions) > 0 {
		if err := writeCaptionSidecar(job.OutputPath, job.Plan.Captions); err != nil {
			// Losing the sidecar does not invalidate the media file.
			slog.Warn("export: caption sidecar failed", "error", err)
		}
	}
	return nil
}

// copyPackets walks the source in decode order and copies every packet
// that falls inside an included segment, rebased onto the output timeline.
func copyPackets(ctx context.Context, dem mux.Demuxer, m mux.Muxer, plan *timeline.Plan, skipAudio bool) error {
	count := 0
	for {
		if count%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		count++

		pkt, err := dem.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrEncoderRuntime, err)
		}

		switch pkt.Kind {
		case media.KindVideo:
			outPTS, ok := segmentMap(plan.Segments, pkt.PTS)
			if !ok {
				continue
			}
			if err := m.WriteVideo(pkt.Data, outPTS, outPTS, pkt.Keyframe); err != nil {
				return fmt.Errorf("%w: %v", ErrEncoderRuntime, err)
			}

		case media.KindAudio:
			if skipAudio {
				continue
			}
			var outPTS time.Duration
			var ok bool
			if plan.SingleAudioPass {
				// Unedited exports copy audio in one pass bounded by the
				// shorter track, absorbing capture-stage length mismatch.
				outPTS, ok = pkt.PTS, pkt.PTS < plan.AudioLimit
			} else {
				outPTS, ok = segmentMap(plan.Segments, pkt.PTS)
			}
			if !ok {
				continue
			}
			if err := m.WriteAudio(pkt.Data, outPTS); err != nil {
				return fmt.Errorf("%w: %v", ErrEncoderRuntime, err)
			}
		}
	}
}

// segmentMap maps a source timestamp onto the output timeline. Returns
// ok=false for timestamps inside excluded ranges.
func segmentMap(segments []timeline.Segment, pts time.Duration) (time.Duration, bool) {
	for _, seg := range segments {
		if seg.Source.Contains(pts) {
			return seg.Output + (pts - seg.Source.Start), true
		}
	}
	return 0, false
}

// writeReplacementAudio encodes the enhanced PCM onto the output timeline,
// walking the same included segments that drive video so both streams stay
// frame-accurate after edits.
func writeReplacementAudio(m mux.Muxer, job Job) error {
	enc, err := gopus.NewEncoder(job.AudioFormat.SampleRate, job.AudioFormat.Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("%w: create opus encoder: %v", ErrEncoderRuntime, err)
	}

	rate := job.AudioFormat.SampleRate
	frameSize := rate * 20 / 1000
	pcm := job.ReplacementAudio

	for _, seg := range job.Plan.Segments {
		start := sampleIndex(seg.Source.Start, rate, len(pcm))
		end := sampleIndex(seg.Source.End, rate, len(pcm))
		if job.Plan.SingleAudioPass {
			end = sampleIndex(job.Plan.AudioLimit, rate, len(pcm))
		}

		outPTS := seg.Output
		for i := start; i < end; i += frameSize {
			frame := make([]int16, frameSize)
			for j, n := 0, min(frameSize, end-i); j < n; j++ {
				frame[j] = clampInt16(pcm[i+j])
			}
			data, err := enc.Encode(frame, frameSize, 4000)
			if err != nil {
				return fmt.Errorf("%w: opus encode: %v", ErrEncoderRuntime, err)
			}
			if err := m.WriteAudio(data, outPTS); err != nil {
				return fmt.Errorf("%w: %v", ErrEncoderRuntime, err)
			}
			outPTS += 20 * time.Millisecond
		}
	}
	return nil
}

// sampleIndex converts a timeline position to a PCM sample index, clamped
// to the buffer.
func sampleIndex(t time.Duration, rate, limit int) int {
	idx := int(int64(t) * int64(rate) / int64(time.Second))
	if idx > limit {
		return limit
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// clampInt16 converts one normalised float sample to int16 with clamping.
func clampInt16(f float64) int16 {
	v := f * 32768.0
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
