package timeline

import (
	"fmt"
	"time"

	"github.com/akemper/kineto/pkg/transcribe"
)

// Segment maps one included source range to its position on the output
// timeline. Segments are ordered and contiguous: each starts where the
// previous one ended.
type Segment struct {
	// Source is the range copied from the unedited source.
	Source Range

	// Output is the insertion offset on the zero-based output timeline.
	Output time.Duration
}

// BuildInput carries everything the builder needs to plan one export.
type BuildInput struct {
	// VideoDuration is the primary track's full unedited duration.
	VideoDuration time.Duration

	// AudioDuration is the audio track's full duration, or zero when the
	// recording has no audio. Audio and video durations routinely differ
	// by a few frames at the capture stage.
	AudioDuration time.Duration

	// PrimaryWidth and PrimaryHeight are the primary (screen) track's pixel
	// dimensions.
	PrimaryWidth, PrimaryHeight int

	// SecondaryWidth and SecondaryHeight are the camera track's pixel
	// dimensions, or zero when exporting a single source.
	SecondaryWidth, SecondaryHeight int

	// Exclusions are the time ranges deleted by the user, possibly
	// overlapping or adjacent.
	Exclusions []Range

	// Captions are the recording's captions on the unedited timeline.
	Captions []transcribe.TimedCaption

	Layout Layout
	Bubble BubblePosition
	Aspect AspectRatio
}

// Plan is a fully resolved export composition: which source ranges play
// when, how each track is placed on the canvas, and where the remapped
// captions sit. Built once per export attempt and discarded after encode.
// A Plan holds only value state — it references source files by the
// caller's handles, never owns them.
type Plan struct {
	// Segments drive segment-by-segment copy into the output, for video
	// and — except in the single-pass case — audio alike.
	Segments []Segment

	// Duration is the output timeline length: the sum of segment durations.
	Duration time.Duration

	// SingleAudioPass is set when no exclusions apply: the whole audio
	// track is copied in one pass bounded by AudioLimit instead of walking
	// Segments.
	SingleAudioPass bool

	// AudioLimit bounds the single-pass audio copy to
	// min(videoDuration, audioDuration). Zero when SingleAudioPass is false.
	AudioLimit time.Duration

	// OutputWidth and OutputHeight are the canvas dimensions.
	OutputWidth, OutputHeight int

	// Primary is the aspect-fill transform for the primary track when the
	// export is single-source or bubble-composited.
	Primary Transform

	// Placements holds the two per-track placements for the side-by-side
	// layout. Empty otherwise.
	Placements []Placement

	// UseCompositor is set for bubble layouts with a secondary track:
	// the render backend must drive the frame compositor per output frame.
	UseCompositor bool

	Layout Layout
	Bubble BubblePosition

	// Captions are remapped onto the edited timeline.
	Captions []transcribe.TimedCaption
}

// Build computes the composition plan for one export attempt.
//
// Returns [ErrNoContent] when the exclusions consume the entire recording,
// and a validation error for degenerate input (no primary dimensions, zero
// duration, unknown layout).
func Build(in BuildInput) (*Plan, error) {
	if in.VideoDuration <= 0 {
		return nil, fmt.Errorf("timeline: primary track has no duration")
	}
	if in.PrimaryWidth <= 0 || in.PrimaryHeight <= 0 {
		return nil, fmt.Errorf("timeline: primary track has no dimensions (%dx%d)", in.PrimaryWidth, in.PrimaryHeight)
	}
	if !in.Layout.IsValid() {
		return nil, fmt.Errorf("timeline: unknown layout %d", int(in.Layout))
	}
	if !in.Bubble.IsValid() {
		return nil, fmt.Errorf("timeline: unknown bubble position %d", int(in.Bubble))
	}
	if !in.Aspect.IsValid() {
		return nil, fmt.Errorf("timeline: unknown aspect ratio %d", int(in.Aspect))
	}

	included, err := IncludedRanges(in.Exclusions, in.VideoDuration)
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, len(included))
	cursor := time.Duration(0)
	for i, r := range included {
		segments[i] = Segment{Source: r, Output: cursor}
		cursor += r.Duration()
	}

	outW, outH := in.Aspect.Resolution()
	plan := &Plan{
		Segments:     segments,
		Duration:     cursor,
		OutputWidth:  outW,
		OutputHeight: outH,
		Layout:       in.Layout,
		Bubble:       in.Bubble,
		Captions:     RemapCaptions(in.Captions, in.Exclusions),
	}

	// No edits: audio is copied in a single pass bounded by the shorter
	// track, absorbing the capture-stage length mismatch between streams.
	if len(segments) == 1 && segments[0].Source == (Range{Start: 0, End: in.VideoDuration}) {
		plan.SingleAudioPass = true
		plan.AudioLimit = in.VideoDuration
		if in.AudioDuration > 0 && in.AudioDuration < plan.AudioLimit {
			plan.AudioLimit = in.AudioDuration
		}
	}

	hasSecondary := in.SecondaryWidth > 0 && in.SecondaryHeight > 0
	switch {
	case hasSecondary && in.Layout == LayoutSideBySide:
		p := SideBySidePlacements(in.PrimaryWidth, in.PrimaryHeight,
			in.SecondaryWidth, in.SecondaryHeight, outW, outH)
		plan.Placements = p[:]
	case hasSecondary && in.Layout.IsBubble():
		plan.UseCompositor = true
		plan.Primary = AspectFill(in.PrimaryWidth, in.PrimaryHeight, outW, outH)
	default:
		plan.Primary = AspectFill(in.PrimaryWidth, in.PrimaryHeight, outW, outH)
	}

	return plan, nil
}
