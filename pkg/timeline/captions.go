package timeline

import (
	"time"

	"github.com/akemper/kineto/pkg/transcribe"
)

// RemapCaptions maps caption word timings from the unedited source timeline
// onto the edited output timeline described by exclusions.
//
// A word whose start falls inside an excluded range is dropped — the moment
// it was spoken no longer exists in the output. Every surviving word is
// shifted left by the total excluded duration preceding it. Captions whose
// every word was dropped are removed entirely; the rest have their bounds
// recomputed from their surviving first and last word.
//
// The input captions are not modified.
func RemapCaptions(captions []transcribe.TimedCaption, exclusions []Range) []transcribe.TimedCaption {
	merged := MergeExclusions(exclusions)
	if len(merged) == 0 {
		return slicesClone(captions)
	}

	out := make([]transcribe.TimedCaption, 0, len(captions))
	for _, c := range captions {
		words := make([]transcribe.TimedWord, 0, len(c.Words))
		for _, w := range c.Words {
			shift, dropped := shiftAt(merged, w.Start)
			if dropped {
				continue
			}
			words = append(words, transcribe.TimedWord{
				Text:  w.Text,
				Start: w.Start - shift,
				End:   w.End - shift,
			})
		}
		if len(words) == 0 {
			continue
		}
		out = append(out, transcribe.NewCaption(words))
	}
	return out
}

// shiftAt returns the cumulative excluded duration before t, and whether t
// itself falls inside an excluded range. merged must be sorted and disjoint.
func shiftAt(merged []Range, t time.Duration) (shift time.Duration, dropped bool) {
	for _, e := range merged {
		if e.Contains(t) {
			return 0, true
		}
		if e.End <= t {
			shift += e.Duration()
			continue
		}
		break
	}
	return shift, false
}

// slicesClone returns a shallow copy so callers can mutate the result
// without touching the transcription collaborator's slice.
func slicesClone(captions []transcribe.TimedCaption) []transcribe.TimedCaption {
	out := make([]transcribe.TimedCaption, len(captions))
	copy(out, captions)
	return out
}
