package timeline

import (
	"cmp"
	"errors"
	"slices"
	"time"
)

// ErrNoContent is returned when the merged exclusions cover the entire
// recording — there is nothing left to export.
var ErrNoContent = errors.New("timeline: no content remaining after edits")

// Range is a half-open time interval [Start, End) on the unedited source
// timeline.
type Range struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns End − Start, or zero for an inverted range.
func (r Range) Duration() time.Duration {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether t falls inside the half-open interval.
func (r Range) Contains(t time.Duration) bool {
	return t >= r.Start && t < r.End
}

// Empty reports whether the range covers no time at all.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// MergeExclusions normalises a set of possibly overlapping exclusion ranges
// into the minimal sorted set of disjoint ranges with the same union.
// Empty and inverted ranges are dropped; negative starts are clamped to
// zero. The input slice is not modified.
func MergeExclusions(exclusions []Range) []Range {
	ranges := make([]Range, 0, len(exclusions))
	for _, r := range exclusions {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.Empty() {
			continue
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return nil
	}

	slices.SortFunc(ranges, func(a, b Range) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		// Adjacent ranges merge too: [2,4) + [4,6) = [2,6).
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// IncludedRanges computes the ordered, disjoint complement of the given
// exclusions against [0, full). The exclusions need not be merged — merging
// happens internally. Exclusions are clipped to [0, full).
//
// With no effective exclusions the single range [0, full) is returned.
// Returns [ErrNoContent] when the exclusions cover the full duration.
func IncludedRanges(exclusions []Range, full time.Duration) ([]Range, error) {
	if full <= 0 {
		return nil, ErrNoContent
	}

	var included []Range
	cursor := time.Duration(0)
	for _, e := range MergeExclusions(exclusions) {
		if e.Start >= full {
			break
		}
		if e.End > full {
			e.End = full
		}
		if e.Start > cursor {
			included = append(included, Range{Start: cursor, End: e.Start})
		}
		if e.End > cursor {
			cursor = e.End
		}
	}
	if cursor < full {
		included = append(included, Range{Start: cursor, End: full})
	}

	if len(included) == 0 {
		return nil, ErrNoContent
	}
	return included, nil
}

// totalDuration sums the durations of the given ranges.
func totalDuration(ranges []Range) time.Duration {
	var total time.Duration
	for _, r := range ranges {
		total += r.Duration()
	}
	return total
}
