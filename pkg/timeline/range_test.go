package timeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/akemper/kineto/pkg/timeline"
)

func sec(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestRangeDuration(t *testing.T) {
	r := timeline.Range{Start: sec(2), End: sec(4)}
	if r.Duration() != sec(2) {
		t.Errorf("Duration = %v, want 2s", r.Duration())
	}
	inverted := timeline.Range{Start: sec(4), End: sec(2)}
	if inverted.Duration() != 0 {
		t.Errorf("inverted Duration = %v, want 0", inverted.Duration())
	}
}

func TestRangeContainsHalfOpen(t *testing.T) {
	r := timeline.Range{Start: sec(2), End: sec(4)}
	if !r.Contains(sec(2)) {
		t.Error("start must be inside")
	}
	if r.Contains(sec(4)) {
		t.Error("end must be outside")
	}
}

func TestMergeExclusionsOrdersDistantRanges(t *testing.T) {
	// Starts more than ~2.1s apart overflow an int32 when compared by
	// subtraction, so sorting must not rely on the difference fitting in int.
	got := timeline.MergeExclusions([]timeline.Range{
		{Start: 3 * time.Hour, End: 3*time.Hour + time.Second},
		{Start: time.Second, End: 2 * time.Second},
		{Start: time.Hour, End: time.Hour + time.Second},
	})
	want := []timeline.Range{
		{Start: time.Second, End: 2 * time.Second},
		{Start: time.Hour, End: time.Hour + time.Second},
		{Start: 3 * time.Hour, End: 3*time.Hour + time.Second},
	}
	if len(got) != len(want) {
		t.Fatalf("merged = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("merged[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMergeExclusions(t *testing.T) {
	tests := []struct {
		name string
		in   []timeline.Range
		want []timeline.Range
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "overlapping",
			in: []timeline.Range{
				{Start: sec(2), End: sec(4)},
				{Start: sec(3), End: sec(6)},
			},
			want: []timeline.Range{{Start: sec(2), End: sec(6)}},
		},
		{
			name: "adjacent",
			in: []timeline.Range{
				{Start: sec(2), End: sec(4)},
				{Start: sec(4), End: sec(6)},
			},
			want: []timeline.Range{{Start: sec(2), End: sec(6)}},
		},
		{
			name: "disjoint stay separate",
			in: []timeline.Range{
				{Start: sec(6), End: sec(8)},
				{Start: sec(1), End: sec(2)},
			},
			want: []timeline.Range{
				{Start: sec(1), End: sec(2)},
				{Start: sec(6), End: sec(8)},
			},
		},
		{
			name: "empty and inverted dropped, negative clamped",
			in: []timeline.Range{
				{Start: sec(3), End: sec(3)},
				{Start: sec(5), End: sec(4)},
				{Start: -sec(1), End: sec(2)},
			},
			want: []timeline.Range{{Start: 0, End: sec(2)}},
		},
		{
			name: "contained range absorbed",
			in: []timeline.Range{
				{Start: sec(1), End: sec(10)},
				{Start: sec(3), End: sec(5)},
			},
			want: []timeline.Range{{Start: sec(1), End: sec(10)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timeline.MergeExclusions(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIncludedRanges(t *testing.T) {
	full := sec(10)
	got, err := timeline.IncludedRanges([]timeline.Range{
		{Start: sec(2), End: sec(4)},
		{Start: sec(3), End: sec(6)},
	}, full)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []timeline.Range{
		{Start: 0, End: sec(2)},
		{Start: sec(6), End: sec(10)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("range %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIncludedRangesNoExclusions(t *testing.T) {
	got, err := timeline.IncludedRanges(nil, sec(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != (timeline.Range{Start: 0, End: sec(5)}) {
		t.Errorf("got %v, want [0,5s)", got)
	}
}

func TestIncludedRangesClipsToFull(t *testing.T) {
	got, err := timeline.IncludedRanges([]timeline.Range{
		{Start: sec(8), End: sec(20)},
		{Start: sec(15), End: sec(30)},
	}, sec(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != (timeline.Range{Start: 0, End: sec(8)}) {
		t.Errorf("got %v, want [0,8s)", got)
	}
}

func TestIncludedRangesNoContent(t *testing.T) {
	_, err := timeline.IncludedRanges([]timeline.Range{{Start: 0, End: sec(10)}}, sec(10))
	if !errors.Is(err, timeline.ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}

	_, err = timeline.IncludedRanges(nil, 0)
	if !errors.Is(err, timeline.ErrNoContent) {
		t.Fatalf("zero duration err = %v, want ErrNoContent", err)
	}
}
