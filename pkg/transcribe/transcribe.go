// Package transcribe defines the timed-caption model produced by
// speech-to-text collaborators and consumed by the timeline builder.
//
// The speech-to-text engine itself is external — kineto consumes it as a
// black box through the [Transcriber] interface and only operates on the
// returned word timings. Caption timestamps are keyed by absolute time in
// the unedited recording; the timeline builder remaps them when exclusion
// ranges are applied.
//
// Implementations of [Transcriber] must be safe for concurrent use.
package transcribe

import (
	"context"
	"time"
)

// TimedWord is one recognised word with its time bounds in the unedited
// recording.
type TimedWord struct {
	// Text is the word as recognised, without surrounding whitespace.
	Text string

	// Start is when the word begins, relative to recording start.
	Start time.Duration

	// End is when the word ends. Always >= Start.
	End time.Duration
}

// TimedCaption is an ordered group of [TimedWord] entries forming one
// caption line.
//
// Invariant: words are time-ordered and non-overlapping, and the caption's
// Start/End equal its first/last word's bounds. Construct captions with
// [NewCaption] to maintain the invariant.
type TimedCaption struct {
	Words []TimedWord
	Start time.Duration
	End   time.Duration
}

// NewCaption builds a [TimedCaption] from words, deriving the caption
// bounds from the first and last word. An empty word list yields a
// zero-valued caption.
func NewCaption(words []TimedWord) TimedCaption {
	c := TimedCaption{Words: words}
	c.RecomputeBounds()
	return c
}

// RecomputeBounds resets the caption's Start/End from its surviving first
// and last word. Used after edits drop words from the caption.
func (c *TimedCaption) RecomputeBounds() {
	if len(c.Words) == 0 {
		c.Start, c.End = 0, 0
		return
	}
	c.Start = c.Words[0].Start
	c.End = c.Words[len(c.Words)-1].End
}

// Text joins the caption's words with single spaces.
func (c TimedCaption) Text() string {
	switch len(c.Words) {
	case 0:
		return ""
	case 1:
		return c.Words[0].Text
	}
	n := len(c.Words) - 1
	for _, w := range c.Words {
		n += len(w.Text)
	}
	buf := make([]byte, 0, n)
	for i, w := range c.Words {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, w.Text...)
	}
	return string(buf)
}

// Valid reports whether the caption satisfies its ordering invariant:
// words are time-ordered, non-overlapping, and the caption bounds equal
// the first/last word's bounds.
func (c TimedCaption) Valid() bool {
	if len(c.Words) == 0 {
		return c.Start == 0 && c.End == 0
	}
	for i, w := range c.Words {
		if w.End < w.Start {
			return false
		}
		if i > 0 && w.Start < c.Words[i-1].End {
			return false
		}
	}
	return c.Start == c.Words[0].Start && c.End == c.Words[len(c.Words)-1].End
}

// Transcriber converts a finished recording into timed captions.
// Implementations wrap external speech-to-text engines.
type Transcriber interface {
	// Transcribe processes the recording at path and returns its captions
	// ordered by start time. Word timestamps are absolute times in the
	// unedited recording.
	Transcribe(ctx context.Context, path string) ([]TimedCaption, error)
}
