package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/akemper/kineto/pkg/transcribe"
)

// WriteVTT renders captions as a WebVTT document. Cue timing is the
// caption's remapped output-timeline bounds.
func WriteVTT(w io.Writer, captions []transcribe.TimedCaption) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for i, c := range captions {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, vttTimestamp(c.Start), vttTimestamp(c.End), c.Text())
		if err != nil {
			return err
		}
	}
	return nil
}

// writeCaptionSidecar writes the .vtt file next to the media output.
func writeCaptionSidecar(mediaPath string, captions []transcribe.TimedCaption) error {
	path := strings.TrimSuffix(mediaPath, ".mp4") + ".vtt"
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteVTT(f, captions); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// vttTimestamp formats a duration as a WebVTT timestamp (HH:MM:SS.mmm).
func vttTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
