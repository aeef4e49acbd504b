package export

import (
	"strings"
	"time"
	"unicode"
)

// defaultTitle names untitled exports.
const defaultTitle = "recording"

// SanitizeTitle turns a user-supplied title into a filesystem-safe slug:
// letters, digits, dashes and underscores survive; runs of anything else
// collapse into single dashes. An empty result falls back to "recording".
func SanitizeTitle(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return defaultTitle
	}
	return slug
}

// outputFileName derives the output file name from a sanitized title and a
// timestamp, e.g. "demo-session-20260825-140301.mp4".
func outputFileName(title string, now time.Time, preview bool) string {
	name := SanitizeTitle(title) + "-" + now.Format("20060102-150405")
	if preview {
		name += "-preview"
	}
	return name + ".mp4"
}
