package config

// ConfigDiff describes what changed between two configs. Export and output
// settings take effect on the next export; capture settings only apply to
// recordings started after the change.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// OutputDirChanged is set when the export destination moved.
	OutputDirChanged bool

	// ExportChanged is set when any export default (renderer, aspect,
	// layout, bubble, caption or enhancement toggles) changed.
	ExportChanged bool

	// CaptureChanged is set when any capture setting changed. A running
	// recording keeps the settings it started with.
	CaptureChanged bool
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.LogLevel
	}
	if old.Output.Dir != new.Output.Dir {
		d.OutputDirChanged = true
	}
	if old.Export != new.Export {
		d.ExportChanged = true
	}
	if old.Capture != new.Capture {
		d.CaptureChanged = true
	}
	return d
}
