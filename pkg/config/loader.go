package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is required"))
	}

	if cfg.Capture.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("capture.queue_size %d must not be negative", cfg.Capture.QueueSize))
	}
	if ms := cfg.Capture.AudioDelayMs; ms < -1000 || ms > 1000 {
		errs = append(errs, fmt.Errorf("capture.audio_delay_ms %d is out of range [-1000, 1000]", ms))
	}
	if cfg.Capture.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("capture.sample_rate %d must not be negative", cfg.Capture.SampleRate))
	}
	if cfg.Capture.Channels < 0 || cfg.Capture.Channels > 2 {
		errs = append(errs, fmt.Errorf("capture.channels %d is out of range [0, 2]", cfg.Capture.Channels))
	}

	if cfg.Export.Aspect != "" && !cfg.Export.Aspect.IsValid() {
		errs = append(errs, fmt.Errorf("export.aspect %q is invalid; valid values: wide, vertical, square", cfg.Export.Aspect))
	}
	if cfg.Export.Layout != "" && !cfg.Export.Layout.IsValid() {
		errs = append(errs, fmt.Errorf("export.layout %q is invalid; valid values: side_by_side, circle_bubble, square_bubble", cfg.Export.Layout))
	}
	if cfg.Export.Bubble != "" && !cfg.Export.Bubble.IsValid() {
		errs = append(errs, fmt.Errorf("export.bubble %q is invalid; valid values: bottom_right, bottom_left, top_right, top_left", cfg.Export.Bubble))
	}

	return errors.Join(errs...)
}
