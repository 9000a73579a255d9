package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, decodes and validates the YAML config at path. Fields absent
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes and validates YAML from r. Unknown fields are
// rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file: defaults only.
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency and reports every
// violation found.
func (c *Config) Validate() error {
	var errs []error

	if !c.App.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("app.log_level: unknown level %q", c.App.LogLevel))
	}

	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate: must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Audio.FrameMs <= 0 {
		errs = append(errs, fmt.Errorf("audio.frame_ms: must be positive, got %d", c.Audio.FrameMs))
	}
	if c.Audio.QueueFrames <= 0 {
		errs = append(errs, fmt.Errorf("audio.queue_frames: must be positive, got %d", c.Audio.QueueFrames))
	}

	if c.VAD.Aggressiveness < 0 || c.VAD.Aggressiveness > 3 {
		errs = append(errs, fmt.Errorf("vad.aggressiveness: must be in [0,3], got %d", c.VAD.Aggressiveness))
	}
	if c.VAD.HangoverMs < 0 {
		errs = append(errs, fmt.Errorf("vad.hangover_ms: must be non-negative, got %d", c.VAD.HangoverMs))
	}
	if c.VAD.PrerollMs < 0 {
		errs = append(errs, fmt.Errorf("vad.preroll_ms: must be non-negative, got %d", c.VAD.PrerollMs))
	}
	if c.VAD.MinSegmentMs < 0 {
		errs = append(errs, fmt.Errorf("vad.min_segment_ms: must be non-negative, got %d", c.VAD.MinSegmentMs))
	}

	if !c.Engine.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("engine.backend: unknown backend %q", c.Engine.Backend))
	}
	if c.Engine.ModelPath == "" {
		errs = append(errs, errors.New("engine.model_path: required"))
	}
	if c.Engine.Threads < 0 {
		errs = append(errs, fmt.Errorf("engine.threads: must be non-negative, got %d", c.Engine.Threads))
	}

	if !c.Partial.Disabled {
		if c.Partial.WindowMs <= 0 {
			errs = append(errs, fmt.Errorf("partial.window_ms: must be positive, got %d", c.Partial.WindowMs))
		}
		if c.Partial.CadenceMs <= 0 {
			errs = append(errs, fmt.Errorf("partial.cadence_ms: must be positive, got %d", c.Partial.CadenceMs))
		}
		if c.Partial.MinAudioMs < 0 {
			errs = append(errs, fmt.Errorf("partial.min_audio_ms: must be non-negative, got %d", c.Partial.MinAudioMs))
		}
	}

	if !c.Output.Sink.IsValid() {
		errs = append(errs, fmt.Errorf("output.sink: unknown sink %q", c.Output.Sink))
	}
	if c.Output.Sink == SinkFile && c.Output.FileDir == "" {
		errs = append(errs, errors.New("output.file_dir: required for the file sink"))
	}

	if c.Hotkey.Enabled && c.Hotkey.Key == "" {
		errs = append(errs, errors.New("hotkey.key: required when hotkey is enabled"))
	}

	return errors.Join(errs...)
}
