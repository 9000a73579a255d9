package config

import (
	"strings"
	"testing"
)

func TestLoadFromReaderDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader("engine:\n  model_path: /models/ggml-base.en.bin\n"))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("Audio.SampleRate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.FrameMs != 30 {
		t.Errorf("Audio.FrameMs = %d, want 30", cfg.Audio.FrameMs)
	}
	if cfg.VAD.HangoverMs != 300 {
		t.Errorf("VAD.HangoverMs = %d, want 300", cfg.VAD.HangoverMs)
	}
	if cfg.VAD.PrerollMs != 150 {
		t.Errorf("VAD.PrerollMs = %d, want 150", cfg.VAD.PrerollMs)
	}
	if cfg.Partial.WindowMs != 5000 {
		t.Errorf("Partial.WindowMs = %d, want 5000", cfg.Partial.WindowMs)
	}
	if cfg.Engine.Backend != BackendWhisperCpp {
		t.Errorf("Engine.Backend = %q, want %q", cfg.Engine.Backend, BackendWhisperCpp)
	}
	if cfg.Output.Sink != SinkStdout {
		t.Errorf("Output.Sink = %q, want %q", cfg.Output.Sink, SinkStdout)
	}
}

func TestLoadFromReaderOverrides(t *testing.T) {
	t.Parallel()

	const doc = `
app:
  log_level: debug
audio:
  sample_rate: 16000
  device: "USB Microphone"
vad:
  aggressiveness: 3
  hangover_ms: 450
engine:
  backend: whispercpp
  model_path: /models/ggml-small.bin
  language: de
  threads: 4
partial:
  disabled: true
output:
  sink: file
  file_dir: /tmp/dictation
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.App.LogLevel != LogDebug {
		t.Errorf("App.LogLevel = %q, want debug", cfg.App.LogLevel)
	}
	if cfg.Audio.Device != "USB Microphone" {
		t.Errorf("Audio.Device = %q, want USB Microphone", cfg.Audio.Device)
	}
	if cfg.VAD.Aggressiveness != 3 {
		t.Errorf("VAD.Aggressiveness = %d, want 3", cfg.VAD.Aggressiveness)
	}
	if cfg.VAD.HangoverMs != 450 {
		t.Errorf("VAD.HangoverMs = %d, want 450", cfg.VAD.HangoverMs)
	}
	if !cfg.Partial.Disabled {
		t.Error("Partial.Disabled = false, want true")
	}
	if cfg.Engine.Language != "de" {
		t.Errorf("Engine.Language = %q, want de", cfg.Engine.Language)
	}
	if cfg.Output.Sink != SinkFile {
		t.Errorf("Output.Sink = %q, want file", cfg.Output.Sink)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader("engine:\n  model_path: /m.bin\n  temperature: 0.5\n"))
	if err == nil {
		t.Fatal("LoadFromReader() error = nil, want unknown-field error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "missing model path",
			mutate:  func(c *Config) { c.Engine.ModelPath = "" },
			wantErr: "engine.model_path",
		},
		{
			name:    "bad aggressiveness",
			mutate:  func(c *Config) { c.VAD.Aggressiveness = 5 },
			wantErr: "vad.aggressiveness",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.App.LogLevel = "verbose" },
			wantErr: "app.log_level",
		},
		{
			name:    "bad sink",
			mutate:  func(c *Config) { c.Output.Sink = "printer" },
			wantErr: "output.sink",
		},
		{
			name:    "file sink without dir",
			mutate:  func(c *Config) { c.Output.Sink = SinkFile },
			wantErr: "output.file_dir",
		},
		{
			name: "zero cadence with partials enabled",
			mutate: func(c *Config) {
				c.Partial.CadenceMs = 0
			},
			wantErr: "partial.cadence_ms",
		},
		{
			name: "zero cadence with partials disabled",
			mutate: func(c *Config) {
				c.Partial.Disabled = true
				c.Partial.CadenceMs = 0
			},
			wantErr: "",
		},
		{
			name: "hotkey enabled without key",
			mutate: func(c *Config) {
				c.Hotkey.Enabled = true
				c.Hotkey.Key = ""
			},
			wantErr: "hotkey.key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			cfg.Engine.ModelPath = "/models/ggml-base.en.bin"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
