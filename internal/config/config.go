// Package config provides the configuration schema and loader for murmur.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SinkName selects where final transcripts are delivered.
type SinkName string

const (
	// SinkStdout prints each final transcript to standard output.
	SinkStdout SinkName = "stdout"

	// SinkClipboard copies each final transcript to the system clipboard.
	SinkClipboard SinkName = "clipboard"

	// SinkPaste copies to the clipboard and synthesizes a paste keystroke
	// into the focused application.
	SinkPaste SinkName = "paste"

	// SinkFile appends each final transcript to a dictation file.
	SinkFile SinkName = "file"
)

// IsValid reports whether s is a recognised sink.
func (s SinkName) IsValid() bool {
	switch s {
	case SinkStdout, SinkClipboard, SinkPaste, SinkFile:
		return true
	}
	return false
}

// Backend selects the transcription engine implementation.
type Backend string

const (
	// BackendWhisperCpp runs whisper.cpp locally through its CGO bindings.
	BackendWhisperCpp Backend = "whispercpp"
)

// IsValid reports whether b is a recognised backend.
func (b Backend) IsValid() bool {
	return b == BackendWhisperCpp
}

// Config is the root configuration structure for murmur.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	App     AppConfig     `yaml:"app"`
	Audio   AudioConfig   `yaml:"audio"`
	VAD     VADConfig     `yaml:"vad"`
	Engine  EngineConfig  `yaml:"engine"`
	Partial PartialConfig `yaml:"partial"`
	Output  OutputConfig  `yaml:"output"`
	Hotkey  HotkeyConfig  `yaml:"hotkey"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// AppConfig holds logging and diagnostics settings.
type AppConfig struct {
	// LogLevel controls verbosity. Default: info.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint (e.g., "localhost:9090"). Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// AudioConfig describes the capture format and device.
type AudioConfig struct {
	// SampleRate in Hz. Whisper models expect 16000.
	SampleRate int `yaml:"sample_rate"`

	// FrameMs is the capture frame duration in milliseconds.
	FrameMs int `yaml:"frame_ms"`

	// Device selects the input device by name; empty or "default" uses the
	// system default.
	Device string `yaml:"device"`

	// QueueFrames is the frame queue capacity. 333 frames ≈ 10 s of 30 ms
	// audio.
	QueueFrames int `yaml:"queue_frames"`
}

// VADConfig tunes the voice-activity segmenter.
type VADConfig struct {
	// Aggressiveness of the classifier, 0–3. Higher is stricter.
	Aggressiveness int `yaml:"aggressiveness"`

	// HangoverMs is the trailing silence tolerated before a segment closes.
	HangoverMs int `yaml:"hangover_ms"`

	// PrerollMs is the look-back audio prepended to each segment.
	PrerollMs int `yaml:"preroll_ms"`

	// MinSegmentMs is the minimum speech duration for a standalone segment.
	MinSegmentMs int `yaml:"min_segment_ms"`
}

// EngineConfig selects and parameterises the transcription backend.
type EngineConfig struct {
	// Backend names the engine implementation.
	Backend Backend `yaml:"backend"`

	// ModelPath is the path to the ggml model file.
	ModelPath string `yaml:"model_path"`

	// Language is the language code passed to the engine (e.g., "en").
	Language string `yaml:"language"`

	// Threads caps inference threads; 0 uses the backend default.
	Threads int `yaml:"threads"`
}

// PartialConfig tunes the rolling-window preview decodes.
type PartialConfig struct {
	// Disabled turns partial previews off; only finals are produced.
	Disabled bool `yaml:"disabled"`

	// WindowMs is the rolling-window span.
	WindowMs int `yaml:"window_ms"`

	// CadenceMs is the partial decode interval.
	CadenceMs int `yaml:"cadence_ms"`

	// MinAudioMs is the minimum buffered audio before a partial decode.
	MinAudioMs int `yaml:"min_audio_ms"`
}

// OutputConfig selects the final-transcript sink.
type OutputConfig struct {
	// Sink names the destination for final transcripts.
	Sink SinkName `yaml:"sink"`

	// FileDir is the directory for the file sink's dictation file.
	FileDir string `yaml:"file_dir"`

	// Separator is appended after each final transcript by the file sink.
	Separator string `yaml:"separator"`

	// Vocabulary lists names and jargon the engine tends to mis-hear.
	// Final transcripts are corrected against it before delivery.
	Vocabulary []string `yaml:"vocabulary"`
}

// HotkeyConfig configures the global toggle hotkey.
type HotkeyConfig struct {
	// Enabled registers the hotkey; when false the pipeline starts
	// immediately and runs until interrupted.
	Enabled bool `yaml:"enabled"`

	// Key is the key name (e.g., "space", "d", "f18").
	Key string `yaml:"key"`

	// Modifiers are held together with Key (e.g., ["ctrl", "shift"]).
	Modifiers []string `yaml:"modifiers"`
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	// Enabled turns best-effort desktop notifications on.
	Enabled bool `yaml:"enabled"`
}

// Default returns a Config populated with the documented defaults.
func Default() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: LogInfo,
		},
		Audio: AudioConfig{
			SampleRate:  16000,
			FrameMs:     30,
			Device:      "default",
			QueueFrames: 333,
		},
		VAD: VADConfig{
			Aggressiveness: 2,
			HangoverMs:     300,
			PrerollMs:      150,
			MinSegmentMs:   300,
		},
		Engine: EngineConfig{
			Backend:  BackendWhisperCpp,
			Language: "en",
		},
		Partial: PartialConfig{
			WindowMs:   5000,
			CadenceMs:  1000,
			MinAudioMs: 1200,
		},
		Output: OutputConfig{
			Sink:      SinkStdout,
			Separator: "\n",
		},
		Hotkey: HotkeyConfig{
			Key:       "d",
			Modifiers: []string{"ctrl", "shift"},
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}
