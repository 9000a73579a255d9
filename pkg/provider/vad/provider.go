// Package vad defines the Engine interface for voice-activity classifier
// backends.
//
// A VAD engine wraps a frame-level speech detector and surfaces it as a
// per-stream Classifier. Classification is binary (speech / not-speech) and
// strictly per frame: all temporal smoothing (hangover, pre-roll, minimum
// segment duration) lives in the segmenter, not here. This keeps backends
// swappable without touching the segmentation state machine.
//
// Classify is synchronous by design: it returns immediately, making it
// suitable for the per-frame pipeline loop. A Classifier should not be shared
// across goroutines unless the implementation documents otherwise.
package vad

import "fmt"

// Config holds the parameters for a classifier session.
type Config struct {
	// SampleRate is the audio sample rate in Hz. Must match the rate of the
	// PCM frames passed to Classify. Common values: 8000, 16000, 48000.
	SampleRate int

	// FrameSizeMs is the duration of each audio frame in milliseconds.
	// Classify returns an error if the supplied frame does not match.
	FrameSizeMs int

	// Aggressiveness tunes the speech/silence decision, range 0–3. Higher
	// values are stricter: fewer false positives at the cost of clipping
	// quiet speech. Typical: 2.
	Aggressiveness int
}

// Validate reports whether cfg is usable by any backend.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("vad: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameSizeMs <= 0 {
		return fmt.Errorf("vad: frame size must be positive, got %d ms", c.FrameSizeMs)
	}
	if c.Aggressiveness < 0 || c.Aggressiveness > 3 {
		return fmt.Errorf("vad: aggressiveness must be in [0, 3], got %d", c.Aggressiveness)
	}
	return nil
}

// FrameSamples returns the expected frame length in samples.
func (c Config) FrameSamples() int {
	return c.SampleRate * c.FrameSizeMs / 1000
}

// Classifier is an active per-stream classification session. It is an
// interface so that test code can supply scripted implementations without a
// live backend.
type Classifier interface {
	// Classify analyses a single mono PCM frame and reports whether it
	// contains speech. The frame must match the SampleRate and FrameSizeMs
	// configured when the session was created. Must not block.
	Classify(frame []int16) (bool, error)

	// Reset clears any accumulated state without closing the session. Use
	// when the audio stream is interrupted or restarted.
	Reset()

	// Close releases session resources. Calling Close more than once is safe
	// and returns nil.
	Close() error
}

// Engine is the factory for classifier sessions, implemented by each VAD
// backend. Implementations must be safe for concurrent NewSession calls.
type Engine interface {
	// NewSession creates a classifier with the given configuration, ready to
	// accept frames. Returns an error if the configuration is invalid or the
	// backend cannot allocate resources.
	NewSession(cfg Config) (Classifier, error)
}
