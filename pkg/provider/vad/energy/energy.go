// Package energy provides an RMS-energy voice-activity backend.
//
// Each frame is reduced to its level in dBFS and compared against a fixed
// threshold selected by the aggressiveness setting. The classifier is
// deliberately stateless per frame (hysteresis and smoothing belong to the
// segmenter), which makes its behaviour easy to reason about and to test.
// It is the default backend; model-based classifiers can replace it behind
// the same vad.Engine interface.
package energy

import (
	"fmt"

	"github.com/MrWong99/murmur/pkg/audio"
	"github.com/MrWong99/murmur/pkg/provider/vad"
)

// thresholds maps aggressiveness 0–3 to the dBFS level at or above which a
// frame counts as speech. Higher aggressiveness demands a louder signal.
var thresholds = [4]float64{-55, -48, -42, -36}

// Compile-time assertion that Engine satisfies vad.Engine.
var _ vad.Engine = Engine{}

// Engine is the factory for energy classifier sessions. The zero value is
// ready to use.
type Engine struct{}

// NewSession creates an energy classifier for the given configuration.
func (Engine) NewSession(cfg vad.Config) (vad.Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &classifier{
		frameSamples: cfg.FrameSamples(),
		threshold:    thresholds[cfg.Aggressiveness],
	}, nil
}

type classifier struct {
	frameSamples int
	threshold    float64
	closed       bool
}

// Classify reports whether the frame's RMS level reaches the speech threshold.
func (c *classifier) Classify(frame []int16) (bool, error) {
	if c.closed {
		return false, fmt.Errorf("energy: classifier is closed")
	}
	if len(frame) != c.frameSamples {
		return false, fmt.Errorf("energy: expected %d samples, got %d", c.frameSamples, len(frame))
	}
	return audio.RMSDBFS(frame) >= c.threshold, nil
}

// Reset is a no-op; the classifier holds no per-frame state.
func (c *classifier) Reset() {}

func (c *classifier) Close() error {
	c.closed = true
	return nil
}
