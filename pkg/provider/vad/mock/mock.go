// Package mock provides a scripted vad.Classifier for tests.
package mock

import (
	"sync"

	"github.com/MrWong99/murmur/pkg/provider/vad"
)

// Compile-time assertions.
var (
	_ vad.Engine     = (*Engine)(nil)
	_ vad.Classifier = (*Classifier)(nil)
)

// Engine creates Classifier sessions driven by a ClassifyFunc script.
type Engine struct {
	// ClassifyFunc is invoked for every frame. When nil, all frames are
	// classified as silence.
	ClassifyFunc func(frame []int16) (bool, error)
}

// NewSession creates a scripted classifier. The configuration is not
// validated so tests can exercise edge cases freely.
func (e *Engine) NewSession(_ vad.Config) (vad.Classifier, error) {
	return &Classifier{fn: e.ClassifyFunc}, nil
}

// Classifier is a scripted vad.Classifier that records call counts.
type Classifier struct {
	mu     sync.Mutex
	fn     func(frame []int16) (bool, error)
	calls  int
	resets int
	closed bool
}

// NewClassifier creates a standalone scripted classifier without an Engine.
func NewClassifier(fn func(frame []int16) (bool, error)) *Classifier {
	return &Classifier{fn: fn}
}

func (c *Classifier) Classify(frame []int16) (bool, error) {
	c.mu.Lock()
	c.calls++
	fn := c.fn
	c.mu.Unlock()
	if fn == nil {
		return false, nil
	}
	return fn(frame)
}

func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets++
}

func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Calls returns how many frames have been classified.
func (c *Classifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Resets returns how many times Reset was called.
func (c *Classifier) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}
