// Package audio provides the frame type and the two buffering primitives the
// capture pipeline is built on: a bounded non-blocking FrameQueue between the
// audio callback and the processing goroutines, and a RollingWindow holding
// the most recent seconds of audio for partial transcription.
package audio

import "time"

// Frame is a fixed-duration chunk of mono 16-bit PCM captured from the input
// device. Frames are immutable once produced: the capture callback copies
// device samples into a fresh slice and no later stage mutates it.
type Frame struct {
	// Samples is signed 16-bit mono PCM.
	Samples []int16

	// Timestamp marks when this frame was captured, relative to stream start.
	Timestamp time.Duration
}

// Duration returns the frame length as wall time for the given sample rate.
func (f Frame) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(sampleRate)
}

// FrameSamples returns the number of samples per frame for a sample rate and
// frame duration in milliseconds (e.g., 16000 Hz × 30 ms → 480).
func FrameSamples(sampleRate, frameMs int) int {
	return sampleRate * frameMs / 1000
}
