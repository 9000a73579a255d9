// Package engine defines the Transcriber interface for transcription
// backends.
//
// A Transcriber maps a buffer of PCM audio to text in one synchronous call.
// The same method serves both cadences of the pipeline: rolling-window
// partial previews (final=false) and authoritative per-segment decodes
// (final=true). Backends may use the flag to trade accuracy for speed, or
// ignore it.
//
// Transcribers are treated as non-reentrant resources: callers must never
// invoke Decode concurrently. The pipeline enforces this with a single
// priority gate; backends are free to assume one decode in flight at a time.
package engine

import (
	"context"
	"time"
)

// Result is the outcome of one decode call.
type Result struct {
	// Text is the transcribed speech, whitespace-trimmed. May be empty when
	// the audio contained no recognisable speech.
	Text string

	// Confidence is an upper bound on result confidence in [0, 1]. Zero when
	// the backend reports none (whisper.cpp does not).
	Confidence float64

	// Audio is the duration of the decoded PCM buffer.
	Audio time.Duration

	// Decode is the wall time the backend spent on inference. Audio/Decode
	// gives the real-time factor.
	Decode time.Duration
}

// Transcriber is the capability interface over any transcription backend.
type Transcriber interface {
	// Decode transcribes normalised float32 mono PCM at the backend's
	// configured sample rate. final marks authoritative per-segment decodes;
	// partial rolling-window decodes pass false. Returns an error on
	// malformed input or backend failure; the backend must remain usable
	// for subsequent calls after an error.
	Decode(ctx context.Context, samples []float32, final bool) (Result, error)
}
