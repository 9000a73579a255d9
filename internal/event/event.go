// Package event defines the pipeline's outward event stream and the fan-out
// emitter that delivers it to listeners.
package event

import "time"

// Kind discriminates the event variants.
type Kind int

const (
	// KindPartial is a low-confidence rolling-window preview transcript.
	KindPartial Kind = iota

	// KindFinal is the authoritative transcript for one completed segment.
	// It logically supersedes all partials emitted during that segment.
	KindFinal

	// KindStatus carries the per-frame level and VAD indicator for UIs.
	KindStatus

	// KindError is an advisory or terminal pipeline error.
	KindError
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindPartial:
		return "partial"
	case KindFinal:
		return "final"
	case KindStatus:
		return "status"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Event is one entry in the pipeline's ordered outward stream. Seq is
// assigned by the Emitter and is strictly increasing across all kinds, so
// listeners can verify ordering even after drops.
type Event struct {
	Kind Kind
	Seq  uint64
	Time time.Time

	// Text is set on Partial and Final events. A Final with empty Text means
	// the segment decoded to nothing. It is still emitted so finalization
	// accounting never silently vanishes.
	Text string

	// Confidence is an upper bound on partial-transcript confidence. Zero
	// when the backend reports none.
	Confidence float64

	// SegmentID ties Final events (and their error markers) to a segment.
	SegmentID string

	// Latency is the capture-to-final latency on Final events.
	Latency time.Duration

	// LevelDBFS and VADActive are set on Status events.
	LevelDBFS float64
	VADActive bool

	// DroppedFrames is the cumulative capture drop counter, on Status events.
	DroppedFrames uint64

	// Err is set on Error events and on Final events whose decode failed.
	Err error

	// Fatal marks an Error event that terminates the session.
	Fatal bool
}
