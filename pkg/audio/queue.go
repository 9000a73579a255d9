package audio

import (
	"sync/atomic"
	"time"
)

// FrameQueue is the bounded handoff between the real-time audio callback and
// the processing goroutine. The producer side never blocks: TryPush either
// enqueues immediately or drops the incoming frame and counts it. The drop
// policy is drop-newest: under sustained overflow the already-buffered
// contiguous audio is preserved and the freshest frames are sacrificed.
//
// Safe for one producer and one consumer; additional producers are allowed
// but the capture pipeline uses exactly one.
type FrameQueue struct {
	ch      chan Frame
	dropped atomic.Uint64
}

// NewFrameQueue creates a queue holding at most capacity pending frames.
// Capacity must be positive; 333 frames ≈ 10 s of 30 ms audio.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &FrameQueue{ch: make(chan Frame, capacity)}
}

// TryPush attempts a non-blocking enqueue. It returns false and increments
// the drop counter when the queue is full. Safe to call from the audio
// callback: it never blocks, never allocates, never panics.
func (q *FrameQueue) TryPush(f Frame) bool {
	select {
	case q.ch <- f:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Pop dequeues the oldest pending frame, waiting up to timeout. The second
// return value is false when the wait timed out. Consumer side only; the
// producer must use TryPush.
func (q *FrameQueue) Pop(timeout time.Duration) (Frame, bool) {
	select {
	case f := <-q.ch:
		return f, true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case f := <-q.ch:
		return f, true
	case <-t.C:
		return Frame{}, false
	}
}

// Len returns the number of pending frames.
func (q *FrameQueue) Len() int { return len(q.ch) }

// Dropped returns the total number of frames rejected by TryPush since the
// queue was created. Monotonically non-decreasing.
func (q *FrameQueue) Dropped() uint64 { return q.dropped.Load() }
