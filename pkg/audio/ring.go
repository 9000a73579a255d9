package audio

import (
	"sync"
	"time"
)

// RollingWindow is a bounded ring of the most recently captured frames,
// independent of segment boundaries. The frame consumer appends continuously;
// the partial decode loop takes read snapshots; Reset empties the window the
// moment a segment finalizes so no stale audio leaks into the next partial.
//
// A single mutex provides both exclusion and the memory-visibility guarantee
// between the consumer and decode goroutines.
type RollingWindow struct {
	mu     sync.Mutex
	frames []Frame
	head   int // index of the oldest frame
	size   int
}

// NewRollingWindow creates a window retaining at most capacity frames
// (e.g., 5 s of 30 ms frames → 167).
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &RollingWindow{frames: make([]Frame, capacity)}
}

// Append adds a frame, overwriting the oldest when the window is full.
func (w *RollingWindow) Append(f Frame) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size < len(w.frames) {
		w.frames[(w.head+w.size)%len(w.frames)] = f
		w.size++
		return
	}
	w.frames[w.head] = f
	w.head = (w.head + 1) % len(w.frames)
}

// Snapshot returns a copy of all buffered samples in capture order. The
// returned slice is owned by the caller; subsequent Append or Reset calls do
// not affect it.
func (w *RollingWindow) Snapshot() []int16 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var n int
	for i := 0; i < w.size; i++ {
		n += len(w.frames[(w.head+i)%len(w.frames)].Samples)
	}
	out := make([]int16, 0, n)
	for i := 0; i < w.size; i++ {
		out = append(out, w.frames[(w.head+i)%len(w.frames)].Samples...)
	}
	return out
}

// Duration returns the buffered audio length for the given sample rate.
func (w *RollingWindow) Duration(sampleRate int) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if sampleRate <= 0 {
		return 0
	}
	var n int
	for i := 0; i < w.size; i++ {
		n += len(w.frames[(w.head+i)%len(w.frames)].Samples)
	}
	return time.Duration(n) * time.Second / time.Duration(sampleRate)
}

// Reset discards all buffered frames.
func (w *RollingWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.head = 0
	w.size = 0
	for i := range w.frames {
		w.frames[i] = Frame{}
	}
}
