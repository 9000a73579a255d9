package pipeline

import "sync"

// Gate serializes access to the transcription engine. The engine is a
// non-reentrant resource: exactly one decode, partial or final, may be in
// flight, and no decode is ever preempted.
//
// Priority policy: finals over partials. AcquireFinal waits for the current
// holder (at most one in-flight partial, so the starvation bound is that
// partial's own latency) and is served before any later partial attempt,
// because TryAcquirePartial refuses while a final is waiting. Partials are
// best-effort by design, so they try-acquire and skip instead of queueing.
type Gate struct {
	mu            sync.Mutex
	cond          *sync.Cond
	busy          bool
	finalsWaiting int
}

// NewGate creates an idle Gate.
func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// AcquireFinal blocks until the gate is free, taking precedence over any
// partial attempt made while it waits.
func (g *Gate) AcquireFinal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.finalsWaiting++
	for g.busy {
		g.cond.Wait()
	}
	g.finalsWaiting--
	g.busy = true
}

// TryAcquirePartial acquires the gate only if it is free and no final is
// waiting. Returns false otherwise; the caller skips its cycle.
func (g *Gate) TryAcquirePartial() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy || g.finalsWaiting > 0 {
		return false
	}
	g.busy = true
	return true
}

// Release frees the gate and wakes any waiting final.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	g.cond.Broadcast()
}
