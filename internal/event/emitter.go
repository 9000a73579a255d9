package event

import (
	"sync"
	"time"
)

// Emitter fans events out to registered listeners in emission order.
//
// Each listener gets its own buffered channel. Delivery is non-blocking: a
// listener whose buffer is full misses that event (counted per listener),
// so a slow status display can never stall the pipeline. Listeners that must
// not miss events (final-only sinks) register with a buffer sized for their
// worst-case lag.
type Emitter struct {
	mu        sync.Mutex
	listeners []*listener
	seq       uint64
	closed    bool
}

type listener struct {
	name    string
	ch      chan Event
	dropped uint64
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Register adds a listener and returns its receive channel. The channel is
// closed when the Emitter closes. buf must be at least 1.
func (e *Emitter) Register(name string, buf int) <-chan Event {
	if buf < 1 {
		buf = 1
	}
	l := &listener{name: name, ch: make(chan Event, buf)}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(l.ch)
		return l.ch
	}
	e.listeners = append(e.listeners, l)
	return l.ch
}

// Emit assigns the event a sequence number and timestamp and delivers it to
// every listener that has buffer room. Never blocks.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.seq++
	ev.Seq = e.seq
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	for _, l := range e.listeners {
		select {
		case l.ch <- ev:
		default:
			l.dropped++
		}
	}
}

// Dropped returns the number of events a named listener has missed.
func (e *Emitter) Dropped(name string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, l := range e.listeners {
		if l.name == name {
			return l.dropped
		}
	}
	return 0
}

// Close closes all listener channels. Emit becomes a no-op. Safe to call
// more than once.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for _, l := range e.listeners {
		close(l.ch)
	}
	e.listeners = nil
}
