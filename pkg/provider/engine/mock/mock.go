// Package mock provides a scripted engine.Transcriber for tests.
package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrWong99/murmur/pkg/provider/engine"
)

// Compile-time assertion.
var _ engine.Transcriber = (*Transcriber)(nil)

// Call records one Decode invocation.
type Call struct {
	Samples int
	Final   bool
	Start   time.Time
	End     time.Time
}

// Transcriber is a scripted engine.Transcriber. It records every call and
// tracks the number of concurrently in-flight decodes so tests can assert the
// pipeline's mutual-exclusion guarantees.
type Transcriber struct {
	// DecodeFunc produces the result for each call. When nil, Decode returns
	// Result{Text: "mock"} immediately.
	DecodeFunc func(ctx context.Context, samples []float32, final bool) (engine.Result, error)

	// Delay is slept inside each Decode before DecodeFunc runs, simulating
	// inference latency.
	Delay time.Duration

	mu    sync.Mutex
	calls []Call

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (t *Transcriber) Decode(ctx context.Context, samples []float32, final bool) (engine.Result, error) {
	n := t.inflight.Add(1)
	defer t.inflight.Add(-1)
	for {
		max := t.maxInflight.Load()
		if n <= max || t.maxInflight.CompareAndSwap(max, n) {
			break
		}
	}

	call := Call{Samples: len(samples), Final: final, Start: time.Now()}

	if t.Delay > 0 {
		select {
		case <-time.After(t.Delay):
		case <-ctx.Done():
			t.record(call)
			return engine.Result{}, ctx.Err()
		}
	}

	var res engine.Result
	var err error
	if t.DecodeFunc != nil {
		res, err = t.DecodeFunc(ctx, samples, final)
	} else {
		res = engine.Result{Text: "mock"}
	}
	call.End = time.Now()
	t.record(call)
	return res, err
}

func (t *Transcriber) record(c Call) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c.End.IsZero() {
		c.End = time.Now()
	}
	t.calls = append(t.calls, c)
}

// Calls returns a copy of all recorded calls in invocation order.
func (t *Transcriber) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// MaxInflight returns the highest number of Decode calls ever concurrently
// in flight. A correctly gated pipeline never exceeds 1.
func (t *Transcriber) MaxInflight() int {
	return int(t.maxInflight.Load())
}
