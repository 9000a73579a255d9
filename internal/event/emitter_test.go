package event

import (
	"testing"
)

func TestEmitterAssignsIncreasingSeq(t *testing.T) {
	t.Parallel()

	e := NewEmitter()
	ch := e.Register("a", 8)

	e.Emit(Event{Kind: KindStatus})
	e.Emit(Event{Kind: KindPartial, Text: "hel"})
	e.Emit(Event{Kind: KindFinal, Text: "hello"})
	e.Close()

	var prev uint64
	var count int
	for ev := range ch {
		if ev.Seq <= prev {
			t.Errorf("Seq %d not greater than previous %d", ev.Seq, prev)
		}
		if ev.Time.IsZero() {
			t.Error("Time not assigned")
		}
		prev = ev.Seq
		count++
	}
	if count != 3 {
		t.Errorf("received %d events, want 3", count)
	}
}

func TestEmitterFanOut(t *testing.T) {
	t.Parallel()

	e := NewEmitter()
	a := e.Register("a", 4)
	b := e.Register("b", 4)

	e.Emit(Event{Kind: KindFinal, Text: "x"})
	e.Close()

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		ev, ok := <-ch
		if !ok {
			t.Fatalf("listener %s: channel closed with no event", name)
		}
		if ev.Text != "x" {
			t.Errorf("listener %s: Text = %q, want x", name, ev.Text)
		}
	}
}

func TestEmitterDropsWhenListenerBufferFull(t *testing.T) {
	t.Parallel()

	e := NewEmitter()
	slow := e.Register("slow", 1)
	fast := e.Register("fast", 8)

	for i := 0; i < 5; i++ {
		e.Emit(Event{Kind: KindStatus})
	}

	if got := e.Dropped("slow"); got != 4 {
		t.Errorf("Dropped(slow) = %d, want 4", got)
	}
	if got := e.Dropped("fast"); got != 0 {
		t.Errorf("Dropped(fast) = %d, want 0", got)
	}

	// The slow listener still gets the first event; its Seq exposes the gap.
	ev := <-slow
	if ev.Seq != 1 {
		t.Errorf("slow listener first Seq = %d, want 1", ev.Seq)
	}

	e.Close()
	var last uint64
	for ev := range fast {
		last = ev.Seq
	}
	if last != 5 {
		t.Errorf("fast listener last Seq = %d, want 5", last)
	}
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	e := NewEmitter()
	ch := e.Register("a", 1)
	e.Close()
	e.Close()
	e.Emit(Event{Kind: KindStatus}) // no-op after close

	if _, ok := <-ch; ok {
		t.Error("received an event after Close")
	}
}

func TestRegisterAfterCloseReturnsClosedChannel(t *testing.T) {
	t.Parallel()

	e := NewEmitter()
	e.Close()
	ch := e.Register("late", 1)
	if _, ok := <-ch; ok {
		t.Error("late listener channel not closed")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindPartial, "partial"},
		{KindFinal, "final"},
		{KindStatus, "status"},
		{KindError, "error"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
