package audio

import (
	"testing"
	"time"
)

func sampleFrame(value int16, n int) Frame {
	s := make([]int16, n)
	for i := range s {
		s[i] = value
	}
	return Frame{Samples: s}
}

func TestRollingWindowSnapshotOrder(t *testing.T) {
	t.Parallel()

	w := NewRollingWindow(3)
	w.Append(sampleFrame(1, 2))
	w.Append(sampleFrame(2, 2))

	got := w.Snapshot()
	want := []int16{1, 1, 2, 2}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Snapshot()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRollingWindowEvictsOldest(t *testing.T) {
	t.Parallel()

	w := NewRollingWindow(2)
	w.Append(sampleFrame(1, 1))
	w.Append(sampleFrame(2, 1))
	w.Append(sampleFrame(3, 1)) // evicts 1

	got := w.Snapshot()
	want := []int16{2, 3}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
}

func TestRollingWindowSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	w := NewRollingWindow(2)
	w.Append(sampleFrame(7, 2))

	snap := w.Snapshot()
	w.Reset()
	w.Append(sampleFrame(9, 2))

	for i, v := range snap {
		if v != 7 {
			t.Errorf("snapshot[%d] = %d after Reset, want 7", i, v)
		}
	}
}

func TestRollingWindowDuration(t *testing.T) {
	t.Parallel()

	w := NewRollingWindow(10)
	// 3 frames * 480 samples at 16 kHz = 90 ms.
	for i := 0; i < 3; i++ {
		w.Append(sampleFrame(0, 480))
	}
	if got := w.Duration(16000); got != 90*time.Millisecond {
		t.Errorf("Duration() = %v, want 90ms", got)
	}
}

func TestRollingWindowReset(t *testing.T) {
	t.Parallel()

	w := NewRollingWindow(4)
	w.Append(sampleFrame(1, 100))
	w.Reset()

	if got := w.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() after Reset has %d samples, want 0", len(got))
	}
	if got := w.Duration(16000); got != 0 {
		t.Errorf("Duration() after Reset = %v, want 0", got)
	}
}
