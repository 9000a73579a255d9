package energy

import (
	"testing"

	"github.com/MrWong99/murmur/pkg/provider/vad"
)

func session(t *testing.T, aggressiveness int) vad.Classifier {
	t.Helper()
	cls, err := Engine{}.NewSession(vad.Config{
		SampleRate:     16000,
		FrameSizeMs:    30,
		Aggressiveness: aggressiveness,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return cls
}

func constFrame(amp int16) []int16 {
	f := make([]int16, 480)
	for i := range f {
		f[i] = amp
	}
	return f
}

func TestClassifyByLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		aggressiveness int
		amp            int16
		want           bool
	}{
		// Amplitude 8000 is about -12 dBFS: speech at every setting.
		{name: "loud lenient", aggressiveness: 0, amp: 8000, want: true},
		{name: "loud strict", aggressiveness: 3, amp: 8000, want: true},
		// Silence is never speech.
		{name: "silence lenient", aggressiveness: 0, amp: 0, want: false},
		{name: "silence strict", aggressiveness: 3, amp: 0, want: false},
		// Amplitude 150 is about -47 dBFS: above the -55 lenient
		// threshold, below the -36 strict one.
		{name: "quiet lenient", aggressiveness: 0, amp: 150, want: true},
		{name: "quiet strict", aggressiveness: 3, amp: 150, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cls := session(t, tt.aggressiveness)
			defer cls.Close()

			got, err := cls.Classify(constFrame(tt.amp))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(amp=%d, aggr=%d) = %v, want %v", tt.amp, tt.aggressiveness, got, tt.want)
			}
		})
	}
}

func TestClassifyRejectsWrongFrameLength(t *testing.T) {
	t.Parallel()

	cls := session(t, 2)
	defer cls.Close()

	if _, err := cls.Classify(make([]int16, 100)); err == nil {
		t.Error("Classify(short frame) error = nil")
	}
}

func TestClassifyAfterCloseFails(t *testing.T) {
	t.Parallel()

	cls := session(t, 2)
	if err := cls.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := cls.Classify(constFrame(0)); err == nil {
		t.Error("Classify() after Close error = nil")
	}
}

func TestNewSessionValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := (Engine{}).NewSession(vad.Config{SampleRate: 16000, FrameSizeMs: 30, Aggressiveness: 7}); err == nil {
		t.Error("NewSession(aggressiveness=7) error = nil")
	}
	if _, err := (Engine{}).NewSession(vad.Config{SampleRate: 0, FrameSizeMs: 30}); err == nil {
		t.Error("NewSession(sample_rate=0) error = nil")
	}
}
