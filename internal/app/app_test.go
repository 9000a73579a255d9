package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrWong99/murmur/internal/config"
	"github.com/MrWong99/murmur/pkg/audio"
	enginemock "github.com/MrWong99/murmur/pkg/provider/engine/mock"
	vadmock "github.com/MrWong99/murmur/pkg/provider/vad/mock"
)

// scriptedSource feeds a fixed frame sequence into the queue on Start.
type scriptedSource struct {
	queue  *audio.FrameQueue
	frames []audio.Frame
}

func (s *scriptedSource) Start() error {
	go func() {
		for _, f := range s.frames {
			s.queue.TryPush(f)
		}
	}()
	return nil
}

func (s *scriptedSource) Stop() error  { return nil }
func (s *scriptedSource) Close() error { return nil }

// recordSink collects finals and signals each delivery.
type recordSink struct {
	mu     sync.Mutex
	finals []string
	ch     chan string
}

func newRecordSink() *recordSink {
	return &recordSink{ch: make(chan string, 16)}
}

func (r *recordSink) HandleFinal(text string) error {
	r.mu.Lock()
	r.finals = append(r.finals, text)
	r.mu.Unlock()
	r.ch <- text
	return nil
}

func (r *recordSink) Name() string { return "record" }

func (r *recordSink) Finals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.finals))
	copy(out, r.finals)
	return out
}

// speechFrames returns n frames of constant amplitude amp.
func speechFrames(n int, amp int16, start int) []audio.Frame {
	frames := make([]audio.Frame, n)
	for i := range frames {
		samples := make([]int16, 480)
		for j := range samples {
			samples[j] = amp
		}
		frames[i] = audio.Frame{
			Samples:   samples,
			Timestamp: time.Duration(start+i) * 30 * time.Millisecond,
		}
	}
	return frames
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Engine.ModelPath = "/unused/model.bin"
	cfg.Partial.Disabled = true
	cfg.Notify.Enabled = false
	return cfg
}

func TestAppDeliversFinalToSink(t *testing.T) {
	t.Parallel()

	trans := &enginemock.Transcriber{}
	vadEng := &vadmock.Engine{
		ClassifyFunc: func(frame []int16) (bool, error) {
			return frame[0] > 1000, nil
		},
	}

	// 20 speech frames (600 ms) followed by enough silence to expire the
	// hangover.
	frames := append(speechFrames(20, 8000, 0), speechFrames(15, 0, 20)...)

	out := newRecordSink()
	a, err := New(testConfig(), &Providers{Transcriber: trans, VAD: vadEng},
		WithSink(out),
		WithStatusWriter(io.Discard),
		WithFrameSource(func(q *audio.FrameQueue) (frameSource, error) {
			return &scriptedSource{queue: q, frames: frames}, nil
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- a.Run(ctx) }()

	select {
	case text := <-out.ch:
		if text != "mock" {
			t.Errorf("final = %q, want mock", text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no final delivered within 5s")
	}

	cancel()
	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestToggleStopsAndRestartsSession(t *testing.T) {
	t.Parallel()

	trans := &enginemock.Transcriber{}
	vadEng := &vadmock.Engine{}

	var (
		mu    sync.Mutex
		opens int
	)

	a, err := New(testConfig(), &Providers{Transcriber: trans, VAD: vadEng},
		WithSink(newRecordSink()),
		WithStatusWriter(io.Discard),
		WithFrameSource(func(q *audio.FrameQueue) (frameSource, error) {
			mu.Lock()
			opens++
			mu.Unlock()
			return &scriptedSource{queue: q}, nil
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- a.Run(ctx) }()

	// Run starts the first session because the hotkey is disabled.
	waitFor(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.session != nil
	})

	a.Toggle() // stop
	a.mu.Lock()
	stopped := a.session == nil
	a.mu.Unlock()
	if !stopped {
		t.Fatal("session still active after Toggle")
	}

	a.Toggle() // restart
	waitFor(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.session != nil
	})

	mu.Lock()
	n := opens
	mu.Unlock()
	if n != 2 {
		t.Errorf("source opened %d times, want 2", n)
	}

	cancel()
	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// TestRunSurfacesCaptureFailureAsFatalEvent drives Run against a frame
// source that cannot be opened. The failure must flow through the event
// stream as a fatal Error and reach the status dispatcher, not just come
// back as Run's return value. Not parallel: it captures the default logger.
func TestRunSurfacesCaptureFailureAsFatalEvent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	a, err := New(testConfig(), &Providers{Transcriber: &enginemock.Transcriber{}, VAD: &vadmock.Engine{}},
		WithSink(newRecordSink()),
		WithStatusWriter(io.Discard),
		WithFrameSource(func(*audio.FrameQueue) (frameSource, error) {
			return nil, errors.New("device unplugged")
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	runErr := a.Run(context.Background())
	if runErr == nil {
		t.Fatal("Run() succeeded with a failing frame source")
	}
	if !strings.Contains(runErr.Error(), "device unplugged") {
		t.Errorf("Run() error = %v, want the capture failure", runErr)
	}

	// Run returns only after the dispatch loops drained, so the fatal
	// event's log line is already written.
	logged := buf.String()
	if !strings.Contains(logged, "capture pipeline failed") {
		t.Errorf("fatal event not dispatched, log: %s", logged)
	}
	if !strings.Contains(logged, "device unplugged") {
		t.Errorf("fatal event missing cause, log: %s", logged)
	}
}

// A pipeline that shuts down because its context was cancelled has not
// failed, even when the cancellation comes back wrapped.
func TestStopSessionIgnoresWrappedCancellation(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(), &Providers{Transcriber: &enginemock.Transcriber{}, VAD: &vadmock.Engine{}},
		WithSink(newRecordSink()),
		WithStatusWriter(io.Discard),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan struct{})
	close(done)
	a.session = &captureSession{
		cancel: func() {},
		done:   done,
		err:    fmt.Errorf("consume frames: %w", context.Canceled),
	}

	if err := a.stopActiveSession(); err != nil {
		t.Errorf("stopActiveSession() error = %v, want nil for wrapped cancellation", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}
