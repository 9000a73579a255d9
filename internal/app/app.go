// Package app wires all murmur subsystems into a running application.
//
// The App struct owns the full lifecycle: New connects the configured
// providers, Run executes the capture and dispatch loops until the context
// is cancelled.
//
// For testing, inject doubles via functional options (WithSink,
// WithFrameSource, etc.). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/murmur/internal/config"
	"github.com/MrWong99/murmur/internal/event"
	"github.com/MrWong99/murmur/internal/hotkey"
	"github.com/MrWong99/murmur/internal/notify"
	"github.com/MrWong99/murmur/internal/observe"
	"github.com/MrWong99/murmur/internal/pipeline"
	"github.com/MrWong99/murmur/internal/sink"
	"github.com/MrWong99/murmur/internal/vocab"
	"github.com/MrWong99/murmur/pkg/audio"
	"github.com/MrWong99/murmur/pkg/audio/capture"
	"github.com/MrWong99/murmur/pkg/provider/engine"
	"github.com/MrWong99/murmur/pkg/provider/vad"
	"github.com/MrWong99/murmur/pkg/segment"
)

// Listener buffer sizes. Finals must not be dropped under normal operation;
// status updates are disposable.
const (
	sinkListenerBuffer   = 64
	statusListenerBuffer = 16
)

// Providers holds the capability implementations the app runs on. Both
// fields are required.
type Providers struct {
	Transcriber engine.Transcriber
	VAD         vad.Engine
}

// frameSource abstracts the microphone so tests can drive the queue
// directly. *capture.Source satisfies it.
type frameSource interface {
	Start() error
	Stop() error
	Close() error
}

// openSourceFunc opens a frame source feeding q.
type openSourceFunc func(q *audio.FrameQueue) (frameSource, error)

// App owns the capture session lifecycle and the event dispatch loops.
type App struct {
	cfg       *config.Config
	providers *Providers

	emitter   *event.Emitter
	out       sink.Sink
	corrector *vocab.Corrector
	notifier  *notify.Notifier
	status    *statusLine
	open      openSourceFunc

	// mu guards session across hotkey toggles.
	mu      sync.Mutex
	session *captureSession
	runCtx  context.Context

	closeOnce sync.Once
}

// captureSession is one listening interval: a frame source, a segmenter and
// a pipeline run, torn down together.
type captureSession struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithSink injects a transcript sink instead of building one from config.
func WithSink(s sink.Sink) Option {
	return func(a *App) { a.out = s }
}

// WithFrameSource injects a frame source opener instead of the microphone.
func WithFrameSource(open openSourceFunc) Option {
	return func(a *App) { a.open = open }
}

// WithStatusWriter redirects the status line (default: stderr).
func WithStatusWriter(w io.Writer) Option {
	return func(a *App) { a.status = newStatusLine(w) }
}

// WithNotifier injects a notifier instead of building one from config.
func WithNotifier(n *notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// New wires an App from cfg and providers.
func New(cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.Transcriber == nil || providers.VAD == nil {
		return nil, fmt.Errorf("app: transcriber and vad providers are required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
		emitter:   event.NewEmitter(),
	}
	for _, o := range opts {
		o(a)
	}

	if a.out == nil {
		s, err := sink.New(cfg.Output, os.Stdout)
		if err != nil {
			return nil, fmt.Errorf("app: build sink: %w", err)
		}
		a.out = s
	}
	if a.status == nil {
		a.status = newStatusLine(os.Stderr)
	}
	if a.notifier == nil {
		a.notifier = notify.New(cfg.Notify.Enabled)
	}
	a.corrector = vocab.New(cfg.Output.Vocabulary)
	if a.open == nil {
		a.open = func(q *audio.FrameQueue) (frameSource, error) {
			return capture.Open(capture.Config{
				SampleRate: cfg.Audio.SampleRate,
				FrameMs:    cfg.Audio.FrameMs,
				Device:     cfg.Audio.Device,
			}, q)
		}
	}

	return a, nil
}

// Run starts the dispatch loops and the first capture session (or waits for
// the hotkey), then blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.runCtx = ctx

	finals := a.emitter.Register("sink", sinkListenerBuffer)
	status := a.emitter.Register("status", statusListenerBuffer)

	var g errgroup.Group
	g.Go(func() error { return a.dispatchFinals(finals) })
	g.Go(func() error { return a.dispatchStatus(status) })

	var hk *hotkey.Handler
	if a.cfg.Hotkey.Enabled {
		hk = hotkey.New(a.Toggle)
		if err := hk.Register(a.cfg.Hotkey); err != nil {
			a.closeEmitter()
			_ = g.Wait()
			return fmt.Errorf("app: %w", err)
		}
		slog.Info("hotkey registered, press to start listening",
			"key", a.cfg.Hotkey.Key, "modifiers", a.cfg.Hotkey.Modifiers)
	} else {
		if err := a.startSession(); err != nil {
			a.closeEmitter()
			_ = g.Wait()
			return err
		}
	}

	<-ctx.Done()

	if hk != nil {
		if err := hk.Unregister(); err != nil {
			slog.Warn("hotkey unregister failed", "err", err)
		}
	}

	sessionErr := a.stopActiveSession()

	// Closing the emitter ends both dispatch loops.
	a.closeEmitter()
	if err := g.Wait(); err != nil {
		return err
	}
	a.status.Clear()
	return sessionErr
}

func (a *App) closeEmitter() {
	a.closeOnce.Do(func() {
		met := observe.DefaultMetrics()
		for _, name := range []string{"sink", "status"} {
			if n := a.emitter.Dropped(name); n > 0 {
				met.EventsDropped.Add(context.Background(), int64(n),
					metric.WithAttributes(observe.Attr("listener", name)))
			}
		}
		a.emitter.Close()
	})
}

// Toggle starts listening if idle and stops it if active. Safe to call from
// the hotkey goroutine. Start failures reach the user through the fatal
// event startSession emits; stop failures are logged and notified here.
func (a *App) Toggle() {
	a.mu.Lock()
	active := a.session != nil
	a.mu.Unlock()

	if active {
		if err := a.stopActiveSession(); err != nil {
			slog.Error("session ended with error", "err", err)
			a.notifier.Error(err.Error())
		}
		return
	}
	if err := a.startSession(); err != nil {
		slog.Error("failed to start listening", "err", err)
	}
}

// emitFatal puts an unrecoverable capture failure on the event stream so
// listeners see the terminal error itself, not just its log line.
func (a *App) emitFatal(err error) {
	a.emitter.Emit(event.Event{Kind: event.KindError, Err: err, Fatal: true})
}

// startSession builds a fresh queue, segmenter and pipeline run. Every
// failure here is terminal for the session and is emitted as a fatal Error
// event before being returned.
func (a *App) startSession() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return nil
	}

	queue := audio.NewFrameQueue(a.cfg.Audio.QueueFrames)

	cls, err := a.providers.VAD.NewSession(vad.Config{
		SampleRate:     a.cfg.Audio.SampleRate,
		FrameSizeMs:    a.cfg.Audio.FrameMs,
		Aggressiveness: a.cfg.VAD.Aggressiveness,
	})
	if err != nil {
		err = fmt.Errorf("app: create vad session: %w", err)
		a.emitFatal(err)
		return err
	}

	seg, err := segment.New(cls, segment.Config{
		SampleRate:   a.cfg.Audio.SampleRate,
		FrameMs:      a.cfg.Audio.FrameMs,
		HangoverMs:   a.cfg.VAD.HangoverMs,
		PrerollMs:    a.cfg.VAD.PrerollMs,
		MinSegmentMs: a.cfg.VAD.MinSegmentMs,
	})
	if err != nil {
		cls.Close()
		err = fmt.Errorf("app: create segmenter: %w", err)
		a.emitFatal(err)
		return err
	}

	src, err := a.open(queue)
	if err != nil {
		cls.Close()
		err = fmt.Errorf("app: open audio source: %w", err)
		a.emitFatal(err)
		return err
	}

	pl := pipeline.New(pipeline.Config{
		SampleRate:      a.cfg.Audio.SampleRate,
		FrameMs:         a.cfg.Audio.FrameMs,
		Window:          time.Duration(a.cfg.Partial.WindowMs) * time.Millisecond,
		Cadence:         time.Duration(a.cfg.Partial.CadenceMs) * time.Millisecond,
		MinPartial:      time.Duration(a.cfg.Partial.MinAudioMs) * time.Millisecond,
		DisablePartials: a.cfg.Partial.Disabled,
	}, queue, seg, a.providers.Transcriber, a.emitter, nil)

	if err := src.Start(); err != nil {
		cls.Close()
		_ = src.Close()
		err = fmt.Errorf("app: start audio source: %w", err)
		a.emitFatal(err)
		return err
	}

	ctx, cancel := context.WithCancel(a.runCtx)
	sess := &captureSession{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sess.done)
		sess.err = pl.Run(ctx)
		if err := src.Stop(); err != nil {
			slog.Warn("audio source stop failed", "err", err)
		}
		if err := src.Close(); err != nil {
			slog.Warn("audio source close failed", "err", err)
		}
		cls.Close()
	}()

	a.session = sess
	slog.Info("listening started", "device", a.cfg.Audio.Device)
	a.notifier.Listening()
	return nil
}

// stopActiveSession cancels the running session, waits for the pipeline to
// flush, and returns its error.
func (a *App) stopActiveSession() error {
	a.mu.Lock()
	sess := a.session
	a.session = nil
	a.mu.Unlock()

	if sess == nil {
		return nil
	}

	sess.cancel()
	<-sess.done
	a.status.Clear()
	slog.Info("listening stopped")
	a.notifier.Paused()

	if sess.err != nil && !errors.Is(sess.err, context.Canceled) {
		return sess.err
	}
	return nil
}

// dispatchFinals forwards final transcripts to the configured sink, in
// emission order.
func (a *App) dispatchFinals(ch <-chan event.Event) error {
	for ev := range ch {
		if ev.Kind != event.KindFinal {
			continue
		}
		if ev.Err != nil {
			slog.Warn("segment decode failed", "segment_id", ev.SegmentID, "err", ev.Err)
			a.notifier.Error("transcription failed")
			continue
		}
		if ev.Text == "" {
			continue
		}
		text := ev.Text
		if !a.corrector.Empty() {
			text = a.corrector.Correct(text)
		}
		a.status.Clear()
		if err := a.out.HandleFinal(text); err != nil {
			slog.Error("sink delivery failed", "sink", a.out.Name(), "err", err)
		}
		slog.Debug("final delivered",
			"sink", a.out.Name(),
			"segment_id", ev.SegmentID,
			"chars", len(text),
			"latency", ev.Latency)
	}
	return nil
}

// dispatchStatus renders partial previews and level updates on the status
// line.
func (a *App) dispatchStatus(ch <-chan event.Event) error {
	for ev := range ch {
		switch ev.Kind {
		case event.KindPartial:
			a.status.Partial(ev.Text)
		case event.KindStatus:
			a.status.Level(ev.LevelDBFS, ev.VADActive, ev.DroppedFrames)
		case event.KindError:
			if ev.Fatal {
				a.status.Clear()
				slog.Error("capture pipeline failed", "err", ev.Err)
				a.notifier.Error(ev.Err.Error())
			} else {
				slog.Warn("decode error", "err", ev.Err)
			}
		}
	}
	return nil
}
