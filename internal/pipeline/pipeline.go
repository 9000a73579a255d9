// Package pipeline coordinates the speech capture core: it consumes frames
// from the capture queue, drives the voice-activity segmenter, and runs the
// two transcription cadences (a ~1 Hz rolling-window partial loop and a
// per-segment final decoder) against one shared engine.
//
// Three goroutines cooperate:
//
//   - The consume loop pops frames, feeds the segmenter and rolling window,
//     and emits Status events. Completed segments are queued for final
//     decoding; the rolling window is reset the instant a segment finalizes
//     so no stale cross-segment text can appear as a partial.
//   - The partial loop ticks on a fixed cadence while voice is active,
//     try-acquires the decode gate, and decodes a snapshot of the rolling
//     window. Missed cycles are skipped, never queued.
//   - The final loop decodes completed segments in completion order under
//     final-priority gate acquisition and emits exactly one Final event per
//     segment, including empty and failed decodes.
//
// Events are emitted while the gate is still held, which pins the ordering
// invariant: every partial decoded from within a segment's span reaches the
// emitter before that segment's final.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/murmur/internal/event"
	"github.com/MrWong99/murmur/internal/observe"
	"github.com/MrWong99/murmur/pkg/audio"
	"github.com/MrWong99/murmur/pkg/provider/engine"
	"github.com/MrWong99/murmur/pkg/segment"
)

const (
	// popTimeout bounds each consumer wait so the loop notices cancellation.
	popTimeout = 200 * time.Millisecond

	// segmentBacklog bounds completed segments awaiting final decode.
	segmentBacklog = 8

	// finalFlushTimeout bounds final decodes issued after shutdown began.
	finalFlushTimeout = 30 * time.Second
)

// Config holds the pipeline's coordination parameters.
type Config struct {
	// SampleRate in Hz. Default 16000.
	SampleRate int

	// FrameMs is the frame duration in milliseconds, used to size the
	// rolling window in frames. Default 30.
	FrameMs int

	// Window is the rolling-window span decoded by partial cycles.
	// Default 5 s.
	Window time.Duration

	// Cadence is the partial decode interval. Default 1 s.
	Cadence time.Duration

	// MinPartial is the minimum buffered audio before a partial decode is
	// worthwhile. Default 1200 ms.
	MinPartial time.Duration

	// DisablePartials turns the partial loop off entirely; only finals are
	// produced.
	DisablePartials bool
}

func (c *Config) applyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.FrameMs == 0 {
		c.FrameMs = 30
	}
	if c.Window == 0 {
		c.Window = 5 * time.Second
	}
	if c.Cadence == 0 {
		c.Cadence = time.Second
	}
	if c.MinPartial == 0 {
		c.MinPartial = 1200 * time.Millisecond
	}
}

// pendingFinal is one completed segment queued for authoritative decoding.
type pendingFinal struct {
	seg         *segment.Segment
	completedAt time.Time
}

// Pipeline wires the queue, segmenter, engine, and emitter together.
// Create with New, drive with Run.
type Pipeline struct {
	cfg     Config
	queue   *audio.FrameQueue
	window  *audio.RollingWindow
	seg     *segment.Segmenter
	trans   engine.Transcriber
	emitter *event.Emitter
	metrics *observe.Metrics

	gate  *Gate
	segCh chan pendingFinal

	// written by the consume loop, read by the partial loop
	activeFlag atomic.Bool

	lastDrops  uint64
	prevActive bool
}

// New creates a Pipeline. window capacity is derived from cfg.Window; met
// may be nil to use observe.DefaultMetrics.
func New(cfg Config, queue *audio.FrameQueue, seg *segment.Segmenter, trans engine.Transcriber, emitter *event.Emitter, met *observe.Metrics) *Pipeline {
	cfg.applyDefaults()
	if met == nil {
		met = observe.DefaultMetrics()
	}
	frames := int(cfg.Window / (time.Duration(cfg.FrameMs) * time.Millisecond))
	if frames < 1 {
		frames = 1
	}
	return &Pipeline{
		cfg:     cfg,
		queue:   queue,
		window:  audio.NewRollingWindow(frames),
		seg:     seg,
		trans:   trans,
		emitter: emitter,
		metrics: met,
		gate:    NewGate(),
		segCh:   make(chan pendingFinal, segmentBacklog),
	}
}

// Run drives the pipeline until ctx is cancelled. Shutdown is cooperative:
// in-flight decodes complete, the segmenter is flushed so speech in progress
// is not lost, and queued finals are drained before Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.consumeLoop(gctx) })
	g.Go(func() error { return p.finalLoop(gctx) })
	if !p.cfg.DisablePartials {
		g.Go(func() error { return p.partialLoop(gctx) })
	}

	return g.Wait()
}

// consumeLoop pops frames in capture order, advances the segmenter, and
// forwards completed segments. It owns the rolling window's write side.
func (p *Pipeline) consumeLoop(ctx context.Context) error {
	defer close(p.segCh)

	for {
		if ctx.Err() != nil {
			if seg := p.seg.Flush(); seg != nil {
				p.segCh <- pendingFinal{seg: seg, completedAt: time.Now()}
			}
			return nil
		}

		f, ok := p.queue.Pop(popTimeout)
		if !ok {
			continue
		}

		p.window.Append(f)
		res := p.seg.Process(f)
		p.activeFlag.Store(res.Active)

		if res.Active != p.prevActive {
			if res.Active {
				p.metrics.ActiveSegments.Add(ctx, 1)
			} else {
				p.metrics.ActiveSegments.Add(ctx, -1)
			}
			p.prevActive = res.Active
		}

		drops := p.queue.Dropped()
		if drops != p.lastDrops {
			p.metrics.FramesDropped.Add(ctx, int64(drops-p.lastDrops))
			p.lastDrops = drops
		}

		p.emitter.Emit(event.Event{
			Kind:          event.KindStatus,
			LevelDBFS:     res.LevelDBFS,
			VADActive:     res.Active,
			DroppedFrames: drops,
		})

		if res.Segment != nil {
			// Reset before the next partial cycle can snapshot, so no
			// stale cross-segment audio is ever decoded as a partial.
			p.window.Reset()
			p.segCh <- pendingFinal{seg: res.Segment, completedAt: time.Now()}
		}
	}
}

// finalLoop decodes completed segments in completion order. It exits when
// the consume loop closes the segment channel.
func (p *Pipeline) finalLoop(ctx context.Context) error {
	for pf := range p.segCh {
		p.decodeFinal(ctx, pf)
	}
	return nil
}

// decodeFinal runs one authoritative decode and emits exactly one Final
// event, whatever the outcome. The event is emitted before the gate is
// released so no later partial can overtake it.
func (p *Pipeline) decodeFinal(ctx context.Context, pf pendingFinal) {
	p.gate.AcquireFinal()
	defer p.gate.Release()

	// A decode queued before shutdown still runs to completion on a
	// detached context; cancellation must not lose a segment's transcript.
	dctx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(context.Background(), finalFlushTimeout)
		defer cancel()
	}

	dctx, span := observe.StartSpan(dctx, "pipeline.decode_final", trace.WithAttributes(
		observe.Attr("segment.id", pf.seg.ID),
	))
	defer span.End()

	start := time.Now()
	res, err := p.trans.Decode(dctx, audio.Int16ToFloat32(pf.seg.Samples), true)
	elapsed := time.Since(start)
	p.metrics.FinalDecodeDuration.Record(dctx, elapsed.Seconds())

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case res.Text == "":
		status = "empty"
	}
	p.metrics.SegmentsFinalized.Add(dctx, 1, metric.WithAttributes(observe.Attr("status", status)))

	p.emitter.Emit(event.Event{
		Kind:      event.KindFinal,
		Text:      res.Text,
		SegmentID: pf.seg.ID,
		Latency:   time.Since(pf.completedAt),
		Err:       err,
	})

	observe.Logger(dctx).Debug("final decode",
		"segment", pf.seg.ID,
		"status", status,
		"audio", pf.seg.End-pf.seg.Start,
		"decode", elapsed,
	)
}

// partialLoop ticks on the configured cadence. A cycle that finds the gate
// busy, the stream silent, or too little buffered audio is skipped; partials
// are best-effort and lossy by contract.
func (p *Pipeline) partialLoop(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.partialCycle(ctx)
		}
	}
}

func (p *Pipeline) partialCycle(ctx context.Context) {
	if !p.activeFlag.Load() {
		return
	}
	if p.window.Duration(p.cfg.SampleRate) < p.cfg.MinPartial {
		return
	}
	if !p.gate.TryAcquirePartial() {
		p.metrics.PartialCycles.Add(ctx, 1, metric.WithAttributes(observe.Attr("status", "skipped")))
		return
	}
	defer p.gate.Release()

	// Snapshot under the gate: if a final reset the window since the checks
	// above, the snapshot comes back empty and the cycle is a no-op.
	snap := p.window.Snapshot()
	if time.Duration(len(snap))*time.Second/time.Duration(p.cfg.SampleRate) < p.cfg.MinPartial {
		return
	}

	start := time.Now()
	res, err := p.trans.Decode(ctx, audio.Int16ToFloat32(snap), false)
	p.metrics.PartialDecodeDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		p.metrics.PartialCycles.Add(ctx, 1, metric.WithAttributes(observe.Attr("status", "error")))
		p.emitter.Emit(event.Event{Kind: event.KindError, Err: err})
		return
	}
	p.metrics.PartialCycles.Add(ctx, 1, metric.WithAttributes(observe.Attr("status", "ok")))

	if res.Text != "" {
		p.emitter.Emit(event.Event{
			Kind:       event.KindPartial,
			Text:       res.Text,
			Confidence: res.Confidence,
		})
	}
}
