// Package whispercpp provides a Transcriber backed by the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The model is loaded once at construction and shared by every decode. Each
// Decode creates a fresh whisper context (contexts are not reusable across
// inferences), which is cheap relative to inference itself. The provider
// performs no locking of its own: the pipeline's decode gate guarantees a
// single decode in flight.
package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/MrWong99/murmur/pkg/provider/engine"
)

const (
	defaultLanguage   = "en"
	defaultSampleRate = 16000
)

// Compile-time assertion that Transcriber satisfies engine.Transcriber.
var _ engine.Transcriber = (*Transcriber)(nil)

// Option is a functional option for configuring a Transcriber.
type Option func(*Transcriber)

// WithLanguage sets the language code passed to whisper.cpp (e.g., "en",
// "de"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(t *Transcriber) { t.language = lang }
}

// WithSampleRate sets the sample rate the PCM input is expected in. Whisper
// models are trained on 16 kHz audio; changing this only adjusts the Audio
// duration accounting. Defaults to 16000.
func WithSampleRate(rate int) Option {
	return func(t *Transcriber) { t.sampleRate = rate }
}

// WithThreads sets the number of inference threads. Zero leaves the
// whisper.cpp default in place.
func WithThreads(n int) Option {
	return func(t *Transcriber) { t.threads = n }
}

// Transcriber implements engine.Transcriber using a locally loaded
// whisper.cpp model.
type Transcriber struct {
	model      whisperlib.Model
	language   string
	sampleRate int
	threads    int
}

// New loads the whisper.cpp model at modelPath. The caller must call Close
// when the transcriber is no longer needed.
func New(modelPath string, opts ...Option) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("whispercpp: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whispercpp: load model %q: %w", modelPath, err)
	}
	t := &Transcriber{
		model:      model,
		language:   defaultLanguage,
		sampleRate: defaultSampleRate,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Close releases the whisper model.
func (t *Transcriber) Close() error {
	if t.model != nil {
		return t.model.Close()
	}
	return nil
}

// Decode runs whisper.cpp inference over the given normalised mono samples.
// The final flag is accepted for interface compatibility; whisper.cpp has no
// separate fast path, so both cadences run the same inference.
func (t *Transcriber) Decode(ctx context.Context, samples []float32, _ bool) (engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return engine.Result{}, fmt.Errorf("whispercpp: %w", err)
	}
	if len(samples) == 0 {
		return engine.Result{}, errors.New("whispercpp: empty audio buffer")
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return engine.Result{}, fmt.Errorf("whispercpp: create context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		slog.Warn("whispercpp: failed to set language, using default", "language", t.language, "error", err)
	}
	if t.threads > 0 {
		wctx.SetThreads(uint(t.threads))
	}

	start := time.Now()
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return engine.Result{}, fmt.Errorf("whispercpp: process audio: %w", err)
	}

	var parts []string
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return engine.Result{}, fmt.Errorf("whispercpp: read segment: %w", err)
		}
		text := strings.TrimSpace(seg.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}

	return engine.Result{
		Text:   strings.Join(parts, " "),
		Audio:  time.Duration(len(samples)) * time.Second / time.Duration(t.sampleRate),
		Decode: time.Since(start),
	}, nil
}
