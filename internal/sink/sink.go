// Package sink delivers final transcripts to their configured destination.
//
// A sink receives each final transcript exactly once, in emission order.
// Sinks are invoked from a single dispatch goroutine, so implementations do
// not need to be safe for concurrent use.
package sink

import (
	"fmt"
	"io"

	"github.com/MrWong99/murmur/internal/config"
)

// Sink consumes final transcripts.
type Sink interface {
	// HandleFinal delivers one final transcript.
	HandleFinal(text string) error

	// Name identifies the sink in logs.
	Name() string
}

// New builds the sink selected by cfg. stdout writes to w.
func New(cfg config.OutputConfig, w io.Writer) (Sink, error) {
	switch cfg.Sink {
	case config.SinkStdout:
		return &stdoutSink{w: w, separator: cfg.Separator}, nil
	case config.SinkFile:
		return newFileSink(cfg.FileDir, cfg.Separator)
	case config.SinkClipboard:
		return &clipboardSink{}, nil
	case config.SinkPaste:
		return &pasteSink{}, nil
	default:
		return nil, fmt.Errorf("sink: unknown sink %q", cfg.Sink)
	}
}

// ---- stdout ----

type stdoutSink struct {
	w         io.Writer
	separator string
}

var _ Sink = (*stdoutSink)(nil)

func (s *stdoutSink) HandleFinal(text string) error {
	if _, err := io.WriteString(s.w, text+s.separator); err != nil {
		return fmt.Errorf("sink: write stdout: %w", err)
	}
	return nil
}

func (s *stdoutSink) Name() string { return "stdout" }

// ---- clipboard ----

type clipboardSink struct{}

var _ Sink = (*clipboardSink)(nil)

func (s *clipboardSink) HandleFinal(text string) error {
	if err := copyText(text); err != nil {
		return fmt.Errorf("sink: copy to clipboard: %w", err)
	}
	return nil
}

func (s *clipboardSink) Name() string { return "clipboard" }

// ---- paste ----

// pasteSink copies the transcript to the clipboard and then synthesizes a
// paste keystroke into the focused application.
type pasteSink struct{}

var _ Sink = (*pasteSink)(nil)

func (s *pasteSink) HandleFinal(text string) error {
	if err := copyText(text); err != nil {
		return fmt.Errorf("sink: copy to clipboard: %w", err)
	}
	if err := pasteKeystroke(); err != nil {
		return fmt.Errorf("sink: synthesize paste: %w", err)
	}
	return nil
}

func (s *pasteSink) Name() string { return "paste" }
