package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

const dictationFile = "murmur.txt"

// fileSink appends each final transcript to a single dictation file inside
// the configured directory.
type fileSink struct {
	path      string
	separator string
}

var _ Sink = (*fileSink)(nil)

func newFileSink(dir, separator string) (*fileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create output dir: %w", err)
	}
	return &fileSink{
		path:      filepath.Join(dir, dictationFile),
		separator: separator,
	}, nil
}

func (s *fileSink) HandleFinal(text string) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("sink: open %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text + s.separator); err != nil {
		return fmt.Errorf("sink: append %s: %w", s.path, err)
	}
	return nil
}

func (s *fileSink) Name() string { return "file" }
