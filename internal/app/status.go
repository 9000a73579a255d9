package app

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// statusLine renders a single rewritable terminal line with the input level
// and the latest partial preview. It never emits newlines, so finals printed
// to stdout stay intact.
type statusLine struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

func newStatusLine(w io.Writer) *statusLine {
	return &statusLine{w: w}
}

// Partial shows an in-progress transcript preview.
func (s *statusLine) Partial(text string) {
	const maxPreview = 72
	if len(text) > maxPreview {
		text = "..." + text[len(text)-maxPreview:]
	}
	s.render("~ " + text)
}

// Level shows the input level meter.
func (s *statusLine) Level(dbfs float64, active bool, dropped uint64) {
	marker := " "
	if active {
		marker = "*"
	}
	line := fmt.Sprintf("[%s] %6.1f dBFS %s", marker, dbfs, levelBar(dbfs))
	if dropped > 0 {
		line += fmt.Sprintf(" dropped=%d", dropped)
	}
	s.render(line)
}

// Clear erases the status line.
func (s *statusLine) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

func (s *statusLine) render(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := ""
	if n := s.width - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(s.w, "\r%s%s", line, pad)
	s.width = len(line)
}

// levelBar maps a dBFS level onto a 20-cell meter spanning [-60, 0].
func levelBar(dbfs float64) string {
	const cells = 20
	filled := int((dbfs + 60) / 60 * cells)
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}
	return "|" + strings.Repeat("#", filled) + strings.Repeat("-", cells-filled) + "|"
}
