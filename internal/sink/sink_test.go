package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/murmur/internal/config"
)

func TestStdoutSink(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	s, err := New(config.OutputConfig{Sink: config.SinkStdout, Separator: "\n"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Name() != "stdout" {
		t.Errorf("Name() = %q, want stdout", s.Name())
	}

	if err := s.HandleFinal("hello world"); err != nil {
		t.Fatalf("HandleFinal() error = %v", err)
	}
	if err := s.HandleFinal("second line"); err != nil {
		t.Fatalf("HandleFinal() error = %v", err)
	}

	want := "hello world\nsecond line\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestFileSinkAppends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := New(config.OutputConfig{Sink: config.SinkFile, FileDir: dir, Separator: " "}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.HandleFinal("first"); err != nil {
		t.Fatalf("HandleFinal() error = %v", err)
	}
	if err := s.HandleFinal("second"); err != nil {
		t.Fatalf("HandleFinal() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, dictationFile))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "first second " {
		t.Errorf("file contents = %q, want %q", got, "first second ")
	}
}

func TestFileSinkCreatesDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := New(config.OutputConfig{Sink: config.SinkFile, FileDir: dir, Separator: "\n"}, nil); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
}

func TestNewUnknownSink(t *testing.T) {
	t.Parallel()

	if _, err := New(config.OutputConfig{Sink: "printer"}, nil); err == nil {
		t.Fatal("New() error = nil, want unknown-sink error")
	}
}
