// Package segment turns a continuous stream of classified audio frames into
// discrete speech segments.
//
// The Segmenter is a state machine over {Silence, Active, Hangover} with two
// smoothing mechanisms on top of the per-frame classifier: a pre-roll buffer
// that seeds every new segment with the audio captured just before speech was
// confirmed (so onsets are not clipped), and a hangover window that tolerates
// brief pauses before closing a segment (so utterances are not split on every
// breath).
//
// Completed segments that carry less speech than the minimum viable duration
// are not emitted immediately. They are held for one further hangover window:
// if speech resumes within it, the held audio (including the silent gap) is
// merged into the resuming segment; otherwise it is silently discarded. This
// keeps solitary flickers (door slams, coughs) from producing spurious
// decodes without losing the onset of a genuinely resuming utterance.
//
// The Segmenter is not safe for concurrent use; the pipeline drives it from
// a single consumer goroutine.
package segment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrWong99/murmur/pkg/audio"
	"github.com/MrWong99/murmur/pkg/provider/vad"
)

// State is the segmenter's position in the speech/silence state machine.
type State int

const (
	// StateSilence: no active segment; frames feed the pre-roll buffer.
	StateSilence State = iota

	// StateActive: speech in progress; frames append to the current segment.
	StateActive

	// StateHangover: trailing silence; frames still append until the
	// hangover window expires or speech resumes.
	StateHangover
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateSilence:
		return "silence"
	case StateActive:
		return "active"
	case StateHangover:
		return "hangover"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Segment is one contiguous speech utterance: pre-roll, speech, and hangover
// tail. Exclusively owned by the Segmenter until returned from Process or
// Flush; afterwards exclusively owned by the caller.
type Segment struct {
	// ID uniquely identifies the segment across events and traces.
	ID string

	// Samples is the full mono PCM span of the segment.
	Samples []int16

	// Start and End bound the segment in stream time (first buffered frame
	// to end of last buffered frame).
	Start, End time.Duration

	// Speech is the accumulated duration of frames classified as speech.
	// Always less than End-Start because of pre-roll and hangover.
	Speech time.Duration
}

// Result is the per-frame segmenter output. Segment is non-nil only on the
// frame that completes a viable segment.
type Result struct {
	Segment   *Segment
	Active    bool
	LevelDBFS float64
}

// Config holds the segmenter's timing parameters. All durations are rounded
// down to whole frames.
type Config struct {
	// SampleRate in Hz. Default 16000.
	SampleRate int

	// FrameMs is the frame duration in milliseconds. Default 30.
	FrameMs int

	// HangoverMs is the trailing-silence duration tolerated before a segment
	// closes. Default 300.
	HangoverMs int

	// PrerollMs is the look-back audio prepended to every new segment.
	// Default 150.
	PrerollMs int

	// MinSegmentMs is the minimum speech duration for a segment to be
	// emitted rather than held for merge or discarded. Default 300.
	MinSegmentMs int
}

func (c *Config) applyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.FrameMs == 0 {
		c.FrameMs = 30
	}
	if c.HangoverMs == 0 {
		c.HangoverMs = 300
	}
	if c.PrerollMs == 0 {
		c.PrerollMs = 150
	}
	if c.MinSegmentMs == 0 {
		c.MinSegmentMs = 300
	}
}

// Segmenter classifies frames and assembles speech segments.
type Segmenter struct {
	classifier vad.Classifier
	frameDur   time.Duration

	hangoverFrames int
	prerollFrames  int
	minSpeech      time.Duration

	state State
	hang  int // consecutive silence frames while in StateHangover

	pre []audio.Frame // look-back buffer, capacity prerollFrames
	cur *Segment      // exists iff state is Active or Hangover

	// Sub-minimum candidate held for merge after its hangover expired, plus
	// the silent gap captured since. Both empty outside the merge window.
	pending   *Segment
	gap       []audio.Frame
	mergeLeft int
}

// New creates a Segmenter that consults cls for the per-frame speech
// decision. cls must accept frames of cfg.FrameMs at cfg.SampleRate.
func New(cls vad.Classifier, cfg Config) (*Segmenter, error) {
	if cls == nil {
		return nil, fmt.Errorf("segment: classifier must not be nil")
	}
	cfg.applyDefaults()
	if cfg.SampleRate <= 0 || cfg.FrameMs <= 0 {
		return nil, fmt.Errorf("segment: invalid config: sample_rate=%d frame_ms=%d", cfg.SampleRate, cfg.FrameMs)
	}
	hangover := cfg.HangoverMs / cfg.FrameMs
	if hangover < 1 {
		hangover = 1
	}
	return &Segmenter{
		classifier:     cls,
		frameDur:       time.Duration(cfg.FrameMs) * time.Millisecond,
		hangoverFrames: hangover,
		prerollFrames:  cfg.PrerollMs / cfg.FrameMs,
		minSpeech:      time.Duration(cfg.MinSegmentMs) * time.Millisecond,
	}, nil
}

// State returns the current state. The pipeline's partial loop uses this to
// run only while the stream is not silent.
func (s *Segmenter) State() State { return s.state }

// Process classifies one frame and advances the state machine. The returned
// Result carries the frame's level in dBFS, whether a segment is in
// progress, and, only on the frame that completes a viable segment, the
// finished Segment.
//
// A classifier error is treated as silence for that frame: failing toward
// not-speech bounds segment growth under a misbehaving backend.
func (s *Segmenter) Process(f audio.Frame) Result {
	speech, err := s.classifier.Classify(f.Samples)
	if err != nil {
		speech = false
	}
	level := audio.RMSDBFS(f.Samples)

	var completed *Segment

	switch s.state {
	case StateSilence:
		if speech {
			s.begin(f)
		} else {
			s.pushPreroll(f)
			s.tickMergeWindow(f)
		}

	case StateActive:
		s.append(f, speech)
		if !speech {
			s.state = StateHangover
			s.hang = 1
			completed = s.expireHangover()
		}

	case StateHangover:
		s.append(f, speech)
		if speech {
			s.state = StateActive
			s.hang = 0
		} else {
			s.hang++
			completed = s.expireHangover()
		}
	}

	return Result{Segment: completed, Active: s.state != StateSilence, LevelDBFS: level}
}

// Flush closes any in-progress segment and returns it if viable. Called on
// shutdown so speech in flight when the stream stops is not lost. A held
// sub-minimum candidate is discarded.
func (s *Segmenter) Flush() *Segment {
	s.pending = nil
	s.gap = nil
	s.mergeLeft = 0

	cur := s.cur
	s.cur = nil
	s.state = StateSilence
	s.hang = 0
	s.pre = s.pre[:0]

	if cur == nil || cur.Speech < s.minSpeech {
		return nil
	}
	return cur
}

// begin opens a new segment seeded with the pre-roll buffer, or resumes the
// held candidate (merging the silent gap) when speech returns within the
// merge window.
func (s *Segmenter) begin(f audio.Frame) {
	if s.pending != nil {
		s.cur = s.pending
		s.pending = nil
		for _, g := range s.gap {
			s.cur.Samples = append(s.cur.Samples, g.Samples...)
		}
		if n := len(s.gap); n > 0 {
			s.cur.End = s.gap[n-1].Timestamp + s.frameDur
		}
		s.gap = nil
		s.mergeLeft = 0
	} else {
		seg := &Segment{ID: uuid.NewString(), Start: f.Timestamp}
		if len(s.pre) > 0 {
			seg.Start = s.pre[0].Timestamp
			for _, p := range s.pre {
				seg.Samples = append(seg.Samples, p.Samples...)
			}
		}
		s.cur = seg
	}
	s.pre = s.pre[:0]
	s.state = StateActive
	s.hang = 0
	s.append(f, true)
}

// append adds a frame to the current segment.
func (s *Segmenter) append(f audio.Frame, speech bool) {
	s.cur.Samples = append(s.cur.Samples, f.Samples...)
	s.cur.End = f.Timestamp + s.frameDur
	if speech {
		s.cur.Speech += s.frameDur
	}
}

// expireHangover finalizes the current segment once the hangover window is
// spent. Viable segments are returned for decoding; sub-minimum ones are
// held for one merge window.
func (s *Segmenter) expireHangover() *Segment {
	if s.hang < s.hangoverFrames {
		return nil
	}
	seg := s.cur
	s.cur = nil
	s.state = StateSilence
	s.hang = 0
	s.pre = s.pre[:0]

	if seg.Speech >= s.minSpeech {
		return seg
	}
	s.pending = seg
	s.gap = nil
	s.mergeLeft = s.hangoverFrames
	return nil
}

// tickMergeWindow records a silent frame against the merge window of a held
// candidate, discarding the candidate when the window expires.
func (s *Segmenter) tickMergeWindow(f audio.Frame) {
	if s.pending == nil {
		return
	}
	s.gap = append(s.gap, f)
	s.mergeLeft--
	if s.mergeLeft <= 0 {
		s.pending = nil
		s.gap = nil
	}
}

func (s *Segmenter) pushPreroll(f audio.Frame) {
	if s.prerollFrames == 0 {
		return
	}
	if len(s.pre) == s.prerollFrames {
		copy(s.pre, s.pre[1:])
		s.pre = s.pre[:len(s.pre)-1]
	}
	s.pre = append(s.pre, f)
}
