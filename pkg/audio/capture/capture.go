// Package capture produces fixed-size audio frames from a live input device
// via PortAudio.
//
// The device callback is kept minimal: it copies the incoming block into a
// fresh Frame and performs one non-blocking push into the frame queue.
// Nothing in the callback blocks, waits on a lock held by decode work, or
// lets a failure escape into the PortAudio callback context. A rejected
// push is counted by the queue and the frame is gone.
//
// PortAudio is a process-wide library: call Init once before opening any
// Source and Terminate once after the last Source is closed.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/MrWong99/murmur/pkg/audio"
)

// Init initialises the PortAudio library. Must be called once per process
// before Open.
func Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("capture: initialize portaudio: %w", err)
	}
	return nil
}

// Terminate releases the PortAudio library.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("capture: terminate portaudio: %w", err)
	}
	return nil
}

// Config describes the capture format and device selection.
type Config struct {
	// SampleRate in Hz. Default 16000.
	SampleRate int

	// FrameMs is the frame duration in milliseconds; it becomes the
	// PortAudio block size. Default 30.
	FrameMs int

	// Device selects the input device by name. Empty or "default" uses the
	// system default input device.
	Device string
}

// Source is an open input stream feeding a FrameQueue.
type Source struct {
	stream   *portaudio.Stream
	queue    *audio.FrameQueue
	frameDur time.Duration
	produced uint64 // frames delivered by the callback; written only there
	running  bool
}

// Open selects the input device, opens a mono int16 stream at the configured
// block size, and prepares the callback. The stream does not run until Start.
func Open(cfg Config, q *audio.FrameQueue) (*Source, error) {
	if q == nil {
		return nil, errors.New("capture: frame queue must not be nil")
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FrameMs == 0 {
		cfg.FrameMs = 30
	}

	dev, err := selectDevice(cfg.Device)
	if err != nil {
		return nil, err
	}

	s := &Source{
		queue:    q,
		frameDur: time.Duration(cfg.FrameMs) * time.Millisecond,
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: audio.FrameSamples(cfg.SampleRate, cfg.FrameMs),
	}

	stream, err := portaudio.OpenStream(params, s.callback)
	if err != nil {
		return nil, fmt.Errorf("capture: open stream on %q: %w", dev.Name, err)
	}
	s.stream = stream
	return s, nil
}

// callback runs in the PortAudio real-time context. It copies the block and
// attempts a single non-blocking enqueue; overflow drops are counted by the
// queue and surfaced through the status pipeline.
func (s *Source) callback(in []int16) {
	if len(in) == 0 {
		return
	}
	samples := make([]int16, len(in))
	copy(samples, in)
	ts := time.Duration(s.produced) * s.frameDur
	s.produced++
	s.queue.TryPush(audio.Frame{Samples: samples, Timestamp: ts})
}

// Start begins capturing. Frames arrive on the queue until Stop.
func (s *Source) Start() error {
	if s.running {
		return nil
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("capture: start stream: %w", err)
	}
	s.running = true
	return nil
}

// Stop halts capturing without closing the stream. New frames are refused at
// the source boundary; already-queued frames remain poppable.
func (s *Source) Stop() error {
	if !s.running {
		return nil
	}
	s.running = false
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("capture: stop stream: %w", err)
	}
	return nil
}

// Close stops and releases the stream.
func (s *Source) Close() error {
	var errs []error
	if err := s.Stop(); err != nil {
		errs = append(errs, err)
	}
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("capture: close stream: %w", err))
		}
		s.stream = nil
	}
	return errors.Join(errs...)
}

// Produced returns the number of frames the callback has delivered. Not
// synchronised with the callback; intended for post-Stop accounting.
func (s *Source) Produced() uint64 { return s.produced }

func selectDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" || name == "default" {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("capture: no default input device: %w", err)
		}
		return dev, nil
	}
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("capture: enumerate devices: %w", err)
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 && d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("capture: input device %q not found", name)
}
