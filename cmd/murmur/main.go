// Command murmur is a local push-to-talk dictation tool: it captures
// microphone audio, segments speech with a voice-activity detector, and
// transcribes it locally with whisper.cpp.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/murmur/internal/app"
	"github.com/MrWong99/murmur/internal/config"
	"github.com/MrWong99/murmur/internal/health"
	"github.com/MrWong99/murmur/internal/hotkey"
	"github.com/MrWong99/murmur/internal/observe"
	"github.com/MrWong99/murmur/pkg/audio"
	"github.com/MrWong99/murmur/pkg/audio/capture"
	"github.com/MrWong99/murmur/pkg/provider/engine/whispercpp"
	"github.com/MrWong99/murmur/pkg/provider/vad/energy"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "murmur: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	switch flag.Arg(0) {
	case "":
		return runApp(cfg)
	case "devices":
		return cmdDevices()
	case "bench":
		return cmdBench(cfg, flag.Args()[1:])
	default:
		fmt.Fprintf(os.Stderr, "murmur: unknown command %q (expected none, \"devices\" or \"bench\")\n", flag.Arg(0))
		return 2
	}
}

// runApp starts the dictation pipeline and blocks until SIGINT/SIGTERM.
func runApp(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownObserve, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "murmur",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObserve(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if err := capture.Init(); err != nil {
		slog.Error("failed to initialise audio subsystem", "err", err)
		return 1
	}
	defer func() {
		if err := capture.Terminate(); err != nil {
			slog.Warn("audio subsystem terminate error", "err", err)
		}
	}()

	if cfg.App.MetricsAddr != "" {
		go serveDiagnostics(cfg.App.MetricsAddr, cfg.Engine.ModelPath)
	}

	trans, err := buildTranscriber(cfg)
	if err != nil {
		slog.Error("failed to load transcription engine", "err", err)
		return 1
	}
	defer trans.Close()

	application, err := app.New(cfg, &app.Providers{
		Transcriber: trans,
		VAD:         energy.Engine{},
	})
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("murmur starting",
		"version", version,
		"model", cfg.Engine.ModelPath,
		"sink", cfg.Output.Sink,
		"hotkey_enabled", cfg.Hotkey.Enabled,
	)

	runErr := make(chan error, 1)
	if cfg.Hotkey.Enabled {
		// Hotkey registration must happen on the process main thread.
		hotkey.RunOnMainThread(func() {
			runErr <- application.Run(ctx)
		})
	} else {
		runErr <- application.Run(ctx)
	}

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildTranscriber constructs the configured engine backend.
func buildTranscriber(cfg *config.Config) (*whispercpp.Transcriber, error) {
	opts := []whispercpp.Option{
		whispercpp.WithSampleRate(cfg.Audio.SampleRate),
	}
	if cfg.Engine.Language != "" {
		opts = append(opts, whispercpp.WithLanguage(cfg.Engine.Language))
	}
	if cfg.Engine.Threads > 0 {
		opts = append(opts, whispercpp.WithThreads(cfg.Engine.Threads))
	}
	return whispercpp.New(cfg.Engine.ModelPath, opts...)
}

// serveDiagnostics exposes Prometheus metrics plus liveness and readiness
// probes on addr.
func serveDiagnostics(addr, modelPath string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	health.New(
		health.Checker{Name: "model", Check: func(context.Context) error {
			_, err := os.Stat(modelPath)
			return err
		}},
		health.Checker{Name: "audio", Check: func(context.Context) error {
			devs, err := capture.ListInputDevices()
			if err != nil {
				return err
			}
			if len(devs) == 0 {
				return errors.New("no input devices")
			}
			return nil
		}},
	).Register(mux)

	slog.Info("diagnostics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("diagnostics endpoint failed", "err", err)
	}
}

// cmdDevices prints all input-capable audio devices.
func cmdDevices() int {
	if err := capture.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		return 1
	}
	defer capture.Terminate()

	devs, err := capture.ListInputDevices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		return 1
	}

	for _, d := range devs {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s [%2d] %-40s channels=%d default_rate=%.0f\n",
			marker, d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return 0
}

// cmdBench records a few seconds of audio and reports the engine's real-time
// factor (audio duration / compute time).
func cmdBench(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	seconds := fs.Int("seconds", 5, "seconds of audio to record")
	device := fs.String("device", "", "input device name override")
	_ = fs.Parse(args)

	if *device != "" {
		cfg.Audio.Device = *device
	}

	if err := capture.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		return 1
	}
	defer capture.Terminate()

	queue := audio.NewFrameQueue(1024)
	src, err := capture.Open(capture.Config{
		SampleRate: cfg.Audio.SampleRate,
		FrameMs:    cfg.Audio.FrameMs,
		Device:     cfg.Audio.Device,
	}, queue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		return 1
	}
	defer src.Close()

	fmt.Printf("Recording %ds @ %d Hz from %q...\n", *seconds, cfg.Audio.SampleRate, cfg.Audio.Device)
	if err := src.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		return 1
	}

	target := *seconds * cfg.Audio.SampleRate
	var samples []int16
	for len(samples) < target {
		f, ok := queue.Pop(time.Second)
		if !ok {
			continue
		}
		samples = append(samples, f.Samples...)
	}
	if err := src.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		return 1
	}

	if len(samples) == 0 {
		fmt.Fprintln(os.Stderr, "murmur: no audio captured, is microphone access granted?")
		return 1
	}

	audioSec := float64(len(samples)) / float64(cfg.Audio.SampleRate)
	fmt.Printf("Captured %.2fs audio. Loading model %q...\n", audioSec, cfg.Engine.ModelPath)

	trans, err := buildTranscriber(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "murmur: %v\n", err)
		return 1
	}
	defer trans.Close()

	fmt.Println("Transcribing...")
	start := time.Now()
	res, err := trans.Decode(context.Background(), audio.Int16ToFloat32(samples), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "murmur: decode: %v\n", err)
		return 1
	}
	compute := time.Since(start).Seconds()

	rtf := 0.0
	if compute > 0 {
		rtf = audioSec / compute
	}
	fmt.Printf("Done. compute=%.2fs audio=%.2fs RTF=%.2f\n", compute, audioSec, rtf)
	if res.Text != "" {
		preview := res.Text
		if len(preview) > 160 {
			preview = preview[:157] + "..."
		}
		fmt.Printf("Preview: %s\n", preview)
	}
	return 0
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
