// main.go - keysynth entry point and component wiring

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func boilerPlate(w io.Writer) {
	fmt.Fprintf(w, "keysynth %s - isomorphic polyphonic sine keyboard\n", Version)
	fmt.Fprintln(w, "(c) 2024 - 2026 Zayn Otley")
	fmt.Fprintln(w, "License: GPLv3 or later")
}

type runMode int

const (
	modeKeyboard runMode = iota
	modeBurst
	modeRender
)

type options struct {
	configPath   string
	mode         runMode
	renderPath   string
	scriptPath   string
	showFeatures bool
	showVersion  bool
}

func parseOptions(args []string) (options, error) {
	var (
		opts  options
		burst bool
	)

	flagSet := flag.NewFlagSet("keysynth", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	flagSet.BoolVar(&burst, "burst", false, "Single-voice mode: each terminal byte plays a short note")
	flagSet.StringVar(&opts.renderPath, "render", "", "Render a scripted performance to this WAV file")
	flagSet.StringVar(&opts.scriptPath, "script", "", "Lua performance script for -render")
	flagSet.BoolVar(&opts.showFeatures, "features", false, "Print compiled features and exit")
	flagSet.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./keysynth [-config keysynth.yaml] [-burst | -render out.wav -script perf.lua]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.Usage()
		}
		return opts, err
	}
	if flagSet.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}

	switch {
	case burst && opts.renderPath != "":
		return opts, errors.New("select at most one mode: -burst or -render")
	case burst:
		opts.mode = modeBurst
	case opts.renderPath != "":
		if opts.scriptPath == "" {
			return opts, errors.New("-render requires -script")
		}
		opts.mode = modeRender
	case opts.scriptPath != "":
		return opts, errors.New("-script requires -render")
	}
	return opts, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.showVersion {
		fmt.Println(Version)
		return
	}
	if opts.showFeatures {
		printFeatures(os.Stdout)
		return
	}

	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, logger); err != nil {
		logger.Error("keysynth exited with error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, cfg Config, logger *slog.Logger) error {
	switch opts.mode {
	case modeRender:
		format, err := cfg.Audio.StreamFormat()
		if err != nil {
			return err
		}
		return renderScriptToWav(ctx, opts.scriptPath, opts.renderPath, format, logger)

	case modeBurst:
		out, err := NewAudioOutput(cfg.Audio)
		if err != nil {
			return fmt.Errorf("failed to initialize sound: %w", err)
		}
		defer out.Close()

		streamErrors := &streamErrorCounter{}
		stopTelemetry, err := startTelemetry(cfg.Telemetry, newRuntimeStatus(nil, nil, nil, nil, streamErrors), logger)
		if err != nil {
			return err
		}
		defer stopTelemetry()

		logger.Info("burst mode", slog.String("format", out.Format().String()))
		return RunTerminalBurst(ctx, NewBurstPlayer(out, cfg.Burst, streamErrors, logger))

	default:
		boilerPlate(os.Stderr)
		return runKeyboard(ctx, cfg, logger)
	}
}

// runKeyboard wires the polyphonic path: keyboard window -> bridge -> voice
// registry <- synth engine <- output stream.
func runKeyboard(ctx context.Context, cfg Config, logger *slog.Logger) error {
	out, err := NewAudioOutput(cfg.Audio)
	if err != nil {
		return fmt.Errorf("failed to initialize sound: %w", err)
	}
	defer out.Close()

	pitch := NewPitchTable()
	voices := NewVoiceRegistry()
	bridge := NewEventBridge(voices, logger)
	bridge.Start()
	defer bridge.Close()

	engine := NewSynthEngine(pitch, voices, out.Format())
	stream, err := out.NewStream(engine)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	streamErrors := &streamErrorCounter{}
	status := newRuntimeStatus(pitch, voices, bridge, engine, streamErrors)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	audioLog := logger.With(slog.String("component", "audio"))
	go watchStreamErrors(watchCtx, stream, STREAM_ERROR_POLL, streamErrors, func(err error) {
		audioLog.Error("streaming error", slog.String("error", err.Error()))
	})

	stopTelemetry, err := startTelemetry(cfg.Telemetry, status, logger)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	stream.Play()
	logger.Info("synthesizer running", slog.String("format", out.Format().String()))

	return runKeyboardWindow(ctx, cfg.Window, bridge, status, logger)
}

// startTelemetry sets up metrics for status and returns the matching
// shutdown func.
func startTelemetry(cfg TelemetryConfig, status *runtimeStatus, logger *slog.Logger) (func(), error) {
	tel, err := setupTelemetry(cfg, status, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}, nil
}
