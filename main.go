package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"whispergroq/audio"
	"whispergroq/config"
	"whispergroq/doctor"
	"whispergroq/log"
	"whispergroq/transcriber"
)

var version = "dev"

const banner = `
 __        ___     _                  ____
 \ \      / / |__ (_)___ _ __   ___ _ / ___|_ __ ___   __ _
  \ \ /\ / /| '_ \| / __| '_ \ / _ \ '| |  _| '__/ _ \ / _' |
   \ V  V / | | | | \__ \ |_) |  __/ || |_| | | | (_) | (_| |
    \_/\_/  |_| |_|_|___/ .__/ \___|_| \____|_|  \___/ \__, |
                        |_|                               |_|
`

// setup parses the configuration and prepares logging. ok is false when the
// process should exit with code right away.
func setup() (cfg config.Config, code int, ok bool) {
	if err := config.LoadDotenv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg, err := config.Load(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return cfg, 0, false
	}
	if err != nil {
		return cfg, 2, false
	}

	if cfg.Version {
		fmt.Printf("whispergroq %s\n", version)
		return cfg, 0, false
	}

	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return cfg, 1, false
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, 1, false
	}
	return cfg, 0, true
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func newTranscriber(cfg config.Config) (transcriber.Transcriber, error) {
	if cfg.Fake != "" {
		return transcriber.NewFake(cfg.Fake, nil), nil
	}
	return transcriber.New(transcriber.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey(),
		Model:    cfg.Model,
		Language: cfg.Language,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
	})
}

func captureConfig(cfg config.Config) audio.CaptureConfig {
	return audio.CaptureConfig{SampleRate: uint32(cfg.SampleRate), Channels: uint32(cfg.Channels)}
}

// openDevice resolves -device and -setup against the live audio context.
// A nil device means the system default.
func openDevice(ctx audio.Context, cfg config.Config) (*audio.DeviceInfo, error) {
	if cfg.Device != "" {
		return audio.FindDevice(ctx, cfg.Device)
	}
	if !cfg.Setup {
		return nil, nil
	}
	dev, err := audio.SelectDevice(ctx)
	if errors.Is(err, audio.ErrSelectionCancelled) {
		fmt.Println("Using system default device")
		return nil, nil
	}
	return dev, err
}

func printBanner(cfg config.Config, tr transcriber.Transcriber) {
	fmt.Print(banner)
	fmt.Printf("whispergroq %s  [%s | %s]\n\n", version, tr.Name(), tr.Model())
	fmt.Printf("Hold '%s' to record; release to send audio for transcription.\n\n", cfg.Hotkey)
}

func runDoctor(cfg config.Config) int {
	b, _ := cfg.Binding()
	opts := doctor.Options{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey(),
		Binding:     b,
		Interactive: !cfg.Test,
	}
	if tr, err := newTranscriber(cfg); err == nil {
		opts.Transcriber = tr
	}
	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("Error initializing audio: %v\n", err)
	} else {
		defer ctx.Close()
		dev, err := openDevice(ctx, cfg)
		if err != nil {
			fmt.Printf("Warning: %v; using default device\n", err)
		}
		opts.Recorder = audio.NewRecorder(ctx, dev, captureConfig(cfg), cfg.AudioFormat())
	}
	return doctor.Run(opts)
}
