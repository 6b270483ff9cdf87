package main

import (
	"context"
	"fmt"
	"os"

	"whispergroq/audio"
	"whispergroq/clipboard"
	"whispergroq/config"
	"whispergroq/hotkey"
	"whispergroq/log"
	"whispergroq/overlay"
	"whispergroq/session"
	"whispergroq/shutdown"
	"whispergroq/transcriber"
	"whispergroq/tray"
)

// host is a surface owned by someone else's event loop, such as the desktop
// window. It brings its own tray menu.
type host interface {
	overlay.Renderer
	Quit()
}

func run(cfg config.Config, h host) int {
	if cfg.Doctor {
		return runDoctor(cfg)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	tr, err := newTranscriber(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.SessionStart(tr.Name(), tr.Model(), cfg.Hotkey)

	if cfg.Test {
		return runTestMode(cfg, tr)
	}
	return runLive(cfg, tr, h)
}

func runLive(cfg config.Config, tr transcriber.Transcriber, h host) int {
	binding, _ := cfg.Binding()

	if cfg.AutoPaste {
		if err := clipboard.Init(); err != nil {
			log.Warnf("paste init failed: %v", err)
			fmt.Printf("Warning: paste init failed: %v\n", err)
		}
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		return 1
	}
	defer actx.Close()

	dev, err := openDevice(actx, cfg)
	if err != nil {
		log.Warnf("device selection failed: %v", err)
		fmt.Printf("Warning: %v\nFalling back to default device\n", err)
		dev = nil
	}
	deviceName := "system default"
	if dev != nil {
		deviceName = dev.Name
		if audio.IsBluetooth(dev.Name) {
			deviceName += " (BT!)"
		}
	}
	log.Info("recording_device: " + deviceName)
	rec := audio.NewRecorder(actx, dev, captureConfig(cfg), cfg.AudioFormat())

	hk, err := hotkey.New(binding)
	if err == nil {
		err = hk.Register()
	}
	if err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Fprintf(os.Stderr, "Error registering hotkey %s: %v\n", binding, err)
		return 1
	}
	defer hk.Unregister()

	if g, ok := tr.(*transcriber.Groq); ok {
		go g.Warm()
	}

	printBanner(cfg, tr)

	var renderer overlay.Renderer
	var tui *overlay.TUI
	switch {
	case h != nil:
		renderer = h
	case cfg.UI == "tui":
		tui = overlay.NewTUI(overlay.Info{
			Hotkey:   binding.String(),
			Provider: tr.Name(),
			Model:    tr.Model(),
			Device:   deviceName,
			Version:  version,
		})
		renderer = tui
	default:
		renderer = &overlay.LogRenderer{Echo: true}
	}

	queue := overlay.NewQueue(renderer, overlay.DefaultInterval)
	qctx, stopQueue := context.WithCancel(context.Background())
	queueDone := make(chan struct{})
	go func() {
		queue.Run(qctx)
		close(queueDone)
	}()

	useTray := cfg.Tray && h == nil
	ctrl := session.New(session.Config{
		Recorder:    rec,
		Transcriber: tr,
		Presenter:   queue,
		Clipboard:   clipboard.System{},
		TmpDir:      cfg.TmpDir,
		AutoPaste:   cfg.AutoPaste,
		OnRecording: func(on bool) {
			if useTray {
				tray.SetRecording(on)
			}
		},
		OnTranscript: func(text string) {
			tray.SetLastTranscript(text)
			if tui != nil {
				tui.Transcript(text)
			}
		},
	})

	var trayQuit <-chan struct{}
	if useTray {
		tray.OnCopyLast(func(text string) {
			if err := clipboard.Copy(text); err != nil {
				log.Warnf("tray copy: %v", err)
				queue.SetClipboard(text)
			}
		})
		trayQuit = tray.Init()
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	defer shutdown.Stop(sigChan)

	tuiDone := make(chan struct{})
	if tui != nil {
		go func() {
			if err := tui.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			close(tuiDone)
		}()
	}

	stop := make(chan struct{})
	go hotkeyLoop(hk, ctrl, stop)

	select {
	case <-sigChan:
		log.Info("signal received")
	case <-trayQuit:
		log.Info("tray quit")
	case <-tuiDone:
		log.Info("tui closed")
	}

	close(stop)
	ctrl.Shutdown()
	stopQueue()
	<-queueDone
	if tui != nil {
		tui.Quit()
	}
	if useTray {
		tray.Quit()
	}
	if h != nil {
		h.Quit()
	}
	log.SessionEnd(ctrl.Count())
	return 0
}

// hotkeyLoop feeds hotkey edges to the controller. A press that queued up
// behind a slow handler goes first so its release is not dropped.
func hotkeyLoop(hk hotkey.Hotkey, ctrl *session.Controller, stop <-chan struct{}) {
	for {
		select {
		case <-hk.Keydown():
			ctrl.Press()
			continue
		default:
		}
		select {
		case <-hk.Keydown():
			ctrl.Press()
		case <-hk.Keyup():
			ctrl.Release()
		case <-stop:
			return
		}
	}
}
