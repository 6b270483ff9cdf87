package main

import (
	"testing"
	"time"

	"whispergroq/audio"
	"whispergroq/clipboard"
	"whispergroq/config"
	"whispergroq/encoder"
	"whispergroq/hotkey"
	"whispergroq/overlay"
	"whispergroq/session"
	"whispergroq/transcriber"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHotkeyLoopDrivesController(t *testing.T) {
	fake := audio.NewFakeContext(tonePCM(encoder.SampleRate), false)
	rec := audio.NewRecorder(fake, nil, audio.CaptureConfig{}, encoder.FormatWAV)
	renderer := &overlay.FakeRenderer{}
	queue := overlay.NewQueue(renderer, overlay.DefaultInterval)
	clip := &clipboard.Fake{}
	timings := session.DefaultTimings()
	timings.FocusDelay, timings.DoneHold = time.Millisecond, time.Millisecond

	ctrl := session.New(session.Config{
		Recorder:    rec,
		Transcriber: transcriber.NewFake("from the loop", nil),
		Presenter:   queue,
		Clipboard:   clip,
		TmpDir:      t.TempDir(),
		AutoPaste:   true,
		Timings:     timings,
	})

	hk := hotkey.NewFake()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		hotkeyLoop(hk, ctrl, stop)
		close(done)
	}()

	hk.SimKeydown()
	waitFor(t, "recording", func() bool { return ctrl.State() == session.StateRecording })
	hk.SimKeyup()
	waitFor(t, "transcript", func() bool { return ctrl.Count() == 1 })
	ctrl.Wait()
	close(stop)
	<-done

	queue.Tick()
	if clip.Text() != "from the loop" || clip.Pastes() != 1 {
		t.Errorf("clipboard=%q pastes=%d", clip.Text(), clip.Pastes())
	}
	if st := queue.State(); st.Mode != overlay.ModeHidden {
		t.Errorf("surface still showing %v", st.Mode)
	}
}

func TestOpenDevice(t *testing.T) {
	ctx := audio.NewFakeContext(nil, false)

	dev, err := openDevice(ctx, config.Config{})
	if err != nil || dev != nil {
		t.Errorf("default device: %v %v", dev, err)
	}
	dev, err = openDevice(ctx, config.Config{Device: "FAK"})
	if err != nil || dev == nil || dev.Name != "fake" {
		t.Errorf("substring match: %v %v", dev, err)
	}
	if _, err := openDevice(ctx, config.Config{Device: "usb headset"}); err == nil {
		t.Error("expected error for unknown device")
	}
}

func TestNewTranscriberFake(t *testing.T) {
	tr, err := newTranscriber(config.Config{Fake: "hi", Provider: "groq"})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "fake" {
		t.Errorf("name = %q", tr.Name())
	}
	tr, err = newTranscriber(config.Config{Provider: "openai", Model: "whisper-1"})
	if err != nil || tr.Name() != "openai" || tr.Model() != "whisper-1" {
		t.Errorf("openai: %v %v", tr, err)
	}
}

func TestTonePCM(t *testing.T) {
	pcm := tonePCM(16000)
	if len(pcm) != 32000 {
		t.Fatalf("len = %d", len(pcm))
	}
	silent := true
	for _, b := range pcm {
		if b != 0 {
			silent = false
			break
		}
	}
	if silent {
		t.Error("tone is silent")
	}
}
