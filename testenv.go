package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"whispergroq/audio"
	"whispergroq/clipboard"
	"whispergroq/config"
	"whispergroq/log"
	"whispergroq/overlay"
	"whispergroq/session"
	"whispergroq/transcriber"
)

// tonePCM is one second of a 440 Hz tone, used when -test has no -wav.
func tonePCM(sampleRate int) []byte {
	pcm := make([]byte, sampleRate*2)
	for i := 0; i < sampleRate; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}

// runTestMode drives the controller from stdin commands: KEYDOWN, KEYUP,
// WAIT, WAIT_AUDIO_DONE, SLEEP <ms> and QUIT. Transcripts are printed as
// "TRANSCRIPT: <text>" lines.
func runTestMode(cfg config.Config, tr transcriber.Transcriber) int {
	var fake *audio.FakeContext
	if cfg.WAV != "" {
		var err error
		fake, err = audio.LoadFakeContext(cfg.WAV, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
			return 1
		}
	} else {
		fake = audio.NewFakeContext(tonePCM(cfg.SampleRate), true)
	}
	rec := audio.NewRecorder(fake, nil, audio.CaptureConfig{SampleRate: uint32(cfg.SampleRate), Channels: 1}, cfg.AudioFormat())

	queue := overlay.NewQueue(&overlay.LogRenderer{Echo: true}, overlay.DefaultInterval)
	qctx, stopQueue := context.WithCancel(context.Background())
	queueDone := make(chan struct{})
	go func() {
		queue.Run(qctx)
		close(queueDone)
	}()

	clip := &clipboard.Fake{}
	ctrl := session.New(session.Config{
		Recorder:    rec,
		Transcriber: tr,
		Presenter:   queue,
		Clipboard:   clip,
		TmpDir:      cfg.TmpDir,
		AutoPaste:   cfg.AutoPaste,
		OnTranscript: func(text string) {
			fmt.Printf("TRANSCRIPT: %s\n", text)
		},
	})

	scanner := bufio.NewScanner(os.Stdin)
loop:
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "KEYDOWN":
			ctrl.Press()
		case "KEYUP":
			ctrl.Release()
		case "WAIT":
			ctrl.Wait()
		case "WAIT_AUDIO_DONE":
			if last := fake.Last(); last != nil {
				<-last.AudioDone()
			}
		case "QUIT":
			break loop
		case "":
		default:
			if ms, ok := strings.CutPrefix(cmd, "SLEEP "); ok {
				if n, err := strconv.Atoi(ms); err == nil {
					time.Sleep(time.Duration(n) * time.Millisecond)
				}
				continue
			}
			log.Warnf("test mode: unknown command %q", cmd)
		}
	}

	ctrl.Shutdown()
	stopQueue()
	<-queueDone
	fmt.Printf("PASTES: %d\n", clip.Pastes())
	log.SessionEnd(ctrl.Count())
	return 0
}
