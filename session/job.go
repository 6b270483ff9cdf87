package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"whispergroq/log"
	"whispergroq/overlay"
	"whispergroq/transcriber"
)

var errJobPanic = errors.New("transcription job panicked")

// job turns one recording file into text and delivers it.
type job struct {
	c      *Controller
	id     string
	path   string
	remove sync.Once
}

func (j *job) cleanup() {
	j.remove.Do(func() {
		if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("removing %s: %v", j.path, err)
		}
	})
}

func (j *job) run(ctx context.Context) {
	defer j.cleanup()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", errJobPanic, r)
			log.CycleError(j.id, "job_panic", err)
			j.c.hold(fmt.Sprintf("Transcription error: %v", err), j.c.cfg.Timings.JobErrorHold)
		}
	}()

	p := j.c.cfg.Presenter
	p.UpdateMode(overlay.ModeProcessing, textProcessing)

	tr := j.c.cfg.Transcriber
	start := time.Now()
	res, err := tr.Transcribe(ctx, j.path)
	if err != nil {
		log.CycleError(j.id, "transcription_failed", err)
		j.c.hold(fmt.Sprintf("Transcription error: %v", err), j.c.cfg.Timings.JobErrorHold)
		return
	}
	logMetrics(j.id, tr.Name(), res, time.Since(start))

	text := strings.TrimSpace(res.Text)
	if text == "" {
		text = textEmpty
	}
	log.TranscriptionText(text)

	if cb := j.c.cfg.Clipboard; cb != nil {
		if err := cb.Copy(text); err != nil {
			log.Warnf("clipboard copy failed, using surface clipboard: %v", err)
			p.SetClipboard(text)
		}
	} else {
		p.SetClipboard(text)
	}

	j.c.mu.Lock()
	j.c.count++
	j.c.mu.Unlock()
	if j.c.cfg.OnTranscript != nil {
		j.c.cfg.OnTranscript(text)
	}

	p.Show(overlay.ModeDone, snippet(text))
	time.Sleep(j.c.cfg.Timings.FocusDelay)
	if j.c.cfg.AutoPaste && j.c.cfg.Clipboard != nil {
		if err := j.c.cfg.Clipboard.Paste(); err != nil {
			log.Warnf("paste: %v", err)
		}
	}
	time.Sleep(j.c.cfg.Timings.DoneHold)
	p.Close()
	log.Cycle(j.id, "done")
}

func logMetrics(id, provider string, res transcriber.Result, elapsed time.Duration) {
	m := log.Metrics{AudioBytes: res.AudioBytes, TotalTimeMs: float64(elapsed.Microseconds()) / 1000}
	if nm := res.Metrics; nm != nil {
		m.DNSTimeMs = float64(nm.DNS.Microseconds()) / 1000
		m.TLSTimeMs = float64(nm.TLS.Microseconds()) / 1000
		m.TTFBMs = float64(nm.TTFB.Microseconds()) / 1000
		m.TotalTimeMs = float64(nm.Total.Microseconds()) / 1000
		m.ConnReused = nm.ConnReused
	}
	log.TranscriptionMetrics(id, provider, res.Shape.String(), m)
}

// snippet cuts text to snippetLen characters and marks the cut.
func snippet(text string) string {
	r := []rune(text)
	if len(r) <= snippetLen {
		return text
	}
	return string(r[:snippetLen]) + "..."
}
