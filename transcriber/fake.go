package transcriber

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

type FakeTranscriber struct {
	text  string
	err   error
	delay time.Duration

	mu    sync.Mutex
	calls []string
	// Gate, when set, holds each call until a value is received.
	Gate chan struct{}
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) WithDelay(d time.Duration) *FakeTranscriber {
	f.delay = d
	return f
}

func (f *FakeTranscriber) Name() string  { return "fake" }
func (f *FakeTranscriber) Model() string { return "fake" }

func (f *FakeTranscriber) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, audioPath)
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Result{}, unavailable(f.Name(), ctx.Err())
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading recording: %w", err)
	}
	if f.err != nil {
		return Result{}, fmt.Errorf("fake transcriber: %w", f.err)
	}
	return Result{
		Text:       f.text,
		Shape:      ShapeText,
		AudioBytes: info.Size(),
		Metrics:    &NetworkMetrics{Total: 10 * time.Millisecond},
	}, nil
}

// Calls returns the audio paths passed to Transcribe, in call order.
func (f *FakeTranscriber) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
