// Package session drives one push-to-talk cycle at a time: capture while the
// hotkey is held, then transcribe, copy and paste in the background.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"whispergroq/audio"
	"whispergroq/log"
	"whispergroq/overlay"
	"whispergroq/transcriber"
)

const (
	textRecording  = "Recording..."
	textSaving     = "Stopping... saving audio"
	textProcessing = "Processing audio..."
	textEmpty      = "(no transcription returned)"
	snippetLen     = 300
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopping
	StateProcessing
	StateError
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateProcessing:
		return "processing"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

type Timings struct {
	StartTimeout     time.Duration
	PressErrorHold   time.Duration
	ReleaseErrorHold time.Duration
	JobErrorHold     time.Duration
	FocusDelay       time.Duration
	DoneHold         time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		StartTimeout:     time.Second,
		PressErrorHold:   1500 * time.Millisecond,
		ReleaseErrorHold: 2 * time.Second,
		JobErrorHold:     2 * time.Second,
		FocusDelay:       200 * time.Millisecond,
		DoneHold:         1200 * time.Millisecond,
	}
}

// Presenter accepts surface commands; overlay.Queue is the real one.
type Presenter interface {
	Show(mode overlay.Mode, text string)
	UpdateMode(mode overlay.Mode, text string)
	Close()
	SetClipboard(text string)
}

type Clipboard interface {
	Copy(text string) error
	Paste() error
}

type Config struct {
	Recorder    *audio.Recorder
	Transcriber transcriber.Transcriber
	Presenter   Presenter
	Clipboard   Clipboard
	// TmpDir receives the transient recordings; empty means os.TempDir.
	TmpDir    string
	AutoPaste bool
	Timings   Timings

	// Optional observers, called from the controller's goroutines.
	OnRecording  func(recording bool)
	OnTranscript func(text string)
}

type Controller struct {
	cfg Config

	// actionMu serializes Press and Release.
	actionMu sync.Mutex

	mu      sync.Mutex
	state   State
	current *audio.Session
	count   int
	closed  bool

	jobs sync.WaitGroup
}

func New(cfg Config) *Controller {
	if cfg.Timings == (Timings{}) {
		cfg.Timings = DefaultTimings()
	}
	return &Controller{cfg: cfg}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Count is the number of cycles whose transcription succeeded.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Controller) notifyRecording(on bool) {
	if c.cfg.OnRecording != nil {
		c.cfg.OnRecording(on)
	}
}

// hold shows text in error mode for d, then hides the surface.
func (c *Controller) hold(text string, d time.Duration) {
	c.cfg.Presenter.UpdateMode(overlay.ModeError, text)
	time.Sleep(d)
	c.cfg.Presenter.Close()
}

// Press starts a capture. It does nothing unless the controller is idle, or
// after Shutdown.
func (c *Controller) Press() {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	c.mu.Lock()
	ready := c.state == StateIdle && !c.closed
	c.mu.Unlock()
	if !ready {
		return
	}

	sess := c.cfg.Recorder.Start()
	c.mu.Lock()
	c.state = StateRecording
	c.current = sess
	c.mu.Unlock()
	log.Cycle(sess.ID, "press")
	c.cfg.Presenter.Show(overlay.ModeRecording, textRecording)
	c.notifyRecording(true)

	if err := sess.WaitStarted(c.cfg.Timings.StartTimeout); err != nil {
		log.CycleError(sess.ID, "recording_error", err)
		c.setState(StateError)
		c.notifyRecording(false)
		sess.Abort()
		c.hold(fmt.Sprintf("Recording error: %v", err), c.cfg.Timings.PressErrorHold)
		c.mu.Lock()
		c.state = StateIdle
		c.current = nil
		c.mu.Unlock()
	}
}

// Release stops the capture and hands the recording to a background job.
// It does nothing unless a recording is in progress.
func (c *Controller) Release() {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return
	}
	sess := c.current
	c.state = StateStopping
	c.mu.Unlock()

	log.Cycle(sess.ID, "release")
	c.cfg.Presenter.UpdateMode(overlay.ModeSaving, textSaving)
	c.notifyRecording(false)

	path, err := sess.Stop(c.cfg.TmpDir)
	if err != nil {
		log.CycleError(sess.ID, "capture_failed", err)
		c.setState(StateError)
		c.hold(fmt.Sprintf("Recording error: %v", err), c.cfg.Timings.ReleaseErrorHold)
		c.mu.Lock()
		c.state = StateIdle
		c.current = nil
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.state = StateProcessing
	c.mu.Unlock()

	j := &job{c: c, id: sess.ID, path: path}
	c.jobs.Add(1)
	go func() {
		defer c.jobs.Done()
		j.run(context.Background())
	}()

	// Capture is free again while the job runs.
	c.mu.Lock()
	c.state = StateIdle
	c.current = nil
	c.mu.Unlock()
}

// Wait blocks until every background job has finished.
func (c *Controller) Wait() {
	c.jobs.Wait()
}

// Shutdown aborts an in-flight capture and waits for background jobs. Later
// presses and releases are ignored.
func (c *Controller) Shutdown() {
	c.actionMu.Lock()
	c.mu.Lock()
	c.closed = true
	sess := c.current
	c.current = nil
	c.state = StateIdle
	c.mu.Unlock()
	if sess != nil {
		sess.Abort()
		c.notifyRecording(false)
	}
	c.actionMu.Unlock()
	c.Wait()
}
