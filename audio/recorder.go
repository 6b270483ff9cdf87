package audio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"whispergroq/encoder"
	"whispergroq/log"
)

// Recorder opens one capture session per push-to-talk cycle. At most one
// session holds the device; Start refuses while the previous one is still
// closing.
type Recorder struct {
	ctx    Context
	device *DeviceInfo
	config CaptureConfig
	format encoder.Format

	// AbortWait bounds how long Abort waits on a driver that is still stuck
	// opening the device.
	AbortWait time.Duration

	mu   sync.Mutex
	last *Session
}

func NewRecorder(ctx Context, device *DeviceInfo, config CaptureConfig, format encoder.Format) *Recorder {
	if config.SampleRate == 0 {
		config.SampleRate = encoder.SampleRate
	}
	if config.Channels == 0 {
		config.Channels = encoder.Channels
	}
	if format == "" {
		format = encoder.FormatWAV
	}
	return &Recorder{ctx: ctx, device: device, config: config, format: format, AbortWait: 2 * time.Second}
}

func (r *Recorder) Config() CaptureConfig { return r.config }

// Start launches the capture goroutine and returns immediately. Failures to
// open the device surface through WaitStarted and Stop. While an earlier
// session has not released the device, the returned session fails with
// ErrDeviceBusy without touching the driver.
func (r *Recorder) Start() *Session {
	s := &Session{
		ID:      newCycleID(),
		rec:     r,
		started: make(chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last != nil {
		select {
		case <-r.last.done:
		default:
			s.err = fmt.Errorf("%w: capture %s has not closed yet", ErrDeviceBusy, r.last.ID)
			close(s.started)
			close(s.done)
			return s
		}
	}
	r.last = s
	go s.capture()
	return s
}

func newCycleID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

type Session struct {
	ID string

	rec       *Recorder
	started   chan struct{}
	startOnce sync.Once
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}

	mu         sync.Mutex
	chunks     [][]byte
	frames     uint64
	startedAt  time.Time
	deviceName string
	err        error
}

func (s *Session) capture() {
	defer close(s.done)
	defer s.startOnce.Do(func() { close(s.started) })

	dev, err := s.rec.ctx.NewCapture(s.rec.device, s.rec.config)
	if err != nil {
		s.setErr(fmt.Errorf("%w: %v", ErrDeviceOpen, err))
		return
	}
	defer dev.Close()

	select {
	case <-s.stop:
		return
	default:
	}

	dev.SetCallback(s.onData)
	if err := dev.Start(); err != nil {
		s.setErr(fmt.Errorf("%w: %v", ErrDeviceOpen, err))
		return
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.deviceName = dev.DeviceName()
	s.mu.Unlock()
	s.startOnce.Do(func() { close(s.started) })
	log.Cycle(s.ID, "recording_start")

	<-s.stop
	dev.Stop()
	dev.ClearCallback()
	if err := dev.Err(); err != nil {
		s.setErr(fmt.Errorf("%w: %v", ErrStream, err))
	}
}

func (s *Session) onData(data []byte, frameCount uint32) {
	if len(data) == 0 {
		return
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	s.mu.Lock()
	s.chunks = append(s.chunks, chunk)
	s.frames += uint64(frameCount)
	s.mu.Unlock()
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// WaitStarted blocks until the stream is confirmed open, the open fails, or
// the timeout expires.
func (s *Session) WaitStarted(timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.started:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.startedAt.IsZero() {
			if s.err != nil {
				return s.err
			}
			return ErrDeviceOpen
		}
		return nil
	case <-t.C:
		return fmt.Errorf("%w within %s", ErrStartTimeout, timeout)
	}
}

func (s *Session) signalStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Stop ends capture, joins the capture goroutine and writes the recording
// into dir. The caller owns the returned file.
func (s *Session) Stop(dir string) (string, error) {
	s.signalStop()
	<-s.done

	s.mu.Lock()
	chunks, err := s.chunks, s.err
	frames, startedAt := s.frames, s.startedAt
	s.chunks = nil
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", ErrNoAudioCaptured
	}

	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "whispergroq-"+s.ID+s.rec.format.Ext())
	pcm := bytes.Join(chunks, nil)
	written, err := encoder.WriteFile(path, s.rec.format, pcm, int(s.rec.config.SampleRate), int(s.rec.config.Channels))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if written == 0 {
		os.Remove(path)
		return "", ErrNoAudioCaptured
	}

	log.CaptureStats(s.ID, len(chunks), frames, time.Since(startedAt), path)
	return path, nil
}

// Abort ends capture without writing anything.
func (s *Session) Abort() {
	s.signalStop()
	select {
	case <-s.done:
	case <-time.After(s.rec.AbortWait):
		log.Warnf("capture %s still opening after abort; leaving it to exit", s.ID)
	}
	s.mu.Lock()
	s.chunks = nil
	s.mu.Unlock()
}

func (s *Session) DeviceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceName
}

// Duration is the audio length represented by the captured frames.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.frames) * time.Second / time.Duration(s.rec.config.SampleRate)
}
