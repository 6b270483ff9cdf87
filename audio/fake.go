package audio

import (
	"sync"
	"time"

	"whispergroq/encoder"
)

const fakeFrameSize = 1024

// FakeContext replays fixed PCM as if it came from a microphone.
type FakeContext struct {
	pcm      []byte
	realtime bool

	// OpenErr makes NewCapture fail, StartDelay holds Start back and
	// StreamErr is reported through Err once the stream runs.
	OpenErr    error
	StartDelay time.Duration
	StreamErr  error

	mu     sync.Mutex
	opened int
	last   *FakeCapture
}

func NewFakeContext(pcm []byte, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, realtime: realtime}
}

// LoadFakeContext feeds the samples of a 16-bit WAV file.
func LoadFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	pcm, _, _, err := encoder.ReadPCM(wavPath)
	if err != nil {
		return nil, err
	}
	return NewFakeContext(pcm, realtime), nil
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	f.opened++
	c := &FakeCapture{
		pcm:        f.pcm,
		realtime:   f.realtime,
		config:     config,
		startDelay: f.StartDelay,
		streamErr:  f.StreamErr,
		audioDone:  make(chan struct{}),
	}
	f.last = c
	return c, nil
}

// Opened counts successful NewCapture calls.
func (f *FakeContext) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// Last returns the most recently opened capture, or nil.
func (f *FakeContext) Last() *FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type FakeCapture struct {
	pcm        []byte
	realtime   bool
	config     CaptureConfig
	startDelay time.Duration
	streamErr  error
	audioDone  chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	started  bool
	closed   bool
	stopCh   chan struct{}
	feedDone chan struct{}
}

// AudioDone is closed once the whole PCM buffer has been delivered.
func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return f.streamErr
	}
	return nil
}

func (f *FakeCapture) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) bytesPerFrame() int {
	return 2 * int(max(f.config.Channels, 1))
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos, chunkBytes int) int {
	end := min(pos+chunkBytes, len(f.pcm))
	// The callback may keep the slice, so hand over a scratch copy that is
	// then clobbered to catch callers that do not copy.
	chunk := make([]byte, end-pos)
	copy(chunk, f.pcm[pos:end])
	cb(chunk, uint32(len(chunk)/f.bytesPerFrame()))
	clear(chunk)
	return end
}

func (f *FakeCapture) Start() error {
	if f.startDelay > 0 {
		time.Sleep(f.startDelay)
	}

	f.mu.Lock()
	f.started = true
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	f.mu.Unlock()

	chunkBytes := fakeFrameSize * f.bytesPerFrame()

	if !f.realtime {
		if cb := f.callback(); cb != nil {
			for pos := 0; pos < len(f.pcm); {
				pos = f.feedChunk(cb, pos, chunkBytes)
			}
		}
		close(f.audioDone)
		close(f.feedDone)
		return nil
	}

	rate := max(f.config.SampleRate, 1)
	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(rate)
	if len(f.pcm) == 0 {
		close(f.audioDone)
	}
	go func() {
		defer close(f.feedDone)
		pos := 0
		silence := make([]byte, chunkBytes)
		for {
			if cb := f.callback(); cb != nil {
				if pos < len(f.pcm) {
					pos = f.feedChunk(cb, pos, chunkBytes)
					if pos == len(f.pcm) {
						close(f.audioDone)
					}
				} else {
					cb(silence, fakeFrameSize)
				}
			}
			select {
			case <-f.stopCh:
				return
			case <-time.After(interval):
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stopCh, feedDone := f.stopCh, f.feedDone
	f.mu.Unlock()
	if stopCh == nil {
		return
	}
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	<-feedDone
}

func (f *FakeCapture) Close() {
	f.Stop()
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}
