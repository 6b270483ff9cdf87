package audio

import (
	"errors"
	"strings"
)

var (
	// ErrDeviceOpen wraps any failure to acquire or start the input stream.
	ErrDeviceOpen      = errors.New("audio device unavailable")
	ErrNoAudioCaptured = errors.New("no audio captured")
	ErrStartTimeout    = errors.New("recording did not start")
	// ErrDeviceBusy means an earlier capture still holds the device.
	ErrDeviceBusy = errors.New("audio device busy")
	// ErrStream is a failure of the stream itself after it was running.
	ErrStream = errors.New("audio stream failed")
)

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DataCallback receives interleaved little-endian 16-bit samples. The slice
// may be reused by the driver after the callback returns.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
	// Err reports a stream failure observed while running, nil otherwise.
	Err() error
}
