package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"whispergroq/encoder"
)

func testPCM(n int) []byte {
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(i%3000-1500)))
	}
	return pcm
}

func newTestRecorder(ctx Context, format encoder.Format) *Recorder {
	return NewRecorder(ctx, nil, CaptureConfig{SampleRate: encoder.SampleRate, Channels: 1}, format)
}

func TestRecorderWritesCapturedAudio(t *testing.T) {
	pcm := testPCM(5000)
	fake := NewFakeContext(pcm, false)
	rec := newTestRecorder(fake, encoder.FormatWAV)

	s := rec.Start()
	if err := s.WaitStarted(time.Second); err != nil {
		t.Fatalf("WaitStarted: %v", err)
	}

	dir := t.TempDir()
	path, err := s.Stop(dir)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasSuffix(path, ".wav") || !strings.Contains(path, s.ID) {
		t.Errorf("unexpected path %q", path)
	}

	got, rate, ch, err := encoder.ReadPCM(path)
	if err != nil {
		t.Fatalf("ReadPCM: %v", err)
	}
	if rate != encoder.SampleRate || ch != 1 {
		t.Errorf("rate/channels = %d/%d", rate, ch)
	}
	// The fake clobbers each buffer after the callback, so equality proves
	// the session copied every chunk.
	if string(got) != string(pcm) {
		t.Errorf("captured audio differs from source (%d vs %d bytes)", len(got), len(pcm))
	}
	if !fake.Last().Closed() {
		t.Error("capture device not closed after Stop")
	}
	if s.Duration() <= 0 {
		t.Error("expected positive duration")
	}
}

func TestRecorderFlac(t *testing.T) {
	rec := newTestRecorder(NewFakeContext(testPCM(2000), false), encoder.FormatFLAC)
	s := rec.Start()
	if err := s.WaitStarted(time.Second); err != nil {
		t.Fatal(err)
	}
	path, err := s.Stop(t.TempDir())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if filepath.Ext(path) != ".flac" {
		t.Errorf("path = %q, want .flac", path)
	}
}

func TestRecorderDeviceOpenError(t *testing.T) {
	fake := NewFakeContext(testPCM(100), false)
	fake.OpenErr = errors.New("no such device")
	s := newTestRecorder(fake, encoder.FormatWAV).Start()

	err := s.WaitStarted(time.Second)
	if !errors.Is(err, ErrDeviceOpen) {
		t.Fatalf("WaitStarted err = %v, want ErrDeviceOpen", err)
	}
	if !strings.Contains(err.Error(), "no such device") {
		t.Errorf("error should carry the cause: %v", err)
	}

	dir := t.TempDir()
	if _, err := s.Stop(dir); !errors.Is(err, ErrDeviceOpen) {
		t.Errorf("Stop err = %v, want ErrDeviceOpen", err)
	}
	assertEmptyDir(t, dir)
}

func TestRecorderNoAudio(t *testing.T) {
	fake := NewFakeContext(nil, false)
	s := newTestRecorder(fake, encoder.FormatWAV).Start()
	if err := s.WaitStarted(time.Second); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if _, err := s.Stop(dir); !errors.Is(err, ErrNoAudioCaptured) {
		t.Fatalf("Stop err = %v, want ErrNoAudioCaptured", err)
	}
	assertEmptyDir(t, dir)
	if !fake.Last().Closed() {
		t.Error("capture device not closed")
	}
}

func TestRecorderStartTimeout(t *testing.T) {
	fake := NewFakeContext(testPCM(100), false)
	fake.StartDelay = 200 * time.Millisecond
	s := newTestRecorder(fake, encoder.FormatWAV).Start()

	if err := s.WaitStarted(20 * time.Millisecond); !errors.Is(err, ErrStartTimeout) {
		t.Fatalf("WaitStarted err = %v, want ErrStartTimeout", err)
	}
	s.Abort()
	if c := fake.Last(); c == nil || !c.Closed() {
		t.Error("capture device not closed after Abort")
	}
}

func TestRecorderStreamError(t *testing.T) {
	fake := NewFakeContext(testPCM(100), false)
	fake.StreamErr = errors.New("device unplugged")
	s := newTestRecorder(fake, encoder.FormatWAV).Start()
	if err := s.WaitStarted(time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Stop(t.TempDir()); !errors.Is(err, ErrStream) {
		t.Fatalf("Stop err = %v, want ErrStream", err)
	}
}

func TestRecorderRealtime(t *testing.T) {
	fake := NewFakeContext(testPCM(4096), true)
	s := newTestRecorder(fake, encoder.FormatWAV).Start()
	if err := s.WaitStarted(time.Second); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fake.Last().AudioDone():
	case <-time.After(2 * time.Second):
		t.Fatal("realtime feed never finished")
	}
	path, err := s.Stop(t.TempDir())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func TestSessionIDsUnique(t *testing.T) {
	rec := newTestRecorder(NewFakeContext(nil, false), encoder.FormatWAV)
	a := rec.Start()
	a.Abort()
	b := rec.Start()
	b.Abort()
	if a.ID == b.ID || a.ID == "" {
		t.Errorf("ids %q and %q", a.ID, b.ID)
	}
}

func TestRecorderBusyUntilPreviousCloses(t *testing.T) {
	fake := NewFakeContext(testPCM(100), false)
	rec := newTestRecorder(fake, encoder.FormatWAV)

	first := rec.Start()
	if err := first.WaitStarted(time.Second); err != nil {
		t.Fatal(err)
	}
	second := rec.Start()
	if err := second.WaitStarted(time.Second); !errors.Is(err, ErrDeviceBusy) {
		t.Fatalf("WaitStarted err = %v, want ErrDeviceBusy", err)
	}
	if _, err := second.Stop(t.TempDir()); !errors.Is(err, ErrDeviceBusy) {
		t.Errorf("Stop err = %v, want ErrDeviceBusy", err)
	}
	if fake.Opened() != 1 {
		t.Errorf("opened = %d, want 1", fake.Opened())
	}

	first.Abort()
	third := rec.Start()
	if err := third.WaitStarted(time.Second); err != nil {
		t.Fatalf("after close: %v", err)
	}
	third.Abort()
	if fake.Opened() != 2 {
		t.Errorf("opened = %d, want 2", fake.Opened())
	}
}

func TestRecorderAbortOutlivedBySlowStart(t *testing.T) {
	fake := NewFakeContext(testPCM(100), false)
	fake.StartDelay = 300 * time.Millisecond
	rec := newTestRecorder(fake, encoder.FormatWAV)
	rec.AbortWait = 20 * time.Millisecond

	first := rec.Start()
	if err := first.WaitStarted(10 * time.Millisecond); !errors.Is(err, ErrStartTimeout) {
		t.Fatalf("WaitStarted err = %v, want ErrStartTimeout", err)
	}
	first.Abort()
	if fake.Last().Closed() {
		t.Fatal("driver closed before its start returned")
	}

	if err := rec.Start().WaitStarted(time.Second); !errors.Is(err, ErrDeviceBusy) {
		t.Fatalf("WaitStarted err = %v, want ErrDeviceBusy", err)
	}
	if fake.Opened() != 1 {
		t.Errorf("opened = %d, want 1", fake.Opened())
	}

	<-first.done
	if !fake.Last().Closed() {
		t.Error("stuck capture not closed once its start returned")
	}
}

func TestFindDevice(t *testing.T) {
	fake := NewFakeContext(nil, false)
	d, err := FindDevice(fake, "FAK")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "fake" {
		t.Errorf("got %q", d.Name)
	}
	if _, err := FindDevice(fake, "usb"); err == nil {
		t.Error("expected error for unknown device")
	}
}

func TestIsBluetooth(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"Headset (BT)", false},
		{"Jabra Evolve2", true},
		{"Built-in Microphone", false},
		{"Bluetooth Hands-Free", true},
	}
	for _, tt := range tests {
		if got := IsBluetooth(tt.name); got != tt.want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files in %s, found %d", dir, len(entries))
	}
}
