//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
)

const inputEventSize = 24

// a=30, b=48, c=46, ... z=44
var letterCodes = [26]uint16{
	30, 48, 46, 32, 18, 33, 34, 35, 23, 36,
	37, 38, 50, 49, 24, 25, 16, 19, 31, 20,
	22, 47, 17, 45, 21, 44,
}

// 0=11, 1=2, ..., 9=10
var digitCodes = [10]uint16{11, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// F1..F12
var fnCodes = [12]uint16{59, 60, 61, 62, 63, 64, 65, 66, 67, 68, 87, 88}

var modCodes = map[uint16]Modifier{
	29: ModCtrl, 97: ModCtrl,
	42: ModShift, 54: ModShift,
	56: ModAlt, 100: ModAlt,
	125: ModSuper, 126: ModSuper,
}

func keyCode(key string) (uint16, bool) {
	switch key {
	case "space":
		return 57, true
	case "tab":
		return 15, true
	case "enter":
		return 28, true
	case "escape":
		return 1, true
	}
	if len(key) == 1 {
		switch c := key[0]; {
		case c >= 'a' && c <= 'z':
			return letterCodes[c-'a'], true
		case c >= '0' && c <= '9':
			return digitCodes[c-'0'], true
		}
	}
	var n int
	if _, err := fmt.Sscanf(key, "f%d", &n); err == nil && n >= 1 && n <= 12 {
		return fnCodes[n-1], true
	}
	return 0, false
}

// linuxHotkey reads keyboards straight from evdev, which works the same
// under X11 and Wayland.
type linuxHotkey struct {
	binding Binding
	code    uint16
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

func New(b Binding) (Hotkey, error) {
	code, ok := keyCode(b.Key)
	if !ok {
		return nil, fmt.Errorf("hotkey %s: key not supported on linux", b)
	}
	return &linuxHotkey{
		binding: b,
		code:    code,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}, nil
}

func (h *linuxHotkey) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}

	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return nil
}

type keyState struct {
	held map[uint16]bool
	down bool
}

func (s *keyState) mods() Modifier {
	var m Modifier
	for code, on := range s.held {
		if on {
			m |= modCodes[code]
		}
	}
	return m
}

// handle applies one key event and reports whether it starts or ends the
// binding's press. Value 2 (auto-repeat) is ignored.
func (h *linuxHotkey) handle(s *keyState, code uint16, value int32) (down, up bool) {
	if _, isMod := modCodes[code]; isMod {
		switch value {
		case keyPress:
			s.held[code] = true
		case keyRelease:
			s.held[code] = false
		}
		return false, false
	}
	if code != h.code {
		return false, false
	}
	switch {
	case value == keyPress && !s.down && s.mods()&h.binding.Mods == h.binding.Mods:
		s.down = true
		return true, false
	case value == keyRelease && s.down:
		s.down = false
		return false, true
	}
	return false, false
}

func (h *linuxHotkey) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	state := &keyState{held: make(map[uint16]bool)}

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))
			if evType != evKey {
				continue
			}
			down, up := h.handle(state, evCode, evValue)
			if down {
				send(h.keydown)
			}
			if up {
				send(h.keyup)
			}
		}
	}
}

func (h *linuxHotkey) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *linuxHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *linuxHotkey) Keyup() <-chan struct{}   { return h.keyup }

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}

func Diagnose(b Binding) (string, error) {
	if _, ok := keyCode(b.Key); !ok {
		return "", fmt.Errorf("key %q not supported", b.Key)
	}
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}
	return fmt.Sprintf("%d keyboard(s) found, opened %s, listening for %s", len(keyboards), opened, b), nil
}
