package clipboard

import (
	"errors"
	"fmt"
	"sync"

	cb "github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// ErrPaste wraps failures to inject the paste keystroke.
var ErrPaste = errors.New("paste keystroke failed")

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

var (
	kb     keybd_event.KeyBonding
	kbMu   sync.Mutex
	kbOnce sync.Once
	kbErr  error
)

// Init creates the virtual keyboard. On linux the compositor needs a moment
// to pick up the new device, so call this at startup rather than on first
// paste.
func Init() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
		if kbErr == nil {
			settle()
		}
	})
	return kbErr
}

// Paste sends the platform paste shortcut to the focused window.
func Paste() error {
	if err := Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrPaste, err)
	}
	kbMu.Lock()
	defer kbMu.Unlock()
	kb.Clear()
	kb.SetKeys(keybd_event.VK_V)
	setModifier(&kb)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("%w: %v", ErrPaste, err)
	}
	return nil
}

// Verify checks that the keyboard binding can be created.
func Verify() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	return "keyboard event binding OK (" + shortcutName + ")", nil
}

// System is the real clipboard and keyboard.
type System struct{}

func (System) Copy(text string) error { return Copy(text) }
func (System) Paste() error           { return Paste() }
