//go:build !darwin

package clipboard

import (
	"runtime"
	"time"

	"github.com/micmonay/keybd_event"
)

const shortcutName = "Ctrl+V"

func setModifier(kb *keybd_event.KeyBonding) {
	kb.HasCTRL(true)
}

// settle waits for the new uinput device to be registered on linux.
func settle() {
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}
}
