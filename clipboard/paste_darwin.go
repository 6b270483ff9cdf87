//go:build darwin

package clipboard

import "github.com/micmonay/keybd_event"

const shortcutName = "Cmd+V"

func setModifier(kb *keybd_event.KeyBonding) {
	kb.HasSuper(true)
}

func settle() {}
