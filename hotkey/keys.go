package hotkey

import (
	"fmt"
	"strings"
)

type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

var modNames = []struct {
	mod   Modifier
	names []string
}{
	{ModCtrl, []string{"ctrl", "control"}},
	{ModShift, []string{"shift"}},
	{ModAlt, []string{"alt", "option", "opt"}},
	{ModSuper, []string{"super", "cmd", "win", "meta"}},
}

// Binding is a parsed hotkey such as "ctrl+shift+space".
type Binding struct {
	Mods Modifier
	Key  string
}

var keyAliases = map[string]string{
	"return":   "enter",
	"esc":      "escape",
	"spacebar": "space",
}

func validKey(k string) bool {
	switch {
	case len(k) == 1 && (k[0] >= 'a' && k[0] <= 'z' || k[0] >= '0' && k[0] <= '9'):
		return true
	case k == "space" || k == "tab" || k == "enter" || k == "escape":
		return true
	}
	var n int
	if _, err := fmt.Sscanf(k, "f%d", &n); err == nil && n >= 1 && n <= 12 && k == fmt.Sprintf("f%d", n) {
		return true
	}
	return false
}

// Parse reads "+"-separated modifiers followed by exactly one key.
func Parse(s string) (Binding, error) {
	var b Binding
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Binding{}, fmt.Errorf("hotkey %q: empty key", s)
		}
		if mod, ok := lookupMod(p); ok {
			if i == len(parts)-1 {
				return Binding{}, fmt.Errorf("hotkey %q: needs a key after the modifiers", s)
			}
			b.Mods |= mod
			continue
		}
		if i != len(parts)-1 {
			return Binding{}, fmt.Errorf("hotkey %q: %q is not a modifier", s, p)
		}
		if alias, ok := keyAliases[p]; ok {
			p = alias
		}
		if !validKey(p) {
			return Binding{}, fmt.Errorf("hotkey %q: unsupported key %q", s, p)
		}
		b.Key = p
	}
	return b, nil
}

func lookupMod(name string) (Modifier, bool) {
	for _, m := range modNames {
		for _, n := range m.names {
			if n == name {
				return m.mod, true
			}
		}
	}
	return 0, false
}

func (b Binding) String() string {
	var parts []string
	for _, m := range modNames {
		if b.Mods&m.mod != 0 {
			parts = append(parts, m.names[0])
		}
	}
	return strings.Join(append(parts, b.Key), "+")
}
