package hotkey

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Binding
		str  string
	}{
		{"f9", Binding{Key: "f9"}, "f9"},
		{"F12", Binding{Key: "f12"}, "f12"},
		{"ctrl+shift+space", Binding{Mods: ModCtrl | ModShift, Key: "space"}, "ctrl+shift+space"},
		{"Shift + Ctrl + Space", Binding{Mods: ModCtrl | ModShift, Key: "space"}, "ctrl+shift+space"},
		{"cmd+option+r", Binding{Mods: ModAlt | ModSuper, Key: "r"}, "alt+super+r"},
		{"alt+return", Binding{Mods: ModAlt, Key: "enter"}, "alt+enter"},
		{"ctrl+7", Binding{Mods: ModCtrl, Key: "7"}, "ctrl+7"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "ctrl+", "ctrl+shift", "f13", "f0", "f9x", "a+b", "ctrl++a", "pagedown"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}
