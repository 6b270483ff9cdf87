package tray

import (
	"strings"
	"testing"
)

func TestCopyItemTitle(t *testing.T) {
	if got := copyItemTitle("hi"); got != "Copy last transcript: hi" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("ü", previewLen+5)
	got := copyItemTitle(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("long title not cut: %q", got)
	}
	if n := strings.Count(got, "ü"); n != previewLen {
		t.Errorf("kept %d runes, want %d", n, previewLen)
	}
}

func TestStateBeforeInit(t *testing.T) {
	// Without Init no systray call may happen; only state is tracked.
	SetRecording(true)
	if !IsRecording() {
		t.Error("recording state not kept")
	}
	SetRecording(false)
	SetError("ignored")
	SetLastTranscript("last words")
	if got := LastTranscript(); got != "last words" {
		t.Errorf("LastTranscript = %q", got)
	}
}

func TestIcons(t *testing.T) {
	for name, icon := range map[string][]byte{"idle": iconIdle, "rec": iconRecHi, "warn": iconWarnHi} {
		if len(icon) < 8 || string(icon[1:4]) != "PNG" {
			t.Errorf("%s icon is not a PNG", name)
		}
	}
}

func TestQuitIdempotent(t *testing.T) {
	Quit()
	Quit()
	select {
	case <-Done():
	default:
		t.Error("Done not closed after Quit")
	}
}
