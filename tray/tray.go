// Package tray shows a menu bar icon with the recording state, a way to
// copy the last transcript and a Quit item.
package tray

import (
	"sync"
	"time"
	"unicode/utf8"

	"fyne.io/systray"
)

const (
	tooltipIdle  = "whispergroq – push to talk"
	copyTitle    = "Copy last transcript"
	previewLen   = 32
	errorTimeout = 10 * time.Second
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	mu         sync.Mutex
	ready      bool
	recording  bool
	lastText   string
	copyLastFn func(text string)
	mCopy      *systray.MenuItem
	stopLoop   func()
)

// OnCopyLast registers the handler for the copy menu item.
func OnCopyLast(fn func(text string)) {
	mu.Lock()
	copyLastFn = fn
	mu.Unlock()
}

// Init starts the tray and returns a channel closed when the user picks Quit.
func Init() <-chan struct{} {
	start, end := systray.RunWithExternalLoop(onReady, nil)
	mu.Lock()
	stopLoop = end
	mu.Unlock()
	runStart(start)
	return quitCh
}

// Done is closed once Quit has been called.
func Done() <-chan struct{} { return quitCh }

func onReady() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTooltip(tooltipIdle)

	copyItem := systray.AddMenuItem(copyTitle, "Copy the last transcription to the clipboard")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Quit whispergroq")

	mu.Lock()
	mCopy = copyItem
	ready = true
	if lastText == "" {
		copyItem.Disable()
	} else {
		copyItem.SetTitle(copyItemTitle(lastText))
	}
	mu.Unlock()

	go func() {
		for {
			select {
			case <-copyItem.ClickedCh:
				mu.Lock()
				fn, text := copyLastFn, lastText
				mu.Unlock()
				if fn != nil && text != "" {
					fn(text)
				}
			case <-quitItem.ClickedCh:
				Quit()
				return
			case <-quitCh:
				return
			}
		}
	}()
}

func SetRecording(rec bool) {
	mu.Lock()
	defer mu.Unlock()
	recording = rec
	if !ready {
		return
	}
	if rec {
		systray.SetIcon(iconRecHi)
	} else {
		systray.SetTemplateIcon(iconIdleHi, iconIdle)
	}
}

func IsRecording() bool {
	mu.Lock()
	defer mu.Unlock()
	return recording
}

// SetError flags the icon and shows msg in the tooltip for a while.
func SetError(msg string) {
	mu.Lock()
	isReady := ready
	mu.Unlock()
	if !isReady {
		return
	}
	systray.SetIcon(iconWarnHi)
	systray.SetTooltip("whispergroq – " + msg)
	time.AfterFunc(errorTimeout, func() {
		SetRecording(IsRecording())
		systray.SetTooltip(tooltipIdle)
	})
}

func SetLastTranscript(text string) {
	mu.Lock()
	defer mu.Unlock()
	lastText = text
	if ready && mCopy != nil && text != "" {
		mCopy.SetTitle(copyItemTitle(text))
		mCopy.Enable()
	}
}

func LastTranscript() string {
	mu.Lock()
	defer mu.Unlock()
	return lastText
}

func copyItemTitle(text string) string {
	if utf8.RuneCountInString(text) > previewLen {
		text = string([]rune(text)[:previewLen]) + "…"
	}
	return copyTitle + ": " + text
}

// Quit closes the Quit channel and tears the icon down. Safe to call more
// than once.
func Quit() {
	closeOnce.Do(func() {
		close(quitCh)
		mu.Lock()
		end := stopLoop
		mu.Unlock()
		if end != nil {
			end()
		}
	})
}
