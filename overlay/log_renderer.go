package overlay

import (
	"fmt"

	"whispergroq/log"
)

// LogRenderer is the surface for headless runs: every change becomes a
// diagnostics line and, when Echo is set, a line on stdout.
type LogRenderer struct {
	Echo bool
}

func (l *LogRenderer) emit(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Info("overlay " + msg)
	if l.Echo {
		fmt.Println(msg)
	}
}

func (l *LogRenderer) Create(mode Mode, text string) error {
	l.emit("[%s] %s", mode, text)
	return nil
}

func (l *LogRenderer) SetText(text string) error {
	l.emit("  %s", text)
	return nil
}

func (l *LogRenderer) Destroy() error {
	log.Info("overlay closed")
	return nil
}

func (l *LogRenderer) SetClipboard(string) error {
	return fmt.Errorf("%w: no clipboard without a display", ErrRender)
}
