package overlay

import "errors"

// ErrRender marks a failure of the drawing surface. The queue logs these and
// carries on.
var ErrRender = errors.New("render failed")

type Mode int

const (
	ModeHidden Mode = iota
	ModeRecording
	ModeSaving
	ModeProcessing
	ModeDone
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeRecording:
		return "recording"
	case ModeSaving:
		return "saving"
	case ModeProcessing:
		return "processing"
	case ModeDone:
		return "done"
	case ModeError:
		return "error"
	default:
		return "hidden"
	}
}

// State is what the surface currently shows.
type State struct {
	Mode Mode
	Text string
}

// Renderer draws the single status surface. The queue calls it from its
// consumer goroutine only, one call at a time.
type Renderer interface {
	Create(mode Mode, text string) error
	SetText(text string) error
	Destroy() error
	SetClipboard(text string) error
}

// Pill geometry shared by the window and terminal surfaces, in pixels.
const (
	PadX         = 18
	PadY         = 10
	CornerRadius = 12
	BottomMargin = 60
)

// Anchor returns the top-left corner that places a w x h surface at the
// bottom center of a screen.
func Anchor(screenX, screenY, screenW, screenH, w, h int) (x, y int) {
	x = screenX + (screenW-w)/2
	y = screenY + screenH - h - BottomMargin
	return max(x, screenX), max(y, screenY)
}
