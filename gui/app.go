//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"github.com/go-gl/glfw/v3.3/glfw"

	"whispergroq/overlay"
)

var modeFill = map[overlay.Mode]color.NRGBA{
	overlay.ModeRecording:  {R: 180, G: 30, B: 30, A: 230},
	overlay.ModeSaving:     {R: 170, G: 110, B: 20, A: 230},
	overlay.ModeProcessing: {R: 30, G: 90, B: 170, A: 230},
	overlay.ModeDone:       {R: 30, G: 130, B: 70, A: 230},
	overlay.ModeError:      {R: 140, G: 20, B: 40, A: 230},
}

// App hosts the borderless pill window. All window work runs on the fyne
// main loop through fyne.DoAndWait.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	bg      *canvas.Rectangle
	label   *canvas.Text
	onReady func()
	menu    []*fyne.MenuItem

	screenX, screenY int
	screenW, screenH int
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

// AddMenuItem registers a tray menu entry; call before Run.
func (a *App) AddMenuItem(label string, fn func()) {
	a.menu = append(a.menu, fyne.NewMenuItem(label, fn))
}

// Run blocks on the fyne event loop and must be called from the main
// goroutine.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.whispergroq.overlay")
	a.fyneApp.Settings().SetTheme(&pillTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		items := append([]*fyne.MenuItem{}, a.menu...)
		items = append(items, fyne.NewMenuItemSeparator(), fyne.NewMenuItem("Quit", a.Quit))
		desk.SetSystemTrayMenu(fyne.NewMenu("whispergroq", items...))
	}

	a.screenW, a.screenH = 1920, 1080
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		a.screenX, a.screenY, a.screenW, a.screenH = monitor.GetWorkarea()
	}

	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("whispergroq")
	}

	a.bg = canvas.NewRectangle(modeFill[overlay.ModeProcessing])
	a.bg.CornerRadius = overlay.CornerRadius
	a.label = canvas.NewText("", color.White)
	a.label.TextStyle = fyne.TextStyle{Bold: true}

	padded := container.New(
		layout.NewCustomPaddedLayout(overlay.PadY, overlay.PadY, overlay.PadX, overlay.PadX),
		a.label,
	)
	a.window.SetContent(container.NewStack(a.bg, padded))
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	go a.onReady()

	// The window stays hidden until the first Create.
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) layout(text string) {
	a.label.Text = text
	a.label.Refresh()
	ms := a.label.MinSize()
	size := fyne.NewSize(ms.Width+2*overlay.PadX, ms.Height+2*overlay.PadY)
	a.window.Resize(size)

	x, y := overlay.Anchor(a.screenX, a.screenY, a.screenW, a.screenH, int(size.Width), int(size.Height))
	if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
		glfwWin.SetPos(x, y)
	}
}

func (a *App) Create(mode overlay.Mode, text string) error {
	fyne.DoAndWait(func() {
		if a.window == nil {
			return
		}
		a.bg.FillColor = modeFill[mode]
		a.bg.Refresh()
		a.layout(text)

		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
	return nil
}

func (a *App) SetText(text string) error {
	fyne.DoAndWait(func() {
		if a.window != nil {
			a.layout(text)
		}
	})
	return nil
}

func (a *App) Destroy() error {
	fyne.DoAndWait(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
	return nil
}

func (a *App) SetClipboard(text string) error {
	fyne.DoAndWait(func() {
		a.fyneApp.Clipboard().SetContent(text)
	})
	return nil
}
