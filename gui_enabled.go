//go:build gui

package main

import (
	"fmt"
	"os"

	"whispergroq/clipboard"
	"whispergroq/config"
	"whispergroq/gui"
	"whispergroq/tray"
)

// runGUI hands the main thread to fyne and runs the app in its ready
// callback.
func runGUI(cfg config.Config) int {
	code := 0
	var app *gui.App
	app = gui.NewApp(func() {
		code = run(cfg, app)
		app.Quit()
	})
	app.AddMenuItem("Copy last transcript", func() {
		if text := tray.LastTranscript(); text != "" {
			if err := clipboard.Copy(text); err != nil {
				app.SetClipboard(text)
			}
		}
	})
	if err := gui.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return code
}
