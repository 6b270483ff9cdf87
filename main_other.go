//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg, code, ok := setup()
	if !ok {
		os.Exit(code)
	}
	if cfg.UI == "gui" && !cfg.Test && !cfg.Doctor {
		// fyne takes the main thread and runs the app in a goroutine
		os.Exit(runGUI(cfg))
	}
	mainthread.Init(func() { code = run(cfg, nil) })
	os.Exit(code)
}
