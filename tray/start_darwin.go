package tray

import "golang.design/x/hotkey/mainthread"

// AppKit requires the status item to be created on the main thread.
func runStart(start func()) {
	mainthread.Call(start)
}
