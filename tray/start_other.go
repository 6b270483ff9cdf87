//go:build !darwin

package tray

func runStart(start func()) {
	start()
}
