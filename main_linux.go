//go:build linux

package main

import "os"

func main() {
	cfg, code, ok := setup()
	if !ok {
		os.Exit(code)
	}
	if cfg.UI == "gui" && !cfg.Test && !cfg.Doctor {
		os.Exit(runGUI(cfg))
	}
	os.Exit(run(cfg, nil))
}
