//go:build !gui

package main

import (
	"fmt"
	"os"

	"whispergroq/config"
)

func runGUI(config.Config) int {
	fmt.Fprintln(os.Stderr, "Error: built without GUI support (rebuild with -tags gui)")
	return 1
}
