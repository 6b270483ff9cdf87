package doctor

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"whispergroq/shutdown"
)

var savedTerm *term.State

func saveTerminal() {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		savedTerm, _ = term.GetState(fd)
	}
}

// resetTerminal puts stdin back the way it was when the doctor started;
// hotkey backends can leave it in raw mode.
func resetTerminal() {
	if savedTerm != nil {
		term.Restore(int(os.Stdin.Fd()), savedTerm)
	}
}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		resetTerminal()
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		os.Exit(1)
	}()
}
