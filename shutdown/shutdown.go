// Package shutdown routes the signals that should end a session cleanly.
package shutdown

import (
	"os"
	"os/signal"
)

// Notify relays the exit signals to ch. The process then exits 0 on its
// own terms instead of being killed.
func Notify(ch chan<- os.Signal) {
	signal.Notify(ch, signals...)
}

func Stop(ch chan<- os.Signal) {
	signal.Stop(ch)
}
