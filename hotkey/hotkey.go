package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	// Keydown fires once per press; auto-repeat is filtered out.
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

func send(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
