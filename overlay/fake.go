package overlay

import (
	"fmt"
	"strings"
	"sync"
)

// FakeRenderer records every call as a short op string such as
// "create recording Recording...".
type FakeRenderer struct {
	mu  sync.Mutex
	ops []string
	// FailOn makes calls whose op starts with this prefix fail.
	FailOn string
	clip   string
}

func (f *FakeRenderer) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
	if f.FailOn != "" && strings.HasPrefix(op, f.FailOn) {
		return fmt.Errorf("%w: injected", ErrRender)
	}
	return nil
}

func (f *FakeRenderer) Create(mode Mode, text string) error {
	return f.record("create " + mode.String() + " " + text)
}

func (f *FakeRenderer) SetText(text string) error {
	return f.record("text " + text)
}

func (f *FakeRenderer) Destroy() error {
	return f.record("destroy")
}

func (f *FakeRenderer) SetClipboard(text string) error {
	if err := f.record("clipboard " + text); err != nil {
		return err
	}
	f.mu.Lock()
	f.clip = text
	f.mu.Unlock()
	return nil
}

func (f *FakeRenderer) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *FakeRenderer) Clipboard() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clip
}
