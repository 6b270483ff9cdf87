package clipboard

import "sync"

// Fake records copies and pastes in memory.
type Fake struct {
	mu       sync.Mutex
	text     string
	copies   []string
	pastes   int
	CopyErr  error
	PasteErr error
}

func (f *Fake) Copy(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copies = append(f.copies, text)
	if f.CopyErr != nil {
		return f.CopyErr
	}
	f.text = text
	return nil
}

func (f *Fake) Paste() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pastes++
	return f.PasteErr
}

func (f *Fake) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *Fake) Copies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.copies...)
}

func (f *Fake) Pastes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pastes
}
