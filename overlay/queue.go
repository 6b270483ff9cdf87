package overlay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"whispergroq/log"
)

const DefaultInterval = 100 * time.Millisecond

type cmdKind int

const (
	cmdShow cmdKind = iota
	cmdUpdate
	cmdUpdateMode
	cmdClose
	cmdClipboard
)

type command struct {
	kind cmdKind
	mode Mode
	text string
}

// Queue is an ordered mailbox of presentation commands. Any goroutine may
// enqueue; a single consumer (Run or Tick) applies them through the
// Renderer, which is never touched from anywhere else.
type Queue struct {
	r        Renderer
	interval time.Duration

	mu      sync.Mutex
	pending []command

	// consumer-owned
	consumeMu sync.Mutex
	state     State

	stateMu  sync.RWMutex
	snapshot State
}

func NewQueue(r Renderer, interval time.Duration) *Queue {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Queue{r: r, interval: interval}
}

func (q *Queue) push(c command) {
	q.mu.Lock()
	q.pending = append(q.pending, c)
	q.mu.Unlock()
}

// Show creates the surface if none exists; otherwise it acts as UpdateMode.
func (q *Queue) Show(mode Mode, text string) {
	q.push(command{kind: cmdShow, mode: mode, text: text})
}

// Update replaces the text of the current surface and is dropped when
// nothing is shown.
func (q *Queue) Update(text string) {
	q.push(command{kind: cmdUpdate, text: text})
}

// UpdateMode recreates the surface when the mode changes, otherwise it
// replaces the text.
func (q *Queue) UpdateMode(mode Mode, text string) {
	q.push(command{kind: cmdUpdateMode, mode: mode, text: text})
}

func (q *Queue) Close() {
	q.push(command{kind: cmdClose})
}

// SetClipboard asks the surface to set the clipboard from the consumer side.
func (q *Queue) SetClipboard(text string) {
	q.push(command{kind: cmdClipboard, text: text})
}

func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// State reports what the consumer last applied.
func (q *Queue) State() State {
	q.stateMu.RLock()
	defer q.stateMu.RUnlock()
	return q.snapshot
}

// Run drains the mailbox every interval until ctx is done. Commands still
// pending at that point are applied before returning.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			q.Tick()
			return
		case <-ticker.C:
			q.Tick()
		}
	}
}

// Tick applies every pending command in enqueue order and returns how many
// were applied.
func (q *Queue) Tick() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	q.consumeMu.Lock()
	defer q.consumeMu.Unlock()
	for _, c := range batch {
		q.safeApply(c)
	}

	q.stateMu.Lock()
	q.snapshot = q.state
	q.stateMu.Unlock()
	return len(batch)
}

func (q *Queue) safeApply(c command) {
	defer func() {
		if r := recover(); r != nil {
			q.check("apply", fmt.Errorf("panic: %v", r))
		}
	}()
	q.apply(c)
}

func (q *Queue) apply(c command) {
	visible := q.state.Mode != ModeHidden
	switch c.kind {
	case cmdShow, cmdUpdateMode:
		switch {
		case !visible:
			q.create(c.mode, c.text)
		case q.state.Mode != c.mode:
			q.destroy()
			q.create(c.mode, c.text)
		default:
			q.setText(c.text)
		}
	case cmdUpdate:
		if visible {
			q.setText(c.text)
		}
	case cmdClose:
		if visible {
			q.destroy()
		}
	case cmdClipboard:
		q.check("clipboard", q.r.SetClipboard(c.text))
	}
}

func (q *Queue) create(mode Mode, text string) {
	if mode == ModeHidden {
		return
	}
	if q.check("create", q.r.Create(mode, text)) {
		q.state = State{Mode: mode, Text: text}
	}
}

func (q *Queue) setText(text string) {
	if q.check("update", q.r.SetText(text)) {
		q.state.Text = text
	}
}

func (q *Queue) destroy() {
	q.check("close", q.r.Destroy())
	q.state = State{}
}

func (q *Queue) check(op string, err error) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrRender) {
		err = fmt.Errorf("%w: %v", ErrRender, err)
	}
	log.Warnf("overlay %s: %v", op, err)
	return false
}
