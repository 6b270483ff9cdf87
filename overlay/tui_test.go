package overlay

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func sized(m tuiModel) tuiModel {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(tuiModel)
}

func TestTUIModelSurface(t *testing.T) {
	m := sized(tuiModel{info: Info{Hotkey: "f9", Provider: "groq", Model: "whisper-large-v3-turbo"}})

	if v := m.View(); !strings.Contains(v, "F9") || !strings.Contains(v, "groq") {
		t.Errorf("header missing hotkey/provider:\n%s", v)
	}

	next, _ := m.Update(textMsg{text: "ignored"})
	m = next.(tuiModel)
	if m.surface.Mode != ModeHidden || strings.Contains(m.View(), "ignored") {
		t.Error("text update without a surface must be ignored")
	}

	next, _ = m.Update(surfaceMsg{visible: true, mode: ModeProcessing, text: "Processing audio..."})
	m = next.(tuiModel)
	if !strings.Contains(m.View(), "Processing audio...") {
		t.Errorf("pill not rendered:\n%s", m.View())
	}

	next, _ = m.Update(textMsg{text: "new text"})
	m = next.(tuiModel)
	if !strings.Contains(m.View(), "new text") {
		t.Error("text not replaced")
	}

	next, _ = m.Update(surfaceMsg{})
	m = next.(tuiModel)
	if strings.Contains(m.View(), "new text") {
		t.Error("surface still shown after destroy")
	}
}

func TestTUIModelTranscriptHistory(t *testing.T) {
	m := sized(tuiModel{})
	next, _ := m.Update(transcriptMsg{text: "hello there"})
	m = next.(tuiModel)
	if m.count != 1 || !strings.Contains(m.View(), "hello there") {
		t.Errorf("history not shown:\n%s", m.View())
	}
}

func TestTUIModelQuit(t *testing.T) {
	m := sized(tuiModel{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}
