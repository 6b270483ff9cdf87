package overlay

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Info is the static header of the terminal view.
type Info struct {
	Hotkey   string
	Provider string
	Model    string
	Device   string
	Version  string
}

type surfaceMsg struct {
	visible bool
	mode    Mode
	text    string
}
type textMsg struct{ text string }
type transcriptMsg struct{ text string }
type tickMsg time.Time

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	lastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))

	modeColors = map[Mode]lipgloss.Color{
		ModeRecording:  "196",
		ModeSaving:     "214",
		ModeProcessing: "39",
		ModeDone:       "42",
		ModeError:      "160",
	}
)

// pillStyle turns the pixel padding into terminal cells.
func pillStyle(mode Mode) lipgloss.Style {
	c := modeColors[mode]
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Foreground(lipgloss.Color("255")).
		Padding(PadY/10, PadX/9)
}

type tuiModel struct {
	info          Info
	width, height int
	frame         int
	surface       State
	last          string
	count         int
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func tuiTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		return m, tuiTick()
	case surfaceMsg:
		if msg.visible {
			m.surface = State{Mode: msg.mode, Text: msg.text}
		} else {
			m.surface = State{}
		}
	case textMsg:
		if m.surface.Mode != ModeHidden {
			m.surface.Text = msg.text
		}
	case transcriptMsg:
		m.count++
		m.last = msg.text
	}
	return m, nil
}

func (m tuiModel) header() string {
	var b strings.Builder
	b.WriteString(keyStyle.Render("whispergroq"))
	if m.info.Version != "" {
		b.WriteString(dimStyle.Render(" " + m.info.Version))
	}
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Hold ") + keyStyle.Render(strings.ToUpper(m.info.Hotkey)) +
		headerStyle.Render(" to record, release to transcribe"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("provider %s | model %s", m.info.Provider, m.info.Model)))
	if m.info.Device != "" {
		b.WriteString("\n" + headerStyle.Render("mic "+m.info.Device))
	}
	return b.String()
}

func (m tuiModel) pill() string {
	if m.surface.Mode == ModeHidden {
		return ""
	}
	prefix := ""
	switch m.surface.Mode {
	case ModeRecording:
		if m.frame%8 < 5 {
			prefix = lipgloss.NewStyle().Foreground(modeColors[ModeRecording]).Render("●") + " "
		} else {
			prefix = "  "
		}
	case ModeSaving, ModeProcessing:
		prefix = spinnerFrames[m.frame%len(spinnerFrames)] + " "
	}
	style := pillStyle(m.surface.Mode)
	if m.width > 12 {
		style = style.MaxWidth(m.width - 4)
	}
	return style.Render(prefix + m.surface.Text)
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	top := m.header()
	if m.last != "" {
		wrap := lipgloss.NewStyle().Width(max(m.width-2, 10))
		top += "\n\n" + dimStyle.Render(fmt.Sprintf("Last transcript (#%d)", m.count)) + "\n" +
			wrap.Render(lastStyle.Render(m.last))
	}
	top += "\n\n" + dimStyle.Render("q / ctrl+c to quit")

	rest := max(m.height-lipgloss.Height(top), 1)
	bottom := lipgloss.Place(m.width, rest, lipgloss.Center, lipgloss.Bottom, m.pill())
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// TUI renders the status pill in the terminal with bubbletea.
type TUI struct {
	program *tea.Program
	out     *termenv.Output
}

func NewTUI(info Info, opts ...tea.ProgramOption) *TUI {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &TUI{
		program: tea.NewProgram(tuiModel{info: info}, opts...),
		out:     termenv.NewOutput(os.Stdout),
	}
}

// Run blocks until the user quits the view.
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

func (t *TUI) Quit() {
	t.program.Quit()
}

// Transcript adds a finished transcript to the history panel.
func (t *TUI) Transcript(text string) {
	t.program.Send(transcriptMsg{text: text})
}

func (t *TUI) Create(mode Mode, text string) error {
	t.program.Send(surfaceMsg{visible: true, mode: mode, text: text})
	return nil
}

func (t *TUI) SetText(text string) error {
	t.program.Send(textMsg{text: text})
	return nil
}

func (t *TUI) Destroy() error {
	t.program.Send(surfaceMsg{})
	return nil
}

// SetClipboard uses the OSC52 escape, which reaches the local clipboard
// even over ssh when the terminal supports it.
func (t *TUI) SetClipboard(text string) error {
	t.out.Copy(text)
	return nil
}
