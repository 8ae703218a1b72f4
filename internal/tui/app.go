package tui

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javanhut/Canviz/internal/ipc"
)

const refreshInterval = 2 * time.Second

type statusMsg struct {
	status *ipc.StatusData
	err    error
}

type resultMsg struct {
	message string
	err     error
}

type tickMsg time.Time

// model is the root bubbletea model for the TUI.
type model struct {
	daemon Daemon

	// Daemon state
	connected bool
	backend   string
	outputs   []ipc.OutputStatus
	selected  int

	// Last command result
	message string
	lastErr string

	// Set-path prompt
	editing bool
	input   textinput.Model

	// Terminal dimensions
	width  int
	height int
}

func newModel(d Daemon) model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/image.png or directory"
	ti.CharLimit = 512

	return model{
		daemon: d,
		input:  ti,
	}
}

func (m model) fetchStatus() tea.Msg {
	status, err := m.daemon.GetStatus()
	return statusMsg{status: status, err: err}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// run wraps a daemon call so its result arrives as a message.
func run(call func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		msg, err := call()
		return resultMsg{message: msg, err: err}
	}
}

// target is the selected output name, or "" for all outputs when
// nothing is listed.
func (m model) target() string {
	if m.selected < 0 || m.selected >= len(m.outputs) {
		return ""
	}
	return m.outputs[m.selected].Name
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus, tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.connected = false
			m.outputs = nil
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.backend = msg.status.Backend
		m.outputs = msg.status.Outputs
		if m.selected >= len(m.outputs) {
			m.selected = len(m.outputs) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			m.message = ""
		} else {
			m.lastErr = ""
			m.message = msg.message
		}
		return m, m.fetchStatus

	case tickMsg:
		return m, tea.Batch(m.fetchStatus, tick())
	}

	if m.editing {
		return m.updateEditing(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	target := m.target()
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.outputs)-1 {
			m.selected++
		}
	case "n":
		return m, run(func() (string, error) { return m.daemon.Next(target) })
	case "p":
		return m, run(func() (string, error) { return m.daemon.Previous(target) })
	case " ":
		if m.selected < len(m.outputs) && m.outputs[m.selected].SlideshowPaused {
			return m, run(func() (string, error) { return m.daemon.Resume(target) })
		}
		return m, run(func() (string, error) { return m.daemon.Pause(target) })
	case "r":
		return m, run(m.daemon.Reload)
	case "s":
		m.editing = true
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.editing = false
			m.input.Blur()
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			if abs, err := filepath.Abs(path); err == nil && !strings.HasPrefix(path, "~") {
				path = abs
			}
			target := m.target()
			return m, run(func() (string, error) { return m.daemon.SetWallpaper(target, path) })
		case "esc":
			m.editing = false
			m.input.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	statusBar := renderStatusBar(m.connected, m.backend, len(m.outputs), width)
	body := renderOutputs(m.outputs, m.selected, width)

	var footer string
	switch {
	case m.editing:
		footer = promptStyle.Render("Set wallpaper for "+targetLabel(m.target())+":") + "\n" + m.input.View()
	case m.lastErr != "":
		footer = errStyle.Render("Error: " + m.lastErr)
	case m.message != "":
		footer = okStyle.Render(m.message)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		body,
		footer,
		renderHelpBar(m.editing, width),
	)
}

func targetLabel(name string) string {
	if name == "" {
		return "all outputs"
	}
	return name
}
