package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javanhut/Canviz/internal/ipc"
)

var (
	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
)

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(connected bool, backend string, outputs, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = fmt.Sprintf("%s daemon connected  backend:%s  outputs:%d", dot, backend, outputs)
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

func renderOutputs(outputs []ipc.OutputStatus, selected, width int) string {
	if len(outputs) == 0 {
		return dimStyle.Padding(1, 2).Render("no outputs")
	}

	var sb strings.Builder
	for i, o := range outputs {
		cursor := "  "
		name := nameStyle.Render(o.Name)
		if i == selected {
			cursor = selectedStyle.Render("▸ ")
			name = selectedStyle.Render(o.Name)
		}
		sb.WriteString(cursor + name + dimStyle.Render(fmt.Sprintf("  %dx%d@%d  %s", o.Width, o.Height, o.Scale, o.State)) + "\n")
		sb.WriteString("    " + wallpaperLabel(o.Wallpaper) + "\n")
		sb.WriteString("    " + dimStyle.Render(detailLine(o)) + "\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(width - 2)
	return box.Render(strings.TrimRight(sb.String(), "\n"))
}

func wallpaperLabel(path string) string {
	if path == "" {
		return dimStyle.Render("(fallback color)")
	}
	return filepath.Base(path) + dimStyle.Render("  "+filepath.Dir(path))
}

func detailLine(o ipc.OutputStatus) string {
	parts := []string{"transition:" + o.Transition, "mode:" + o.Mode}
	if o.Workspace != nil {
		parts = append(parts, fmt.Sprintf("workspace:%d", *o.Workspace))
	}
	switch {
	case o.SlideshowActive && o.SlideshowPaused:
		parts = append(parts, "slideshow:paused")
	case o.SlideshowActive:
		parts = append(parts, "slideshow:running")
	}
	return strings.Join(parts, "  ")
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(editing bool, width int) string {
	help := "j/k: select  n/p: next/previous  space: pause/resume  s: set path  r: reload  q: quit"
	if editing {
		help = "enter: apply  esc: cancel"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
