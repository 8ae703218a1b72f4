// Package tui is an interactive terminal view of the running daemon.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/javanhut/Canviz/internal/ipc"
)

// Daemon is the part of the IPC client the TUI drives.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	SetWallpaper(output, path string) (string, error)
	Next(output string) (string, error)
	Previous(output string) (string, error)
	Pause(output string) (string, error)
	Resume(output string) (string, error)
	Reload() (string, error)
}

// Run starts the TUI and blocks until the user quits.
func Run(d Daemon) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
