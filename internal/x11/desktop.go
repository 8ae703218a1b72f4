package x11

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/ewmh"
)

// CurrentDesktop returns the current virtual desktop number (0-indexed)
// from _NET_CURRENT_DESKTOP.
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WorkspaceForDesktop maps an EWMH desktop index to a workspace id.
// Workspaces are numbered from 1 like Hyprland's.
func WorkspaceForDesktop(desktop int) int {
	return desktop + 1
}
