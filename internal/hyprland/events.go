// Package hyprland follows the active workspace of every monitor through
// Hyprland's IPC sockets.
package hyprland

import (
	"strconv"
	"strings"
)

// Event is one line from the event socket, "name>>data".
type Event struct {
	Name string
	Data string
}

// ParseEvent splits an event line. Lines without ">>" are rejected.
func ParseEvent(line string) (Event, bool) {
	name, data, ok := strings.Cut(strings.TrimRight(line, "\r\n"), ">>")
	if !ok || name == "" {
		return Event{}, false
	}
	return Event{Name: name, Data: data}, true
}

// WorkspaceChange reports the workspace now shown on an output.
type WorkspaceChange struct {
	Output    string
	Workspace int
}

// Tracker turns events into per-output workspace changes. It remembers
// the focused monitor because plain workspace events do not name one.
type Tracker struct {
	focused string
	active  map[string]int
}

func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]int)}
}

// Seed records the state reported by a monitors query and returns the
// changes it implies.
func (t *Tracker) Seed(monitors []Monitor) []WorkspaceChange {
	var changes []WorkspaceChange
	for _, m := range monitors {
		if m.Focused {
			t.focused = m.Name
		}
		if c, ok := t.set(m.Name, m.ActiveWorkspace.ID); ok {
			changes = append(changes, c)
		}
	}
	return changes
}

// Apply consumes one event. It reports a change only when the output's
// workspace differs from what was last seen.
func (t *Tracker) Apply(ev Event) (WorkspaceChange, bool) {
	switch ev.Name {
	case "workspace":
		id, ok := workspaceID(ev.Data)
		if !ok {
			return WorkspaceChange{}, false
		}
		return t.set(t.focused, id)
	case "workspacev2":
		idStr, _, _ := strings.Cut(ev.Data, ",")
		id, ok := workspaceID(idStr)
		if !ok {
			return WorkspaceChange{}, false
		}
		return t.set(t.focused, id)
	case "focusedmon", "focusedmonv2":
		mon, ws, ok := strings.Cut(ev.Data, ",")
		if !ok || mon == "" {
			return WorkspaceChange{}, false
		}
		t.focused = mon
		id, ok := workspaceID(ws)
		if !ok {
			return WorkspaceChange{}, false
		}
		return t.set(mon, id)
	}
	return WorkspaceChange{}, false
}

// Focused returns the focused monitor name.
func (t *Tracker) Focused() string { return t.focused }

func (t *Tracker) set(output string, id int) (WorkspaceChange, bool) {
	if output == "" {
		return WorkspaceChange{}, false
	}
	if prev, ok := t.active[output]; ok && prev == id {
		return WorkspaceChange{}, false
	}
	t.active[output] = id
	return WorkspaceChange{Output: output, Workspace: id}, true
}

// workspaceID parses a numeric workspace. Named and special workspaces
// have no id and are skipped.
func workspaceID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
