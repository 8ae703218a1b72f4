package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor represents a physical display
type Monitor struct {
	// Output is the RandR output id driving the monitor.
	Output uint32
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR, ordered by
// output id.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		output := crtcInfo.Outputs[0]
		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), output, resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			Output: uint32(output),
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	sort.Slice(monitors, func(i, j int) bool {
		return monitors[i].Output < monitors[j].Output
	})
	return monitors, nil
}

// MonitorDiff is the change between two monitor enumerations.
type MonitorDiff struct {
	Added   []Monitor
	Removed []Monitor
	// Moved holds monitors whose geometry changed, with the new geometry.
	Moved []Monitor
}

// DiffMonitors compares enumerations by output id. Each result slice is
// ordered by output id.
func DiffMonitors(old, current []Monitor) MonitorDiff {
	prev := make(map[uint32]Monitor, len(old))
	for _, m := range old {
		prev[m.Output] = m
	}
	seen := make(map[uint32]bool, len(current))

	var diff MonitorDiff
	for _, m := range current {
		seen[m.Output] = true
		p, ok := prev[m.Output]
		switch {
		case !ok:
			diff.Added = append(diff.Added, m)
		case p != m:
			diff.Moved = append(diff.Moved, m)
		}
	}
	for _, m := range old {
		if !seen[m.Output] {
			diff.Removed = append(diff.Removed, m)
		}
	}

	byOutput := func(ms []Monitor) {
		sort.Slice(ms, func(i, j int) bool { return ms[i].Output < ms[j].Output })
	}
	byOutput(diff.Added)
	byOutput(diff.Removed)
	byOutput(diff.Moved)
	return diff
}
