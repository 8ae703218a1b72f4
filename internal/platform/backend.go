// Package platform defines the display-server abstraction the daemon
// drives: output discovery, layer surfaces and the blocking event loop.
package platform

import "github.com/javanhut/Canviz/internal/surface"

// Output describes a connected display as announced by the compositor.
type Output struct {
	// Global is the compositor's identifier for the output.
	Global uint32
	// Name is the connector name, empty until the compositor sends one.
	Name   string
	Width  int
	Height int
	Scale  int
}

// Key is the name the output is registered under: its connector name, or
// a placeholder derived from the global when the compositor sent none.
func (o Output) Key() string {
	if o.Name != "" {
		return o.Name
	}
	return surface.PlaceholderName(o.Global)
}

// OutputHandler receives output hotplug events.
type OutputHandler interface {
	OutputAdded(out Output)
	OutputRemoved(out Output)
}

// LayerHandler receives geometry events for background surfaces.
type LayerHandler interface {
	Configure(surfaceID uint64, width, height int)
	Closed(surfaceID uint64)
}

// CompositorHandler receives scale changes and frame callbacks.
type CompositorHandler interface {
	ScaleChanged(output string, scale int)
	FrameReady(surfaceID uint64)
}

// WorkspaceHandler receives active workspace changes. Backends check for
// it with a type assertion; it is optional.
type WorkspaceHandler interface {
	WorkspaceChanged(output string, workspace int)
}

// Handler is everything Dispatch delivers events to.
type Handler interface {
	OutputHandler
	LayerHandler
	CompositorHandler
}

// Backend abstracts a display-server connection. All methods except Wake
// must be called from the thread running Dispatch.
type Backend interface {
	Name() string
	// Graphics creates rendering contexts for this backend's surfaces.
	Graphics() surface.Graphics
	// CreateSurface places a background surface on out.
	CreateSurface(out Output) (surface.Native, error)
	// Dispatch blocks until at least one event was handled or Wake was
	// called, then returns. A non-nil error ends the event loop.
	Dispatch(h Handler) error
	// Wake interrupts a blocked Dispatch. It is safe from any goroutine.
	Wake()
	Close() error
}
