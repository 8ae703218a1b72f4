package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/javanhut/Canviz/internal/egl"
	"github.com/javanhut/Canviz/internal/platform"
	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/surface"
)

// frameInterval stands in for compositor frame callbacks.
const frameInterval = 16 * time.Millisecond

type xevent struct {
	ev  xgb.Event
	err xgb.Error
}

// Backend drives desktop windows on an X server. Dispatch and every
// surface method run on one thread; the event reader goroutine only
// forwards raw events.
type Backend struct {
	conn *Connection
	log  *slog.Logger

	events chan xevent
	wake   chan struct{}

	desktopAtom xproto.Atom
	monitors    []Monitor
	surfaces    map[uint64]*Surface

	frames   map[uint64]struct{}
	frameDue time.Time

	queue []func(platform.Handler)

	xlib   *xlibDisplay
	egl    *egl.Display
	eglErr error
}

var _ platform.Backend = (*Backend)(nil)

// Connect opens the X server named by DISPLAY, enumerates monitors and
// queues an OutputAdded for each one.
func Connect(logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.ListenRoot(); err != nil {
		conn.Close()
		return nil, err
	}
	atom, err := xprop.Atm(conn.XUtil, "_NET_CURRENT_DESKTOP")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("intern _NET_CURRENT_DESKTOP: %w", err)
	}

	b := &Backend{
		conn:        conn,
		log:         logger.With("backend", platform.X11),
		events:      make(chan xevent, 64),
		wake:        make(chan struct{}, 1),
		desktopAtom: atom,
		surfaces:    make(map[uint64]*Surface),
		frames:      make(map[uint64]struct{}),
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		conn.Close()
		return nil, err
	}
	b.apply(DiffMonitors(nil, monitors))
	b.monitors = monitors
	b.desktopChanged()

	b.xlib, err = openXlib()
	if err == nil {
		b.egl, b.eglErr = egl.Open(egl.PlatformX11, b.xlib.pointer(), b.log)
	} else {
		b.eglErr = err
	}
	if b.eglErr != nil {
		b.log.Error("EGL unavailable, outputs will use solid fill", "error", b.eglErr)
	}

	go b.readEvents()
	return b, nil
}

func (b *Backend) Name() string { return platform.X11 }

func (b *Backend) readEvents() {
	defer close(b.events)
	for {
		ev, err := b.conn.XUtil.Conn().WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		b.events <- xevent{ev: ev, err: err}
	}
}

// Graphics returns EGL contexts on the desktop windows.
func (b *Backend) Graphics() surface.Graphics {
	if b.egl == nil {
		return failedGraphics{err: b.eglErr}
	}
	return egl.NewGraphics(b.egl, func(native surface.Native, _, _ int) (egl.Window, error) {
		s, ok := native.(*Surface)
		if !ok {
			return egl.Window{}, fmt.Errorf("not an x11 surface: %T", native)
		}
		// The EGL surface follows the X window size by itself.
		return egl.Window{Handle: uintptr(s.win.Id)}, nil
	})
}

// Dispatch handles X events until one arrived, the frame timer fired or
// Wake was called.
func (b *Backend) Dispatch(h platform.Handler) error {
	b.deliver(h)

	var tick <-chan time.Time
	if len(b.frames) > 0 {
		timer := time.NewTimer(max(time.Until(b.frameDue), 0))
		defer timer.Stop()
		tick = timer.C
	}

	select {
	case ev, ok := <-b.events:
		if !ok {
			return errors.New("X11 connection closed")
		}
		b.handle(ev)
	case <-b.wake:
	case <-tick:
		b.fireFrames()
	}

drain:
	for {
		select {
		case ev, ok := <-b.events:
			if !ok {
				return errors.New("X11 connection closed")
			}
			b.handle(ev)
		default:
			break drain
		}
	}

	b.deliver(h)
	return nil
}

// Wake interrupts a blocked Dispatch.
func (b *Backend) Wake() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Backend) deliver(h platform.Handler) {
	for len(b.queue) > 0 {
		queue := b.queue
		b.queue = nil
		for _, ev := range queue {
			ev(h)
		}
	}
}

func (b *Backend) enqueue(ev func(platform.Handler)) {
	b.queue = append(b.queue, ev)
}

func (b *Backend) handle(e xevent) {
	if e.err != nil {
		b.log.Warn("X error", "error", e.err)
		return
	}
	switch ev := e.ev.(type) {
	case xproto.ConfigureNotifyEvent:
		if s, ok := b.surfaces[uint64(ev.Window)]; ok {
			id, w, h := s.ID(), int(ev.Width), int(ev.Height)
			b.enqueue(func(hd platform.Handler) { hd.Configure(id, w, h) })
		}
	case xproto.ExposeEvent:
		if s, ok := b.surfaces[uint64(ev.Window)]; ok && ev.Count == 0 {
			b.requestFrame(s.ID())
		}
	case xproto.DestroyNotifyEvent:
		if s, ok := b.surfaces[uint64(ev.Window)]; ok && !s.destroyed {
			id := s.ID()
			b.enqueue(func(hd platform.Handler) { hd.Closed(id) })
		}
	case xproto.PropertyNotifyEvent:
		if ev.Window == b.conn.Root && ev.Atom == b.desktopAtom {
			b.desktopChanged()
		}
	case randr.ScreenChangeNotifyEvent:
		b.refreshMonitors()
	}
}

func (b *Backend) refreshMonitors() {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		b.log.Warn("monitor refresh failed", "error", err)
		return
	}
	diff := DiffMonitors(b.monitors, monitors)
	b.monitors = monitors
	b.apply(diff)
}

func (b *Backend) apply(diff MonitorDiff) {
	for _, m := range diff.Removed {
		out := outputFor(m)
		b.log.Info("monitor removed", "output", out.Key())
		b.enqueue(func(h platform.Handler) { h.OutputRemoved(out) })
	}
	for _, m := range diff.Added {
		out := outputFor(m)
		b.log.Info("monitor discovered", "output", out.Key(), "width", m.Width, "height", m.Height)
		b.enqueue(func(h platform.Handler) { h.OutputAdded(out) })
	}
	for _, m := range diff.Moved {
		for _, s := range b.surfaces {
			if s.output == m.Output {
				s.win.MoveResize(m.X, m.Y, m.Width, m.Height)
			}
		}
	}
}

func (b *Backend) desktopChanged() {
	desktop, err := b.conn.CurrentDesktop()
	if err != nil {
		b.log.Debug("no current desktop", "error", err)
		return
	}
	ws := WorkspaceForDesktop(desktop)
	names := make([]string, 0, len(b.monitors))
	for _, m := range b.monitors {
		names = append(names, outputFor(m).Key())
	}
	b.enqueue(func(h platform.Handler) {
		wh, ok := h.(platform.WorkspaceHandler)
		if !ok {
			return
		}
		for _, name := range names {
			wh.WorkspaceChanged(name, ws)
		}
	})
}

func (b *Backend) requestFrame(id uint64) {
	if len(b.frames) == 0 {
		b.frameDue = time.Now().Add(frameInterval)
	}
	b.frames[id] = struct{}{}
}

func (b *Backend) fireFrames() {
	for id := range b.frames {
		b.enqueue(func(h platform.Handler) { h.FrameReady(id) })
	}
	clear(b.frames)
}

func (b *Backend) monitor(output uint32) (Monitor, bool) {
	for _, m := range b.monitors {
		if m.Output == output {
			return m, true
		}
	}
	return Monitor{}, false
}

// Close destroys remaining windows and disconnects both connections.
func (b *Backend) Close() error {
	for _, s := range b.surfaces {
		s.Destroy()
	}
	if b.egl != nil {
		b.egl.Terminate()
		b.egl = nil
	}
	if b.xlib != nil {
		b.xlib.close()
		b.xlib = nil
	}
	b.conn.Close()
	return nil
}

func outputFor(m Monitor) platform.Output {
	return platform.Output{
		Global: m.Output,
		Name:   m.Name,
		Width:  m.Width,
		Height: m.Height,
		Scale:  1,
	}
}

type failedGraphics struct{ err error }

func (g failedGraphics) NewContext(surface.Native, int, int) (*render.Context, error) {
	return nil, &render.InitError{Stage: render.StageContext, Err: g.err}
}
