package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/javanhut/Canviz/internal/platform"
	"github.com/javanhut/Canviz/internal/surface"
)

// allDesktops is the _NET_WM_DESKTOP value for sticky windows.
const allDesktops = 0xFFFFFFFF

// Surface is a desktop-type window covering one monitor. It implements
// surface.Native.
type Surface struct {
	backend   *Backend
	win       *xwindow.Window
	output    uint32
	destroyed bool
}

var _ surface.Native = (*Surface)(nil)

// CreateSurface maps a desktop window over out and queues its first
// configure, since a window manager is not guaranteed to send one.
func (b *Backend) CreateSurface(out platform.Output) (surface.Native, error) {
	m, ok := b.monitor(out.Global)
	if !ok {
		return nil, fmt.Errorf("monitor %s is gone", out.Key())
	}

	win, err := xwindow.Generate(b.conn.XUtil)
	if err != nil {
		return nil, fmt.Errorf("generate window id: %w", err)
	}
	err = win.CreateChecked(b.conn.Root, m.X, m.Y, m.Width, m.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		pixel(surface.FallbackR, surface.FallbackG, surface.FallbackB),
		xproto.EventMaskStructureNotify|xproto.EventMaskExposure)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	id := win.Id
	if err := ewmh.WmWindowTypeSet(b.conn.XUtil, id, []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}); err != nil {
		b.log.Warn("cannot set window type", "output", out.Key(), "error", err)
	}
	states := []string{"_NET_WM_STATE_BELOW", "_NET_WM_STATE_STICKY", "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER"}
	if err := ewmh.WmStateSet(b.conn.XUtil, id, states); err != nil {
		b.log.Warn("cannot set window state", "output", out.Key(), "error", err)
	}
	if err := ewmh.WmDesktopSet(b.conn.XUtil, id, allDesktops); err != nil {
		b.log.Warn("cannot make window sticky", "output", out.Key(), "error", err)
	}

	win.Map()
	xproto.ConfigureWindow(b.conn.XUtil.Conn(), id, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})

	s := &Surface{backend: b, win: win, output: m.Output}
	b.surfaces[s.ID()] = s

	sid, w, h := s.ID(), m.Width, m.Height
	b.enqueue(func(hd platform.Handler) { hd.Configure(sid, w, h) })
	b.log.Debug("desktop window created", "output", out.Key(), "window", id)
	return s, nil
}

func (s *Surface) ID() uint64 { return uint64(s.win.Id) }

// Window returns the X window id.
func (s *Surface) Window() uintptr { return uintptr(s.win.Id) }

// SetBufferScale is a no-op: X11 outputs always have scale 1.
func (s *Surface) SetBufferScale(int) {}

func (s *Surface) Damage(int, int) {}

func (s *Surface) RequestFrame() {
	if !s.destroyed {
		s.backend.requestFrame(s.ID())
	}
}

func (s *Surface) Commit() {}

// FillSolid sets the window background pixel and clears the window.
func (s *Surface) FillSolid(_, _ int, r, g, b uint8) error {
	if s.destroyed {
		return fmt.Errorf("window %d destroyed", s.win.Id)
	}
	conn := s.backend.conn.XUtil.Conn()
	err := xproto.ChangeWindowAttributesChecked(conn, s.win.Id, xproto.CwBackPixel, []uint32{pixel(r, g, b)}).Check()
	if err != nil {
		return fmt.Errorf("set background: %w", err)
	}
	return xproto.ClearAreaChecked(conn, false, s.win.Id, 0, 0, 0, 0).Check()
}

func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	delete(s.backend.frames, s.ID())
	delete(s.backend.surfaces, s.ID())
	s.win.Destroy()
}

// pixel packs a color for a 24-bit TrueColor visual.
func pixel(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
