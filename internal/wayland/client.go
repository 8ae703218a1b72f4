// Package wayland is the Wayland backend: a wl_display client placing one
// wlr-layer-shell background surface per output.
package wayland

/*
#cgo LDFLAGS: -lwayland-client -lwayland-egl
#include <stdlib.h>
#include <wayland-client.h>
#include <wayland-egl.h>
#include "layer_shell.h"
*/
import "C"

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"runtime/cgo"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/javanhut/Canviz/internal/egl"
	"github.com/javanhut/Canviz/internal/platform"
	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/surface"
)

// Namespace is the layer-shell namespace of every surface.
const Namespace = "canviz"

const (
	compositorVersion = 4
	outputVersion     = 4
	shmVersion        = 1
)

// ProtocolError reports a compositor event that was malformed or arrived
// for an object in the wrong state. The event is dropped.
type ProtocolError struct {
	Interface string
	Event     string
	Reason    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wayland %s.%s: %s", e.Interface, e.Event, e.Reason)
}

// Client is a connection to the compositor. Everything except Wake runs
// on the thread that calls Dispatch.
type Client struct {
	display  *C.struct_wl_display
	registry *C.struct_wl_registry
	handle   cgo.Handle
	log      *slog.Logger

	compositor        *C.struct_wl_compositor
	compositorVersion uint32
	shm               *C.struct_wl_shm
	layerShell        *C.struct_zwlr_layer_shell_v1

	outputs  map[uint32]*output
	surfaces map[uint64]*Surface
	nextID   uint64

	// events holds handler calls recorded by listeners until Dispatch
	// delivers them.
	events []func(platform.Handler)

	wakeFD int
	egl    *egl.Display
	eglErr error
}

var _ platform.Backend = (*Client)(nil)

// Connect opens the display named by WAYLAND_DISPLAY and binds the
// globals canviz needs.
func Connect(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	display := C.wl_display_connect(nil)
	if display == nil {
		return nil, errors.New("failed to connect to Wayland display")
	}

	c := &Client{
		display:  display,
		log:      logger.With("backend", platform.Wayland),
		outputs:  make(map[uint32]*output),
		surfaces: make(map[uint64]*Surface),
		wakeFD:   -1,
	}
	c.handle = cgo.NewHandle(c)
	c.registry = C.wl_display_get_registry(display)
	C.canviz_registry_add_listener(c.registry, C.uintptr_t(c.handle))

	if C.wl_display_roundtrip(display) < 0 {
		c.Close()
		return nil, errors.New("wayland registry roundtrip failed")
	}
	switch {
	case c.compositor == nil:
		c.Close()
		return nil, errors.New("compositor does not expose wl_compositor")
	case c.shm == nil:
		c.Close()
		return nil, errors.New("compositor does not expose wl_shm")
	case c.layerShell == nil:
		c.Close()
		return nil, errors.New("compositor does not support zwlr_layer_shell_v1")
	}
	// Second roundtrip collects output names, modes and scales.
	if C.wl_display_roundtrip(display) < 0 {
		c.Close()
		return nil, errors.New("wayland output roundtrip failed")
	}

	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	c.wakeFD = fd

	c.egl, c.eglErr = egl.Open(egl.PlatformWayland, unsafe.Pointer(display), c.log)
	if c.eglErr != nil {
		c.log.Error("EGL unavailable, outputs will use solid fill", "error", c.eglErr)
	}
	return c, nil
}

func (c *Client) Name() string { return platform.Wayland }

// Graphics returns EGL-backed contexts on wl_egl_window, or a provider
// that always fails when EGL could not be initialized.
func (c *Client) Graphics() surface.Graphics {
	if c.egl == nil {
		return failedGraphics{err: c.eglErr}
	}
	return egl.NewGraphics(c.egl, c.eglWindow)
}

func (c *Client) eglWindow(native surface.Native, width, height int) (egl.Window, error) {
	s, ok := native.(*Surface)
	if !ok {
		return egl.Window{}, fmt.Errorf("not a wayland surface: %T", native)
	}
	win := C.wl_egl_window_create(s.wl, C.int(width), C.int(height))
	if win == nil {
		return egl.Window{}, errors.New("wl_egl_window_create failed")
	}
	return egl.Window{
		Handle: uintptr(unsafe.Pointer(win)),
		Resize: func(w, h int) {
			C.wl_egl_window_resize(win, C.int(w), C.int(h), 0, 0)
		},
		Destroy: func() {
			C.wl_egl_window_destroy(win)
		},
	}, nil
}

// Dispatch delivers queued events, then blocks in poll on the display
// and wake fds, reads and dispatches whatever arrived and delivers again.
func (c *Client) Dispatch(h platform.Handler) error {
	c.deliver(h)

	ready, err := c.prepareRead(nativeReader{c}, h)
	if err != nil || !ready {
		return err
	}
	if n, err := C.wl_display_flush(c.display); n < 0 && !errors.Is(err, unix.EAGAIN) {
		C.wl_display_cancel_read(c.display)
		return fmt.Errorf("wayland flush: %w", err)
	}

	fds := []unix.PollFd{
		{Fd: int32(C.wl_display_get_fd(c.display)), Events: unix.POLLIN},
		{Fd: int32(c.wakeFD), Events: unix.POLLIN},
	}
	for {
		_, err := unix.Poll(fds, -1)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EINTR) {
			C.wl_display_cancel_read(c.display)
			return fmt.Errorf("poll: %w", err)
		}
	}

	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
		C.wl_display_cancel_read(c.display)
		return errors.New("wayland connection closed by compositor")
	}
	if fds[0].Revents&unix.POLLIN != 0 {
		if C.wl_display_read_events(c.display) < 0 {
			return c.displayError("read events")
		}
	} else {
		C.wl_display_cancel_read(c.display)
	}
	if fds[1].Revents&unix.POLLIN != 0 {
		var buf [8]byte
		_, _ = unix.Read(c.wakeFD, buf[:])
	}

	if C.wl_display_dispatch_pending(c.display) < 0 {
		return c.displayError("dispatch")
	}
	c.deliver(h)
	C.wl_display_flush(c.display)
	return nil
}

// displayReader is the part of the wl_display read protocol that runs
// before blocking on the socket.
type displayReader interface {
	prepareRead() bool
	dispatchPending() error
	cancelRead()
	flush()
}

type nativeReader struct{ c *Client }

func (r nativeReader) prepareRead() bool { return C.wl_display_prepare_read(r.c.display) == 0 }
func (r nativeReader) cancelRead()       { C.wl_display_cancel_read(r.c.display) }
func (r nativeReader) flush()            { C.wl_display_flush(r.c.display) }

func (r nativeReader) dispatchPending() error {
	if C.wl_display_dispatch_pending(r.c.display) < 0 {
		return r.c.displayError("dispatch pending")
	}
	return nil
}

// prepareRead takes the read intent on the display. Events already sitting
// in the default queue are dispatched first; when their listeners recorded
// handler calls, the intent is dropped and the calls are delivered
// without polling: EGL reads the socket on its own queue and can leave
// events here that no poll wakeup announces.
func (c *Client) prepareRead(r displayReader, h platform.Handler) (bool, error) {
	for !r.prepareRead() {
		if err := r.dispatchPending(); err != nil {
			return false, err
		}
	}
	if len(c.events) == 0 {
		return true, nil
	}
	r.cancelRead()
	c.deliver(h)
	r.flush()
	return false, nil
}

// Wake interrupts a blocked Dispatch.
func (c *Client) Wake() {
	if c.wakeFD < 0 {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, _ = unix.Write(c.wakeFD, buf[:])
}

func (c *Client) deliver(h platform.Handler) {
	for len(c.events) > 0 {
		events := c.events
		c.events = nil
		for _, ev := range events {
			ev(h)
		}
	}
}

func (c *Client) queue(ev func(platform.Handler)) {
	c.events = append(c.events, ev)
}

func (c *Client) protocolError(iface, event, reason string) {
	err := &ProtocolError{Interface: iface, Event: event, Reason: reason}
	c.log.Warn("ignoring compositor event", "error", err)
}

func (c *Client) displayError(op string) error {
	code := unix.Errno(C.wl_display_get_error(c.display))
	if code == unix.EPROTO {
		var iface *C.struct_wl_interface
		var id C.uint32_t
		perr := C.wl_display_get_protocol_error(c.display, &iface, &id)
		name := "unknown"
		if iface != nil {
			name = C.GoString(iface.name)
		}
		return fmt.Errorf("wayland %s: %w", op, &ProtocolError{
			Interface: name,
			Event:     "error",
			Reason:    fmt.Sprintf("code %d on object %d", uint32(perr), uint32(id)),
		})
	}
	return fmt.Errorf("wayland %s: %w", op, code)
}

// CreateSurface places a background layer surface on out and commits it
// so the compositor sends the first configure.
func (c *Client) CreateSurface(out platform.Output) (surface.Native, error) {
	o, ok := c.outputs[out.Global]
	if !ok {
		return nil, fmt.Errorf("output %s is gone", out.Key())
	}

	wl := C.wl_compositor_create_surface(c.compositor)
	if wl == nil {
		return nil, errors.New("wl_compositor.create_surface failed")
	}
	ns := C.CString(Namespace)
	defer C.free(unsafe.Pointer(ns))
	layer := C.canviz_get_layer_surface(c.layerShell, wl, o.proxy, C.CANVIZ_LAYER_BACKGROUND, ns)
	if layer == nil {
		C.wl_surface_destroy(wl)
		return nil, errors.New("zwlr_layer_shell_v1.get_layer_surface failed")
	}

	c.nextID++
	s := &Surface{client: c, id: c.nextID, output: out.Key(), wl: wl, layer: layer}
	s.handle = cgo.NewHandle(s)
	c.surfaces[s.id] = s

	C.canviz_layer_surface_set_background(layer)
	C.canviz_layer_surface_add_listener(layer, C.uintptr_t(s.handle))
	if out.Scale > 1 {
		s.SetBufferScale(out.Scale)
	}
	C.wl_surface_commit(wl)
	c.log.Debug("layer surface created", "output", s.output, "id", s.id)
	return s, nil
}

// Close releases every global and disconnects. Surfaces must have been
// destroyed first.
func (c *Client) Close() error {
	for _, s := range c.surfaces {
		s.Destroy()
	}
	for global, o := range c.outputs {
		o.release()
		delete(c.outputs, global)
	}
	if c.egl != nil {
		c.egl.Terminate()
		c.egl = nil
	}
	if c.layerShell != nil {
		C.canviz_layer_shell_destroy(c.layerShell)
		c.layerShell = nil
	}
	if c.shm != nil {
		C.wl_shm_destroy(c.shm)
		c.shm = nil
	}
	if c.compositor != nil {
		C.wl_compositor_destroy(c.compositor)
		c.compositor = nil
	}
	if c.registry != nil {
		C.wl_registry_destroy(c.registry)
		c.registry = nil
	}
	if c.display != nil {
		C.wl_display_disconnect(c.display)
		c.display = nil
	}
	if c.wakeFD >= 0 {
		unix.Close(c.wakeFD)
		c.wakeFD = -1
	}
	if c.handle != 0 {
		c.handle.Delete()
		c.handle = 0
	}
	return nil
}

func (c *Client) bindGlobal(name uint32, iface string, version uint32) {
	switch iface {
	case "wl_compositor":
		v := min(version, compositorVersion)
		c.compositor = (*C.struct_wl_compositor)(C.wl_registry_bind(c.registry, C.uint32_t(name), &C.wl_compositor_interface, C.uint32_t(v)))
		c.compositorVersion = v
	case "wl_shm":
		c.shm = (*C.struct_wl_shm)(C.wl_registry_bind(c.registry, C.uint32_t(name), &C.wl_shm_interface, shmVersion))
	case "zwlr_layer_shell_v1":
		v := min(version, C.CANVIZ_LAYER_SHELL_VERSION)
		c.layerShell = (*C.struct_zwlr_layer_shell_v1)(C.wl_registry_bind(c.registry, C.uint32_t(name), &C.zwlr_layer_shell_v1_interface, C.uint32_t(v)))
	case "wl_output":
		if version < 2 {
			c.protocolError("wl_registry", "global", fmt.Sprintf("wl_output version %d is too old", version))
			return
		}
		v := min(version, outputVersion)
		proxy := (*C.struct_wl_output)(C.wl_registry_bind(c.registry, C.uint32_t(name), &C.wl_output_interface, C.uint32_t(v)))
		o := &output{client: c, global: name, version: v, proxy: proxy, scale: 1, pendingScale: 1}
		o.handle = cgo.NewHandle(o)
		c.outputs[name] = o
		C.canviz_output_add_listener(proxy, C.uintptr_t(o.handle))
		c.log.Debug("output bound", "global", name, "version", v)
	}
}

func (c *Client) removeGlobal(name uint32) {
	o, ok := c.outputs[name]
	if !ok {
		return
	}
	delete(c.outputs, name)
	announced := o.announced
	info := o.info()
	o.release()
	if announced {
		c.queue(func(h platform.Handler) { h.OutputRemoved(info) })
	}
}

type failedGraphics struct{ err error }

func (g failedGraphics) NewContext(surface.Native, int, int) (*render.Context, error) {
	return nil, &render.InitError{Stage: render.StageContext, Err: g.err}
}
