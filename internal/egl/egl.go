//go:build linux && cgo

// Package egl creates OpenGL ES 2 contexts on Wayland and X11 windows.
package egl

/*
#cgo LDFLAGS: -lEGL
#include <stdint.h>
#include <stdlib.h>
#include <EGL/egl.h>
#include <EGL/eglext.h>

#ifndef EGL_PLATFORM_WAYLAND_KHR
#define EGL_PLATFORM_WAYLAND_KHR 0x31D8
#endif
#ifndef EGL_PLATFORM_X11_KHR
#define EGL_PLATFORM_X11_KHR 0x31D5
#endif

static EGLDisplay canviz_get_display(EGLenum platform, void *native) {
	return eglGetPlatformDisplay(platform, native, NULL);
}

static EGLSurface canviz_create_surface(EGLDisplay dpy, EGLConfig cfg, EGLenum platform, uintptr_t win) {
	if (platform == EGL_PLATFORM_X11_KHR) {
		unsigned long xid = (unsigned long)win;
		return eglCreatePlatformWindowSurface(dpy, cfg, &xid, NULL);
	}
	return eglCreatePlatformWindowSurface(dpy, cfg, (void *)win, NULL);
}

static void *canviz_proc_address(const char *name) {
	return (void *)eglGetProcAddress(name);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/render/gles"
	"github.com/javanhut/Canviz/internal/surface"
)

// Platform selects how native display and window handles are read.
type Platform C.EGLenum

const (
	PlatformWayland Platform = C.EGL_PLATFORM_WAYLAND_KHR
	PlatformX11     Platform = C.EGL_PLATFORM_X11_KHR
)

// Display is an initialized EGL display with a chosen RGBA8, window
// drawable, GLES2 config.
type Display struct {
	platform Platform
	dpy      C.EGLDisplay
	config   C.EGLConfig
	log      *slog.Logger
}

// Open initializes EGL on a native display: a wl_display or an Xlib
// Display pointer.
func Open(platform Platform, native unsafe.Pointer, logger *slog.Logger) (*Display, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dpy := C.canviz_get_display(C.EGLenum(platform), native)
	if dpy == 0 {
		return nil, initError("get display")
	}

	var major, minor C.EGLint
	if C.eglInitialize(dpy, &major, &minor) == C.EGL_FALSE {
		return nil, initError("initialize")
	}
	if C.eglBindAPI(C.EGL_OPENGL_ES_API) == C.EGL_FALSE {
		C.eglTerminate(dpy)
		return nil, initError("bind GLES API")
	}

	attribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_WINDOW_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES2_BIT,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var count C.EGLint
	if C.eglChooseConfig(dpy, &attribs[0], &config, 1, &count) == C.EGL_FALSE {
		C.eglTerminate(dpy)
		return nil, initError("choose config")
	}
	if count == 0 {
		C.eglTerminate(dpy)
		return nil, &render.InitError{Stage: render.StageContext, Err: errors.New("no EGL config with RGBA8, window surface and GLES2")}
	}

	logger.Info("EGL initialized", "version", fmt.Sprintf("%d.%d", major, minor))
	return &Display{platform: platform, dpy: dpy, config: config, log: logger}, nil
}

// Terminate releases the display. Every context must be destroyed first.
func (d *Display) Terminate() {
	if d == nil || d.dpy == 0 {
		return
	}
	C.eglTerminate(d.dpy)
	d.dpy = 0
}

// Window is a native window EGL can render into. Resize and Destroy are
// optional hooks for platforms whose window object lives beside the
// native surface, such as wl_egl_window.
type Window struct {
	Handle  uintptr
	Resize  func(width, height int)
	Destroy func()
}

// CreateContext makes a GLES2 context and a window surface on win.
func (d *Display) CreateContext(win Window) (*Context, error) {
	ctxAttribs := []C.EGLint{C.EGL_CONTEXT_CLIENT_VERSION, 2, C.EGL_NONE}
	ctx := C.eglCreateContext(d.dpy, d.config, nil, &ctxAttribs[0])
	if ctx == nil {
		return nil, initError("create context")
	}
	surf := C.canviz_create_surface(d.dpy, d.config, C.EGLenum(d.platform), C.uintptr_t(win.Handle))
	if surf == nil {
		err := initError("create window surface")
		C.eglDestroyContext(d.dpy, ctx)
		return nil, err
	}
	return &Context{display: d, ctx: ctx, surf: surf, win: win}, nil
}

// Context is one EGL context and window surface. It implements
// render.Native.
type Context struct {
	display *Display
	ctx     C.EGLContext
	surf    C.EGLSurface
	win     Window
}

var _ render.Native = (*Context)(nil)

func (c *Context) MakeCurrent() error {
	if C.eglMakeCurrent(c.display.dpy, c.surf, c.surf, c.ctx) == C.EGL_FALSE {
		return fmt.Errorf("eglMakeCurrent: %s", errorString(C.eglGetError()))
	}
	return nil
}

func (c *Context) ReleaseCurrent() error {
	if C.eglMakeCurrent(c.display.dpy, nil, nil, nil) == C.EGL_FALSE {
		return fmt.Errorf("eglMakeCurrent(none): %s", errorString(C.eglGetError()))
	}
	return nil
}

func (c *Context) SwapBuffers() error {
	if C.eglSwapBuffers(c.display.dpy, c.surf) == C.EGL_FALSE {
		return fmt.Errorf("eglSwapBuffers: %s", errorString(C.eglGetError()))
	}
	return nil
}

func (c *Context) Resize(width, height int) error {
	if c.win.Resize != nil {
		c.win.Resize(width, height)
	}
	return nil
}

func (c *Context) Destroy() error {
	var errs []error
	if c.surf != nil {
		if C.eglDestroySurface(c.display.dpy, c.surf) == C.EGL_FALSE {
			errs = append(errs, fmt.Errorf("eglDestroySurface: %s", errorString(C.eglGetError())))
		}
		c.surf = nil
	}
	if c.ctx != nil {
		if C.eglDestroyContext(c.display.dpy, c.ctx) == C.EGL_FALSE {
			errs = append(errs, fmt.Errorf("eglDestroyContext: %s", errorString(C.eglGetError())))
		}
		c.ctx = nil
	}
	if c.win.Destroy != nil {
		c.win.Destroy()
		c.win.Destroy = nil
	}
	return errors.Join(errs...)
}

// ProcAddress resolves a GLES entry point.
func ProcAddress(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.canviz_proc_address(cname)
}

// WindowFunc produces the EGL window for a native surface at the given
// device-pixel size.
type WindowFunc func(native surface.Native, width, height int) (Window, error)

// Graphics implements surface.Graphics with EGL contexts and go-gl
// function tables.
type Graphics struct {
	display *Display
	window  WindowFunc
}

var _ surface.Graphics = (*Graphics)(nil)

func NewGraphics(d *Display, window WindowFunc) *Graphics {
	return &Graphics{display: d, window: window}
}

func (g *Graphics) NewContext(native surface.Native, width, height int) (*render.Context, error) {
	win, err := g.window(native, width, height)
	if err != nil {
		return nil, &render.InitError{Stage: render.StageContext, Err: err}
	}
	ec, err := g.display.CreateContext(win)
	if err != nil {
		if win.Destroy != nil {
			win.Destroy()
		}
		return nil, err
	}
	if err := ec.MakeCurrent(); err != nil {
		ec.Destroy()
		return nil, &render.InitError{Stage: render.StageContext, Err: err}
	}
	// Frame pacing comes from frame callbacks, so swaps must not block.
	C.eglSwapInterval(g.display.dpy, 0)
	if err := gles.Init(ProcAddress); err != nil {
		ec.ReleaseCurrent()
		ec.Destroy()
		return nil, &render.InitError{Stage: render.StageContext, Err: err}
	}
	return render.NewContext(ec, gles.Functions{}, width, height)
}

func initError(op string) error {
	return &render.InitError{
		Stage: render.StageContext,
		Err:   fmt.Errorf("egl %s: %s", op, errorString(C.eglGetError())),
	}
}

func errorString(code C.EGLint) string {
	switch code {
	case C.EGL_SUCCESS:
		return "success"
	case C.EGL_NOT_INITIALIZED:
		return "not initialized"
	case C.EGL_BAD_ACCESS:
		return "bad access"
	case C.EGL_BAD_ALLOC:
		return "bad alloc"
	case C.EGL_BAD_ATTRIBUTE:
		return "bad attribute"
	case C.EGL_BAD_CONFIG:
		return "bad config"
	case C.EGL_BAD_CONTEXT:
		return "bad context"
	case C.EGL_BAD_CURRENT_SURFACE:
		return "bad current surface"
	case C.EGL_BAD_DISPLAY:
		return "bad display"
	case C.EGL_BAD_MATCH:
		return "bad match"
	case C.EGL_BAD_NATIVE_PIXMAP:
		return "bad native pixmap"
	case C.EGL_BAD_NATIVE_WINDOW:
		return "bad native window"
	case C.EGL_BAD_PARAMETER:
		return "bad parameter"
	case C.EGL_BAD_SURFACE:
		return "bad surface"
	case C.EGL_CONTEXT_LOST:
		return "context lost"
	default:
		return fmt.Sprintf("error 0x%x", int(code))
	}
}
