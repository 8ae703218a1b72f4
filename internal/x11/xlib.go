package x11

/*
#cgo LDFLAGS: -lX11
#include <X11/Xlib.h>
*/
import "C"

import (
	"errors"
	"unsafe"
)

// xlibDisplay is the Xlib connection EGL renders through. Windows are
// created on the xgb connection and shared by XID.
type xlibDisplay struct {
	dpy *C.Display
}

func openXlib() (*xlibDisplay, error) {
	dpy := C.XOpenDisplay(nil)
	if dpy == nil {
		return nil, errors.New("XOpenDisplay failed")
	}
	return &xlibDisplay{dpy: dpy}, nil
}

func (d *xlibDisplay) pointer() unsafe.Pointer { return unsafe.Pointer(d.dpy) }

func (d *xlibDisplay) close() {
	if d.dpy != nil {
		C.XCloseDisplay(d.dpy)
		d.dpy = nil
	}
}
