package wayland

/*
#include <wayland-client.h>
*/
import "C"

import (
	"runtime/cgo"

	"github.com/javanhut/Canviz/internal/platform"
)

// output tracks one bound wl_output. Property events are staged and
// applied on done.
type output struct {
	client  *Client
	global  uint32
	version uint32
	proxy   *C.struct_wl_output
	handle  cgo.Handle

	name   string
	width  int
	height int
	scale  int

	pendingName  string
	pendingScale int

	announced bool
}

func (o *output) info() platform.Output {
	return platform.Output{
		Global: o.global,
		Name:   o.name,
		Width:  o.width,
		Height: o.height,
		Scale:  o.scale,
	}
}

func (o *output) setMode(width, height int) {
	if width <= 0 || height <= 0 {
		o.client.protocolError("wl_output", "mode", "non-positive size")
		return
	}
	o.width, o.height = width, height
}

func (o *output) setScale(factor int) {
	if factor < 1 {
		o.client.protocolError("wl_output", "scale", "factor below 1")
		return
	}
	o.pendingScale = factor
}

func (o *output) setName(name string) {
	if o.announced && name != o.name {
		o.client.protocolError("wl_output", "name", "name changed after done")
		return
	}
	o.pendingName = name
}

// done applies staged properties. The first done announces the output;
// later ones report scale changes.
func (o *output) done() {
	if !o.announced {
		o.name = o.pendingName
		o.scale = o.pendingScale
		o.announced = true
		info := o.info()
		o.client.log.Info("output discovered", "output", info.Key(), "width", info.Width, "height", info.Height, "scale", info.Scale)
		o.client.queue(func(h platform.Handler) { h.OutputAdded(info) })
		return
	}
	if o.pendingScale != o.scale {
		o.scale = o.pendingScale
		key, scale := o.info().Key(), o.scale
		o.client.queue(func(h platform.Handler) { h.ScaleChanged(key, scale) })
	}
}

func (o *output) release() {
	if o.proxy != nil {
		if o.version >= 3 {
			C.wl_output_release(o.proxy)
		} else {
			C.wl_output_destroy(o.proxy)
		}
		o.proxy = nil
	}
	if o.handle != 0 {
		o.handle.Delete()
		o.handle = 0
	}
}
