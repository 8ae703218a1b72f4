package wayland

/*
#include <wayland-client.h>
#include "layer_shell.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime/cgo"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/javanhut/Canviz/internal/platform"
	"github.com/javanhut/Canviz/internal/surface"
)

const shmFormatXRGB8888 = 1

// Surface is a wl_surface with a background layer role. It implements
// surface.Native.
type Surface struct {
	client *Client
	id     uint64
	output string
	handle cgo.Handle

	wl    *C.struct_wl_surface
	layer *C.struct_zwlr_layer_surface_v1
	frame *C.struct_wl_callback

	closed bool
}

var _ surface.Native = (*Surface)(nil)

func (s *Surface) ID() uint64 { return s.id }

// Window returns the wl_surface pointer.
func (s *Surface) Window() uintptr { return uintptr(unsafe.Pointer(s.wl)) }

func (s *Surface) SetBufferScale(scale int) {
	if s.wl == nil || s.client.compositorVersion < 3 {
		return
	}
	C.wl_surface_set_buffer_scale(s.wl, C.int32_t(scale))
}

func (s *Surface) Damage(width, height int) {
	if s.wl == nil {
		return
	}
	if s.client.compositorVersion >= 4 {
		C.wl_surface_damage_buffer(s.wl, 0, 0, C.int32_t(width), C.int32_t(height))
		return
	}
	C.wl_surface_damage(s.wl, 0, 0, C.int32_t(width), C.int32_t(height))
}

// RequestFrame asks for a frame callback. A callback already pending is
// reused.
func (s *Surface) RequestFrame() {
	if s.wl == nil || s.frame != nil {
		return
	}
	s.frame = C.wl_surface_frame(s.wl)
	C.canviz_frame_add_listener(s.frame, C.uintptr_t(s.handle))
}

func (s *Surface) Commit() {
	if s.wl == nil {
		return
	}
	C.wl_surface_commit(s.wl)
}

// FillSolid attaches a wl_shm buffer of one color and commits it.
func (s *Surface) FillSolid(width, height int, r, g, b uint8) error {
	if s.wl == nil {
		return errors.New("surface destroyed")
	}
	buf, err := s.client.solidBuffer(width, height, r, g, b)
	if err != nil {
		return err
	}
	C.wl_surface_attach(s.wl, buf, 0, 0)
	s.Damage(width, height)
	C.wl_surface_commit(s.wl)
	return nil
}

// Destroy drops the frame callback, the layer role and the wl_surface.
func (s *Surface) Destroy() {
	if s.wl == nil {
		return
	}
	if s.frame != nil {
		C.wl_callback_destroy(s.frame)
		s.frame = nil
	}
	C.canviz_layer_surface_destroy(s.layer)
	C.wl_surface_destroy(s.wl)
	s.layer = nil
	s.wl = nil
	s.handle.Delete()
	delete(s.client.surfaces, s.id)
}

func (s *Surface) configure(width, height uint32) {
	if s.closed {
		s.client.protocolError("zwlr_layer_surface_v1", "configure", "surface already closed")
		return
	}
	id, w, h := s.id, int(width), int(height)
	s.client.queue(func(hd platform.Handler) { hd.Configure(id, w, h) })
}

func (s *Surface) close() {
	s.closed = true
	id := s.id
	s.client.queue(func(hd platform.Handler) { hd.Closed(id) })
}

func (s *Surface) frameDone() {
	if s.frame != nil {
		C.wl_callback_destroy(s.frame)
		s.frame = nil
	}
	id := s.id
	s.client.queue(func(hd platform.Handler) { hd.FrameReady(id) })
}

type shmBuffer struct {
	proxy  *C.struct_wl_buffer
	handle cgo.Handle
}

// solidBuffer creates an XRGB8888 buffer in a memfd-backed pool. The
// buffer destroys itself when the compositor releases it.
func (c *Client) solidBuffer(width, height int, r, g, b uint8) (*C.struct_wl_buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	stride := width * 4
	size := stride * height

	fd, err := unix.MemfdCreate("canviz-shm", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	defer unix.Close(fd)
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return nil, fmt.Errorf("ftruncate: %w", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	fillXRGB(data, r, g, b)
	if err := unix.Munmap(data); err != nil {
		return nil, fmt.Errorf("munmap: %w", err)
	}

	pool := C.wl_shm_create_pool(c.shm, C.int32_t(fd), C.int32_t(size))
	buf := C.wl_shm_pool_create_buffer(pool, 0, C.int32_t(width), C.int32_t(height), C.int32_t(stride), shmFormatXRGB8888)
	C.wl_shm_pool_destroy(pool)
	if buf == nil {
		return nil, errors.New("wl_shm_pool.create_buffer failed")
	}

	sb := &shmBuffer{proxy: buf}
	sb.handle = cgo.NewHandle(sb)
	C.canviz_buffer_add_listener(buf, C.uintptr_t(sb.handle))
	return buf, nil
}

func (b *shmBuffer) release() {
	C.wl_buffer_destroy(b.proxy)
	b.handle.Delete()
}

// fillXRGB writes one little-endian XRGB8888 color over pix.
func fillXRGB(pix []byte, r, g, b uint8) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = b
		pix[i+1] = g
		pix[i+2] = r
		pix[i+3] = 0xff
	}
}
