package render

import (
	"errors"
	"fmt"
)

// Native is the platform half of a rendering context: an EGL context and
// window surface bound to one output.
type Native interface {
	MakeCurrent() error
	ReleaseCurrent() error
	SwapBuffers() error
	Resize(width, height int) error
	// Destroy frees the window surface and context. The context must not
	// be current.
	Destroy() error
}

// Context is one output's graphics context. Viewport sizes are in device
// pixels.
type Context struct {
	native Native
	gl     GL
	width  int
	height int
	gen    uint64
	closed bool
}

// bound is the context current on the event loop thread. All contexts are
// driven from that one thread.
var (
	bound   *Context
	nextGen uint64
)

// Current proves that its context is bound on the calling thread. Only
// MakeCurrent produces one; every GPU operation takes it.
type Current struct {
	ctx *Context
	gen uint64
}

// NewContext wraps an initialized native context.
func NewContext(native Native, gl GL, width, height int) (*Context, error) {
	if native == nil || gl == nil {
		return nil, &InitError{Stage: StageContext, Err: errors.New("missing native context")}
	}
	if width <= 0 || height <= 0 {
		return nil, &InitError{Stage: StageContext, Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}
	return &Context{native: native, gl: gl, width: width, height: height}, nil
}

// MakeCurrent binds the context and returns the token for GPU calls.
// Binding invalidates tokens issued for any other context.
func (c *Context) MakeCurrent() (Current, error) {
	if c.closed {
		return Current{}, errors.New("rendering context destroyed")
	}
	if err := c.native.MakeCurrent(); err != nil {
		return Current{}, fmt.Errorf("make current: %w", err)
	}
	if bound != c {
		nextGen++
		c.gen = nextGen
		bound = c
	}
	return Current{ctx: c, gen: c.gen}, nil
}

// Valid reports whether the token still refers to the bound context.
func (cur Current) Valid() bool {
	return cur.ctx != nil && !cur.ctx.closed && bound == cur.ctx && cur.ctx.gen == cur.gen
}

// GL returns the function table of the bound context.
func (cur Current) GL() GL {
	if cur.ctx == nil {
		return nil
	}
	return cur.ctx.gl
}

func (cur Current) check() error {
	if !cur.Valid() {
		return ErrNotCurrent
	}
	return nil
}

// Present swaps the back buffer onto the output.
func (c *Context) Present(cur Current) error {
	if err := cur.check(); err != nil {
		return err
	}
	if cur.ctx != c {
		return ErrNotCurrent
	}
	return c.native.SwapBuffers()
}

// Resize changes the presentable surface to width x height device pixels
// in place. Textures and the pipeline are kept.
func (c *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	if width == c.width && height == c.height {
		return nil
	}
	if err := c.native.Resize(width, height); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	c.width, c.height = width, height
	return nil
}

// Size returns the viewport in device pixels.
func (c *Context) Size() (int, int) { return c.width, c.height }

// Destroy unbinds and frees the context. It is safe to call twice.
func (c *Context) Destroy() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	if bound == c {
		bound = nil
		if err := c.native.ReleaseCurrent(); err != nil {
			errs = append(errs, fmt.Errorf("release current: %w", err))
		}
	}
	if err := c.native.Destroy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
