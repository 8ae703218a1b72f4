// Package surface implements the per-output wallpaper state machine and
// the registry that maps outputs to their surfaces.
package surface

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/javanhut/Canviz/internal/config"
	"github.com/javanhut/Canviz/internal/imagesrc"
	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/transition"
)

// Fallback color shown when no wallpaper could be loaded.
const (
	FallbackR uint8 = 30
	FallbackG uint8 = 30
	FallbackB uint8 = 40
)

// Size used when the compositor leaves a dimension to the client.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

const firstFrameMS = 16

// State is the lifecycle stage of a surface.
type State int

const (
	StateUnconfigured State = iota
	StateConfiguring
	StateSteady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfiguring:
		return "configuring"
	case StateSteady:
		return "steady"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Native is the platform surface an output renders into.
type Native interface {
	// ID identifies the surface in compositor events.
	ID() uint64
	// Window returns the handle EGL wraps: a wl_surface pointer or an X
	// window id.
	Window() uintptr
	SetBufferScale(scale int)
	// Damage marks the whole buffer, in device pixels, as changed.
	Damage(width, height int)
	// RequestFrame asks for one frame callback on the next commit.
	RequestFrame()
	Commit()
	// FillSolid presents a single color without a graphics context.
	FillSolid(width, height int, r, g, b uint8) error
	Destroy()
}

// Graphics creates rendering contexts bound to native surfaces.
type Graphics interface {
	NewContext(native Native, width, height int) (*render.Context, error)
}

// Decoder turns a wallpaper file into pixels.
type Decoder func(path string) (*imagesrc.Image, error)

// Options configure a new Surface.
type Options struct {
	Name     string
	Config   config.Output
	Native   Native
	Graphics Graphics
	// Decode defaults to imagesrc.Decode.
	Decode Decoder
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Surface is the rendering state of one output. All methods must be
// called from the event loop thread.
type Surface struct {
	name   string
	native Native
	gfx    Graphics
	decode Decoder
	log    *slog.Logger
	now    func() time.Time

	cfg   config.Output
	state State

	width  int
	height int
	scale  int

	ctx      *render.Context
	pipeline *render.Pipeline
	engine   *transition.Engine

	// nativeFill is set when no graphics context could be created.
	nativeFill bool

	lastFrame      time.Time
	wallpaper      string
	pending        string
	frameRequested bool
}

// New returns an unconfigured surface. Nothing is drawn until the first
// Configure.
func New(opts Options) *Surface {
	s := &Surface{
		name:   opts.Name,
		native: opts.Native,
		gfx:    opts.Graphics,
		decode: opts.Decode,
		log:    opts.Logger,
		now:    opts.Now,
		cfg:    opts.Config,
		scale:  1,
		engine: transition.New(opts.Config.Transition, opts.Config.TransitionTime),
	}
	if s.decode == nil {
		s.decode = imagesrc.Decode
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.log = s.log.With("output", s.name)
	return s
}

func (s *Surface) Name() string                { return s.name }
func (s *Surface) State() State                { return s.state }
func (s *Surface) Native() Native              { return s.native }
func (s *Surface) Scale() int                  { return s.scale }
func (s *Surface) Config() config.Output       { return s.cfg }
func (s *Surface) Progress() float64           { return s.engine.Progress() }
func (s *Surface) Transition() transition.Kind { return s.engine.Kind() }

// Size returns the logical size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// DeviceSize returns the buffer size in device pixels.
func (s *Surface) DeviceSize() (int, int) { return s.width * s.scale, s.height * s.scale }

// Wallpaper returns the path of the image on screen, "" for the fallback.
func (s *Surface) Wallpaper() string { return s.wallpaper }

// Animating reports whether a transition is in flight.
func (s *Surface) Animating() bool { return s.engine.Animating() }

// Configure handles a geometry event. Zero dimensions are replaced by the
// defaults. The first call creates the graphics state, loads the initial
// wallpaper and presents once; later calls resize in place when the size
// changed and are no-ops otherwise.
func (s *Surface) Configure(width, height int) error {
	if s.state == StateClosed {
		return errors.New("surface closed")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	if s.state == StateUnconfigured {
		s.state = StateConfiguring
		s.width, s.height = width, height
		s.log.Info("configuring surface", "width", width, "height", height, "scale", s.scale)
		s.initGraphics()

		path := s.pending
		if path == "" {
			path = s.cfg.Path
		}
		s.pending = ""
		s.loadInitial(path)

		s.state = StateSteady
		return s.present(firstFrameMS)
	}

	if width == s.width && height == s.height {
		return nil
	}
	s.log.Debug("resizing surface", "width", width, "height", height)
	s.width, s.height = width, height
	s.resize()
	return s.present(0)
}

// SetScale handles an output scale change. A changed scale resizes the
// buffer and schedules a redraw.
func (s *Surface) SetScale(scale int) error {
	if scale < 1 {
		scale = 1
	}
	if scale == s.scale || s.state == StateClosed {
		return nil
	}
	s.log.Info("scale changed", "from", s.scale, "to", scale)
	s.scale = scale
	s.native.SetBufferScale(scale)
	if s.state == StateSteady {
		s.resize()
	}
	s.scheduleRedraw()
	return nil
}

// Frame handles a frame-ready callback: advance the transition by the
// time since the last frame, draw and present, and ask for another
// callback while animating.
func (s *Surface) Frame() error {
	s.frameRequested = false
	if s.state != StateSteady {
		return nil
	}
	now := s.now()
	delta := float64(firstFrameMS)
	if !s.lastFrame.IsZero() {
		delta = float64(now.Sub(s.lastFrame)) / float64(time.Millisecond)
	}
	return s.present(delta)
}

// LoadWallpaper switches to the image at path, a file or directory. A
// request before the first configure is kept until then. Decode failures
// keep the current image and are returned.
func (s *Surface) LoadWallpaper(path string) error {
	switch s.state {
	case StateClosed:
		return errors.New("surface closed")
	case StateUnconfigured, StateConfiguring:
		s.pending = path
		return nil
	}

	err := s.load(path)
	if err == nil {
		s.lastFrame = s.now()
	}
	s.scheduleRedraw()
	return err
}

// Reconfigure applies new per-output settings. The transition engine
// keeps its textures.
func (s *Surface) Reconfigure(cfg config.Output) {
	s.cfg = cfg
	s.engine.Configure(cfg.Transition, cfg.TransitionTime)
	if s.state == StateSteady {
		s.scheduleRedraw()
	}
}

// Close releases textures, the pipeline, the context and the native
// surface, in that order.
func (s *Surface) Close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	if s.ctx != nil {
		if _, err := s.ctx.MakeCurrent(); err != nil {
			s.log.Warn("cannot bind context for teardown", "error", err)
		} else {
			s.engine.Release()
			if s.pipeline != nil {
				s.pipeline.Destroy()
			}
		}
		if err := s.ctx.Destroy(); err != nil {
			s.log.Warn("context teardown", "error", err)
		}
		s.ctx = nil
	}
	s.pipeline = nil
	s.native.Destroy()
	s.log.Info("surface closed")
}

func (s *Surface) initGraphics() {
	dw, dh := s.DeviceSize()
	ctx, err := s.gfx.NewContext(s.native, dw, dh)
	if err != nil {
		s.log.Error("graphics context unavailable, using solid fill", "error", err)
		s.nativeFill = true
		return
	}
	s.ctx = ctx

	cur, err := ctx.MakeCurrent()
	if err != nil {
		s.log.Error("cannot bind new context, using solid fill", "error", err)
		s.nativeFill = true
		return
	}
	p, err := render.NewPipeline(cur)
	if err != nil {
		s.log.Error("shader pipeline unavailable, using clear color", "error", err)
		return
	}
	s.pipeline = p
}

func (s *Surface) resize() {
	if s.ctx == nil {
		return
	}
	dw, dh := s.DeviceSize()
	if err := s.ctx.Resize(dw, dh); err != nil {
		s.log.Error("resize failed", "error", err)
	}
}

func (s *Surface) loadInitial(path string) {
	if path == "" {
		s.log.Warn("no wallpaper configured")
		s.loadFallback()
		return
	}
	if err := s.load(path); err != nil {
		s.log.Error("initial wallpaper failed, using fallback color", "path", path, "error", err)
		s.loadFallback()
	}
}

func (s *Surface) load(path string) error {
	if s.ctx == nil {
		return errors.New("no graphics context")
	}
	file, err := imagesrc.Resolve(path)
	if err != nil {
		return &imagesrc.DecodeError{Path: path, Err: err}
	}
	img, err := s.decode(file)
	if err != nil {
		return err
	}

	cur, err := s.ctx.MakeCurrent()
	if err != nil {
		return err
	}
	img = imagesrc.Fit(img, render.MaxTextureSize(cur))
	tex, err := render.UploadTexture(cur, img.Width, img.Height, img.Pix)
	if err != nil {
		return err
	}
	s.engine.Load(tex)
	s.wallpaper = file
	s.log.Info("wallpaper loaded", "path", file, "width", img.Width, "height", img.Height)
	return nil
}

func (s *Surface) loadFallback() {
	s.wallpaper = ""
	if s.ctx == nil {
		return
	}
	cur, err := s.ctx.MakeCurrent()
	if err != nil {
		return
	}
	img := imagesrc.Solid(1, 1, FallbackR, FallbackG, FallbackB)
	tex, err := render.UploadTexture(cur, img.Width, img.Height, img.Pix)
	if err != nil {
		s.log.Error("fallback texture failed", "error", err)
		return
	}
	s.engine.Load(tex)
}

// present advances by deltaMS, draws and presents. The next frame
// callback is requested before the swap because the swap commits.
func (s *Surface) present(deltaMS float64) error {
	s.lastFrame = s.now()
	dw, dh := s.DeviceSize()

	if s.nativeFill || s.ctx == nil {
		return s.native.FillSolid(dw, dh, FallbackR, FallbackG, FallbackB)
	}

	cur, err := s.ctx.MakeCurrent()
	if err != nil {
		s.log.Error("make current failed, using solid fill", "error", err)
		return s.native.FillSolid(dw, dh, FallbackR, FallbackG, FallbackB)
	}

	animating := s.engine.Advance(deltaMS)
	if s.pipeline != nil {
		err = s.pipeline.Draw(cur, s.frame())
	} else {
		err = render.ClearSolid(cur, FallbackR, FallbackG, FallbackB)
	}
	if err != nil {
		return fmt.Errorf("draw %s: %w", s.name, err)
	}

	s.native.Damage(dw, dh)
	if animating && !s.frameRequested {
		s.native.RequestFrame()
		s.frameRequested = true
	}
	if err := s.ctx.Present(cur); err != nil {
		return fmt.Errorf("present %s: %w", s.name, err)
	}
	return nil
}

func (s *Surface) frame() render.Frame {
	f := render.Frame{
		Progress: s.engine.Progress(),
		Selector: s.engine.Kind().Selector(),
		Mode:     s.cfg.Mode,
	}
	if t, ok := s.engine.Current().(*render.Texture); ok {
		f.Current = t
	}
	if t, ok := s.engine.Previous().(*render.Texture); ok {
		f.Previous = t
	}
	return f
}

func (s *Surface) scheduleRedraw() {
	if s.frameRequested || s.state != StateSteady {
		return
	}
	s.native.RequestFrame()
	s.native.Commit()
	s.frameRequested = true
}
