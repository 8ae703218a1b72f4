// Package daemon runs the wallpaper event loop: it owns every output
// surface, answers compositor events and executes control commands.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/javanhut/Canviz/internal/config"
	"github.com/javanhut/Canviz/internal/platform"
	"github.com/javanhut/Canviz/internal/slideshow"
	"github.com/javanhut/Canviz/internal/surface"
)

// QueueSize is the capacity of the command channel into the loop.
const QueueSize = 32

// ErrStopped is returned to commands submitted after the loop exited.
var ErrStopped = errors.New("daemon is shutting down")

// Config holds what the core needs to run.
type Config struct {
	Config *config.Config
	// ConfigPath is reported in status and used by the default loader.
	ConfigPath string
	Backend    platform.Backend
	Logger     *slog.Logger
	// Decode defaults to imagesrc.Decode.
	Decode surface.Decoder
	// Now defaults to time.Now.
	Now func() time.Time
	// Rand shuffles random playlists; nil uses the global source.
	Rand *rand.Rand
	// LoadConfig rereads the configuration on reload. Defaults to
	// config.LoadFromPath(ConfigPath).
	LoadConfig func() (*config.Config, error)
	// TickInterval is how often slideshow timers are checked.
	TickInterval time.Duration
}

var (
	_ platform.Handler          = (*Core)(nil)
	_ platform.WorkspaceHandler = (*Core)(nil)
)

type output struct {
	info platform.Output
	// source is the file or directory the playlist was built from.
	source   string
	opts     slideshow.Options
	playlist *slideshow.Playlist
}

// Core owns the surface registry. Everything except the exported
// command methods and NotifyWorkspace runs on the loop thread.
type Core struct {
	backend  platform.Backend
	gfx      surface.Graphics
	registry *surface.Registry
	outputs  map[string]*output
	// workspaces survives output removal so a workspace reported before
	// the output appears still applies.
	workspaces map[string]int

	cfg     *config.Config
	cfgPath string
	load    func() (*config.Config, error)
	decode  surface.Decoder
	now     func() time.Time
	rng     *rand.Rand
	log     *slog.Logger
	tick    time.Duration
	started time.Time

	commands chan func()
	stopped  chan struct{}
}

// New creates a core over an open backend. Run takes ownership of the
// backend and closes it on return.
func New(cfg Config) (*Core, error) {
	if cfg.Backend == nil {
		return nil, errors.New("daemon needs a platform backend")
	}
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	c := &Core{
		backend:    cfg.Backend,
		gfx:        cfg.Backend.Graphics(),
		outputs:    make(map[string]*output),
		workspaces: make(map[string]int),
		cfg:        cfg.Config,
		cfgPath:    cfg.ConfigPath,
		load:       cfg.LoadConfig,
		decode:     cfg.Decode,
		now:        cfg.Now,
		rng:        cfg.Rand,
		log:        cfg.Logger,
		tick:       cfg.TickInterval,
		commands:   make(chan func(), QueueSize),
		stopped:    make(chan struct{}),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.load == nil {
		path := cfg.ConfigPath
		c.load = func() (*config.Config, error) { return config.LoadFromPath(path) }
	}
	if c.tick <= 0 {
		c.tick = time.Second
	}
	c.registry = surface.NewRegistry(c.log)
	c.started = c.now()
	return c, nil
}

// Run dispatches compositor events and queued commands until ctx is
// cancelled or dispatch fails. It locks the calling goroutine to its OS
// thread because every GL context is made current there.
func (c *Core) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	stopWake := context.AfterFunc(ctx, c.backend.Wake)
	defer stopWake()
	defer c.shutdown()

	tickCtx, cancelTick := context.WithCancel(ctx)
	defer cancelTick()
	ticker := NewTicker(TickerConfig{Interval: c.tick, Logger: c.log}, c.post, c.advanceSlideshows)
	go ticker.Run(tickCtx)

	c.log.Info("event loop started", "backend", c.backend.Name())
	for {
		if ctx.Err() != nil {
			c.log.Info("event loop stopped")
			return nil
		}
		if err := c.backend.Dispatch(c); err != nil {
			return fmt.Errorf("dispatch failed: %w", err)
		}
		c.drain()
	}
}

func (c *Core) drain() {
	for {
		select {
		case fn := <-c.commands:
			fn()
		default:
			return
		}
	}
}

func (c *Core) shutdown() {
	close(c.stopped)
	c.registry.Close()
	if err := c.backend.Close(); err != nil {
		c.log.Warn("backend close failed", "error", err)
	}
	c.log.Info("surfaces torn down")
}

// submit runs fn on the loop thread and waits for it to finish.
func (c *Core) submit(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case c.commands <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}
	c.backend.Wake()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}
}

// post queues fn without waiting. It reports false when the queue is
// full.
func (c *Core) post(fn func()) bool {
	select {
	case c.commands <- fn:
		c.backend.Wake()
		return true
	default:
		return false
	}
}

// NotifyWorkspace reports the active workspace of an output from another
// goroutine. It blocks while the queue is full.
func (c *Core) NotifyWorkspace(output string, workspace int) {
	select {
	case c.commands <- func() { c.WorkspaceChanged(output, workspace) }:
		c.backend.Wake()
	case <-c.stopped:
	}
}

// OutputAdded creates the surface of a new output.
func (c *Core) OutputAdded(o platform.Output) {
	name := o.Key()
	if _, ok := c.outputs[name]; ok {
		c.log.Warn("output announced twice, replacing", "output", name)
		c.removeOutput(name)
	}

	native, err := c.backend.CreateSurface(o)
	if err != nil {
		c.log.Error("cannot create surface", "output", name, "error", err)
		return
	}
	s := surface.New(surface.Options{
		Name:     name,
		Config:   c.cfg.ForOutput(name),
		Native:   native,
		Graphics: c.gfx,
		Decode:   c.decode,
		Logger:   c.log,
		Now:      c.now,
	})
	if o.Scale > 1 {
		s.SetScale(o.Scale)
	}
	c.registry.Add(s)

	out := &output{info: o}
	c.outputs[name] = out
	c.log.Info("output added", "output", name, "width", o.Width, "height", o.Height, "scale", o.Scale)
	c.refresh(s, out, true)
}

// OutputRemoved tears down the surface of a vanished output.
func (c *Core) OutputRemoved(o platform.Output) {
	name := o.Key()
	if !c.removeOutput(name) {
		c.log.Debug("removal of unknown output", "output", name)
		return
	}
	c.log.Info("output removed", "output", name)
}

func (c *Core) removeOutput(name string) bool {
	delete(c.outputs, name)
	return c.registry.Remove(name)
}

// Configure forwards a geometry event.
func (c *Core) Configure(surfaceID uint64, width, height int) {
	c.registry.Configure(surfaceID, width, height)
}

// Closed removes a surface the compositor withdrew.
func (c *Core) Closed(surfaceID uint64) {
	s, ok := c.registry.ByNative(surfaceID)
	if !ok {
		c.log.Debug("close for unknown surface", "id", surfaceID)
		return
	}
	c.log.Info("surface closed by compositor", "output", s.Name())
	c.removeOutput(s.Name())
}

// ScaleChanged forwards an output scale change.
func (c *Core) ScaleChanged(output string, scale int) {
	if out, ok := c.outputs[output]; ok {
		out.info.Scale = scale
	}
	c.registry.SetScale(output, scale)
}

// FrameReady forwards a frame callback.
func (c *Core) FrameReady(surfaceID uint64) {
	c.registry.Frame(surfaceID)
}

// WorkspaceChanged switches an output to the wallpaper bound to its new
// workspace, if that differs from what it shows.
func (c *Core) WorkspaceChanged(output string, workspace int) {
	if prev, ok := c.workspaces[output]; ok && prev == workspace {
		return
	}
	c.workspaces[output] = workspace
	c.log.Debug("workspace changed", "output", output, "workspace", workspace)

	out, ok := c.outputs[output]
	if !ok {
		return
	}
	s, ok := c.registry.Get(output)
	if !ok {
		return
	}
	c.refresh(s, out, false)
}

func (c *Core) workspaceOf(name string) int {
	if ws, ok := c.workspaces[name]; ok {
		return ws
	}
	return -1
}

// refresh rebuilds the playlist of an output when its resolved source or
// slideshow settings changed and shows the result. force rebuilds
// unconditionally.
func (c *Core) refresh(s *surface.Surface, out *output, force bool) {
	cfg := s.Config()
	source := c.cfg.WallpaperFor(s.Name(), c.workspaceOf(s.Name()))
	opts := slideshow.Options{
		Sorting:   cfg.Sorting,
		Recursive: cfg.Recursive,
		Interval:  cfg.Duration,
	}
	if !force && out.playlist != nil && source == out.source && opts == out.opts {
		return
	}
	out.source = source
	out.opts = opts
	out.playlist = c.buildPlaylist(source, opts)
	if out.playlist.Current() == s.Wallpaper() && s.Wallpaper() != "" {
		out.playlist.Shown(c.now())
		return
	}
	if err := c.show(s, out); err != nil {
		c.log.Error("cannot show wallpaper", "output", s.Name(), "error", err)
	}
}

func (c *Core) buildPlaylist(source string, opts slideshow.Options) *slideshow.Playlist {
	if source == "" {
		return slideshow.FromList(nil, 0)
	}
	opts.Rand = c.rng
	p, err := slideshow.New(source, opts)
	if err != nil {
		// Let the surface report the failure when it tries to load it.
		c.log.Warn("cannot scan wallpaper path", "path", source, "error", err)
		return slideshow.FromList([]string{source}, 0)
	}
	if p.Len() == 0 {
		c.log.Warn("no images found", "path", source)
	}
	return p
}

// show loads the current playlist entry and restarts its timer.
func (c *Core) show(s *surface.Surface, out *output) error {
	path := out.playlist.Current()
	out.playlist.Shown(c.now())
	if path == "" {
		if s.State() != surface.StateSteady {
			return nil
		}
		return errors.New("no wallpapers found")
	}
	return s.LoadWallpaper(path)
}

// advanceSlideshows moves every due playlist to its next image.
func (c *Core) advanceSlideshows() {
	now := c.now()
	c.registry.Each(func(s *surface.Surface) {
		out, ok := c.outputs[s.Name()]
		if !ok || out.playlist == nil || !out.playlist.Due(now) {
			return
		}
		out.playlist.Next()
		c.log.Debug("slideshow advance", "output", s.Name(), "path", out.playlist.Current())
		if err := c.show(s, out); err != nil {
			c.log.Error("slideshow advance failed", "output", s.Name(), "error", err)
		}
	})
}
