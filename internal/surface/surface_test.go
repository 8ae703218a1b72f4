package surface

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/javanhut/Canviz/internal/config"
	"github.com/javanhut/Canviz/internal/imagesrc"
	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/render/rendertest"
	"github.com/javanhut/Canviz/internal/transition"
)

type fakeNative struct {
	id            uint64
	scales        []int
	damages       [][2]int
	frameRequests int
	commits       int
	fills         [][5]int
	destroyed     bool
}

func (n *fakeNative) ID() uint64           { return n.id }
func (n *fakeNative) Window() uintptr      { return uintptr(n.id) }
func (n *fakeNative) SetBufferScale(s int) { n.scales = append(n.scales, s) }
func (n *fakeNative) Damage(w, h int)      { n.damages = append(n.damages, [2]int{w, h}) }
func (n *fakeNative) RequestFrame()        { n.frameRequests++ }
func (n *fakeNative) Commit()              { n.commits++ }
func (n *fakeNative) Destroy()             { n.destroyed = true }
func (n *fakeNative) FillSolid(w, h int, r, g, b uint8) error {
	n.fills = append(n.fills, [5]int{w, h, int(r), int(g), int(b)})
	return nil
}

type fakeGraphics struct {
	fail    bool
	gl      *rendertest.GL
	natives []*rendertest.Native
}

func (g *fakeGraphics) NewContext(native Native, w, h int) (*render.Context, error) {
	if g.fail {
		return nil, &render.InitError{Stage: render.StageContext, Err: errors.New("no matching EGL config")}
	}
	n := &rendertest.Native{}
	g.natives = append(g.natives, n)
	return render.NewContext(n, g.gl, w, h)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	s      *Surface
	native *fakeNative
	gfx    *fakeGraphics
	clock  *clock
	loads  []string
}

func newHarness(t *testing.T, cfg config.Output) *harness {
	t.Helper()
	h := &harness{
		native: &fakeNative{id: 7},
		gfx:    &fakeGraphics{gl: rendertest.NewGL()},
		clock:  &clock{t: time.Unix(1000, 0)},
	}
	h.s = New(Options{
		Name:     "DP-1",
		Config:   cfg,
		Native:   h.native,
		Graphics: h.gfx,
		Decode: func(path string) (*imagesrc.Image, error) {
			h.loads = append(h.loads, path)
			if path == "/img/broken.png" {
				return nil, &imagesrc.DecodeError{Path: path, Err: errors.New("bad header")}
			}
			return imagesrc.Solid(4, 4, 1, 2, 3), nil
		},
		Now: h.clock.now,
	})
	t.Cleanup(h.s.Close)
	return h
}

func fadeConfig(path string) config.Output {
	return config.Output{
		Path:           path,
		Transition:     transition.KindFade,
		TransitionTime: 300,
		Mode:           render.FillCover,
	}
}

func (h *harness) swaps() int {
	n := 0
	for _, nat := range h.gfx.natives {
		n += nat.Swaps
	}
	return n
}

func TestUnconfiguredDoesNotDraw(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Frame(); err != nil {
		t.Fatalf("Frame() error: %v", err)
	}
	if h.s.State() != StateUnconfigured {
		t.Fatalf("State() = %v, want unconfigured", h.s.State())
	}
	if len(h.gfx.natives) != 0 || h.gfx.gl.Draws != 0 {
		t.Fatal("unconfigured surface touched the GPU")
	}
}

func TestFirstConfigurePresentsOnceWithoutFrameRequest(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}

	if h.s.State() != StateSteady {
		t.Fatalf("State() = %v, want steady", h.s.State())
	}
	if h.swaps() != 1 {
		t.Fatalf("presents = %d, want 1", h.swaps())
	}
	if h.s.Progress() != 1 {
		t.Fatalf("Progress() = %v, want 1", h.s.Progress())
	}
	if h.native.frameRequests != 0 {
		t.Fatalf("frame requests = %d, want 0", h.native.frameRequests)
	}
	if h.s.Wallpaper() != "/img/a.png" {
		t.Fatalf("Wallpaper() = %q", h.s.Wallpaper())
	}
	if got := h.native.damages; len(got) != 1 || got[0] != [2]int{1920, 1080} {
		t.Fatalf("damages = %v, want [[1920 1080]]", got)
	}
}

func TestSetWallpaperTransitionsOverTwoFrames(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	liveBefore := len(h.gfx.gl.Textures)

	h.clock.advance(5 * time.Second)
	if err := h.s.LoadWallpaper("/img/b.png"); err != nil {
		t.Fatalf("LoadWallpaper() error: %v", err)
	}
	if h.s.Progress() != 0 {
		t.Fatalf("Progress() after load = %v, want 0", h.s.Progress())
	}
	if h.native.frameRequests != 1 {
		t.Fatalf("frame requests after load = %d, want 1", h.native.frameRequests)
	}

	h.clock.advance(150 * time.Millisecond)
	if err := h.s.Frame(); err != nil {
		t.Fatalf("Frame() error: %v", err)
	}
	if got := h.s.Progress(); got != 0.5 {
		t.Fatalf("Progress() after first frame = %v, want 0.5", got)
	}
	if h.native.frameRequests != 2 {
		t.Fatalf("frame requests = %d, want 2 while animating", h.native.frameRequests)
	}

	h.clock.advance(150 * time.Millisecond)
	if err := h.s.Frame(); err != nil {
		t.Fatalf("Frame() error: %v", err)
	}
	if got := h.s.Progress(); got != 1 {
		t.Fatalf("Progress() after second frame = %v, want 1", got)
	}
	if h.native.frameRequests != 2 {
		t.Fatalf("frame requests = %d, want no request after completion", h.native.frameRequests)
	}
	if got := len(h.gfx.gl.Textures); got != liveBefore {
		t.Fatalf("live textures = %d, want %d (previous released)", got, liveBefore)
	}
	if h.s.Wallpaper() != "/img/b.png" {
		t.Fatalf("Wallpaper() = %q", h.s.Wallpaper())
	}
}

func TestFirstFrameDeltaIs16ms(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(800, 600); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	h.s.engine.Load(&render.Texture{Width: 1, Height: 1})
	h.s.lastFrame = time.Time{}
	if err := h.s.Frame(); err != nil {
		t.Fatalf("Frame() error: %v", err)
	}
	want := 16.0 / 300.0
	if got := h.s.Progress(); got != want {
		t.Fatalf("Progress() = %v, want %v", got, want)
	}
}

func TestConfigureZeroSizeClamped(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(0, 0); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if w, hh := h.s.Size(); w != 1920 || hh != 1080 {
		t.Fatalf("Size() = %dx%d, want 1920x1080", w, hh)
	}
	if w, hh := h.s.ctx.Size(); w != 1920 || hh != 1080 {
		t.Fatalf("context size = %dx%d, want 1920x1080", w, hh)
	}
}

func TestSameSizeConfigureIsNoop(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1280, 720); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	swaps := h.swaps()
	requests := h.native.frameRequests

	if err := h.s.Configure(1280, 720); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if err := h.s.SetScale(1); err != nil {
		t.Fatalf("SetScale() error: %v", err)
	}
	if h.swaps() != swaps || h.native.frameRequests != requests {
		t.Fatal("same geometry should not redraw")
	}
	if len(h.gfx.natives[0].Sizes) != 0 {
		t.Fatalf("context resized %d times, want 0", len(h.gfx.natives[0].Sizes))
	}
}

func TestResizeKeepsTextures(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1280, 720); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	textures := len(h.gfx.gl.Textures)
	if err := h.s.Configure(2560, 1440); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if got := h.gfx.natives[0].Sizes; len(got) != 1 || got[0] != [2]int{2560, 1440} {
		t.Fatalf("native sizes = %v", got)
	}
	if len(h.gfx.gl.Textures) != textures {
		t.Fatal("resize reallocated textures")
	}
	if h.swaps() != 2 {
		t.Fatalf("presents = %d, want 2", h.swaps())
	}
}

func TestResizeDuringTransitionKeepsSingleFrameRequest(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1280, 720); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if err := h.s.LoadWallpaper("/img/b.png"); err != nil {
		t.Fatalf("LoadWallpaper() error: %v", err)
	}
	if h.native.frameRequests != 1 {
		t.Fatalf("frame requests after load = %d, want 1", h.native.frameRequests)
	}

	if err := h.s.Configure(2560, 1440); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if h.native.frameRequests != 1 {
		t.Fatalf("frame requests after resize = %d, want 1 (already pending)", h.native.frameRequests)
	}

	h.clock.advance(100 * time.Millisecond)
	if err := h.s.Frame(); err != nil {
		t.Fatalf("Frame() error: %v", err)
	}
	if h.native.frameRequests != 2 {
		t.Fatalf("frame requests after frame = %d, want 2", h.native.frameRequests)
	}
}

func TestScaleChange(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1280, 720); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if err := h.s.SetScale(2); err != nil {
		t.Fatalf("SetScale() error: %v", err)
	}
	if fmt.Sprint(h.native.scales) != "[2]" {
		t.Fatalf("buffer scales = %v, want [2]", h.native.scales)
	}
	if w, hh := h.s.ctx.Size(); w != 2560 || hh != 1440 {
		t.Fatalf("context size = %dx%d, want 2560x1440", w, hh)
	}
	if h.native.frameRequests != 1 || h.native.commits != 1 {
		t.Fatalf("requests/commits = %d/%d, want 1/1", h.native.frameRequests, h.native.commits)
	}
}

func TestScaleBeforeConfigureUsedForContext(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.SetScale(2); err != nil {
		t.Fatalf("SetScale() error: %v", err)
	}
	if h.native.frameRequests != 0 {
		t.Fatal("unconfigured surface must not request frames")
	}
	if err := h.s.Configure(100, 50); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if w, hh := h.s.ctx.Size(); w != 200 || hh != 100 {
		t.Fatalf("context size = %dx%d, want 200x100", w, hh)
	}
}

func TestDecodeFailureOnFirstConfigureUsesFallback(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/broken.png"))
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error = %v, want nil", err)
	}
	if h.s.State() != StateSteady {
		t.Fatalf("State() = %v, want steady", h.s.State())
	}
	if h.s.Wallpaper() != "" {
		t.Fatalf("Wallpaper() = %q, want fallback", h.s.Wallpaper())
	}
	cur, ok := h.s.engine.Current().(*render.Texture)
	if !ok || cur.Width != 1 || cur.Height != 1 {
		t.Fatalf("current texture = %+v, want 1x1 fallback", h.s.engine.Current())
	}
	if h.swaps() != 1 {
		t.Fatalf("presents = %d, want 1", h.swaps())
	}
}

func TestDecodeFailureKeepsPreviousImage(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	err := h.s.LoadWallpaper("/img/broken.png")
	var decErr *imagesrc.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("LoadWallpaper() error = %v, want *DecodeError", err)
	}
	if h.s.Wallpaper() != "/img/a.png" || h.s.Progress() != 1 {
		t.Fatalf("surface changed after failed decode: %q %v", h.s.Wallpaper(), h.s.Progress())
	}
	if h.native.frameRequests != 1 {
		t.Fatalf("frame requests = %d, want a redraw even on failure", h.native.frameRequests)
	}
}

func TestEmptyPathUsesFallback(t *testing.T) {
	h := newHarness(t, fadeConfig(""))
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if len(h.loads) != 0 {
		t.Fatalf("decoded %v, want nothing", h.loads)
	}
	if h.s.engine.Current() == nil {
		t.Fatal("fallback texture missing")
	}
}

func TestLoadBeforeConfigureIsDeferred(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.LoadWallpaper("/img/c.png"); err != nil {
		t.Fatalf("LoadWallpaper() error: %v", err)
	}
	if len(h.loads) != 0 {
		t.Fatal("decoded before configure")
	}
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if fmt.Sprint(h.loads) != "[/img/c.png]" {
		t.Fatalf("loads = %v, want [/img/c.png]", h.loads)
	}
	if h.s.Progress() != 1 {
		t.Fatal("initial load must not animate")
	}
}

func TestContextFailureFallsBackToNativeFill(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	h.gfx.fail = true
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if h.s.State() != StateSteady {
		t.Fatalf("State() = %v, want steady", h.s.State())
	}
	if got := h.native.fills; len(got) != 1 || got[0] != [5]int{1920, 1080, 30, 30, 40} {
		t.Fatalf("fills = %v", got)
	}
}

func TestPipelineFailureClearsToFallback(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	h.gfx.gl.FailCompile = true
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if h.gfx.gl.Draws != 0 {
		t.Fatal("drew without a pipeline")
	}
	c, ok := h.gfx.gl.LastClear()
	if !ok || c != (rendertest.Color{R: 30.0 / 255, G: 30.0 / 255, B: 40.0 / 255, A: 1}) {
		t.Fatalf("last clear = %+v", c)
	}
	if h.swaps() != 1 {
		t.Fatalf("presents = %d, want 1", h.swaps())
	}
}

func TestKindNoneLoadIsInstant(t *testing.T) {
	cfg := fadeConfig("/img/a.png")
	cfg.Transition = transition.KindNone
	h := newHarness(t, cfg)
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if err := h.s.LoadWallpaper("/img/b.png"); err != nil {
		t.Fatalf("LoadWallpaper() error: %v", err)
	}
	if h.s.Progress() != 1 {
		t.Fatalf("Progress() = %v, want 1", h.s.Progress())
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	h := newHarness(t, fadeConfig("/img/a.png"))
	if err := h.s.Configure(1920, 1080); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if err := h.s.LoadWallpaper("/img/b.png"); err != nil {
		t.Fatalf("LoadWallpaper() error: %v", err)
	}
	h.s.Close()

	gl := h.gfx.gl
	if len(gl.Textures) != 0 || len(gl.Programs) != 0 || len(gl.Buffers) != 0 {
		t.Fatalf("leaked textures=%d programs=%d buffers=%d", len(gl.Textures), len(gl.Programs), len(gl.Buffers))
	}
	if !h.gfx.natives[0].Destroyed || !h.native.destroyed {
		t.Fatal("native resources not destroyed")
	}
	if h.s.State() != StateClosed {
		t.Fatalf("State() = %v, want closed", h.s.State())
	}
	if err := h.s.LoadWallpaper("/img/c.png"); err == nil {
		t.Fatal("LoadWallpaper() after Close() should fail")
	}
}

func TestRegistryForwarding(t *testing.T) {
	r := NewRegistry(nil)
	h := newHarness(t, fadeConfig("/img/a.png"))
	r.Add(h.s)

	r.Configure(99, 100, 100)
	if h.s.State() != StateUnconfigured {
		t.Fatal("unknown id reached a surface")
	}
	r.Configure(7, 1920, 1080)
	if h.s.State() != StateSteady {
		t.Fatalf("State() = %v, want steady", h.s.State())
	}
	r.SetScale("HDMI-A-1", 2)
	r.SetScale("DP-1", 2)
	if h.s.Scale() != 2 {
		t.Fatalf("Scale() = %d, want 2", h.s.Scale())
	}
	r.Frame(7)

	if fmt.Sprint(r.Names()) != "[DP-1]" {
		t.Fatalf("Names() = %v", r.Names())
	}
	if !r.Remove("DP-1") || r.Remove("DP-1") {
		t.Fatal("Remove() should succeed once")
	}
	if h.s.State() != StateClosed {
		t.Fatal("removed surface not closed")
	}
	if _, ok := r.ByNative(7); ok {
		t.Fatal("native id still mapped after removal")
	}
}

func TestPlaceholderName(t *testing.T) {
	if got := PlaceholderName(42); got != "unknown-42" {
		t.Fatalf("PlaceholderName(42) = %q", got)
	}
}
