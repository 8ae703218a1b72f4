package daemon

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/javanhut/Canviz/internal/imagesrc"
	"github.com/javanhut/Canviz/internal/platform"
	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/render/rendertest"
	"github.com/javanhut/Canviz/internal/surface"
)

type fakeNative struct {
	id        uint64
	destroyed bool
	fills     int
}

func (n *fakeNative) ID() uint64         { return n.id }
func (n *fakeNative) Window() uintptr    { return uintptr(n.id) }
func (n *fakeNative) SetBufferScale(int) {}
func (n *fakeNative) Damage(int, int)    {}
func (n *fakeNative) RequestFrame()      {}
func (n *fakeNative) Commit()            {}
func (n *fakeNative) Destroy()           { n.destroyed = true }
func (n *fakeNative) FillSolid(int, int, uint8, uint8, uint8) error {
	n.fills++
	return nil
}

type fakeGraphics struct {
	gl *rendertest.GL
}

func (g *fakeGraphics) NewContext(_ surface.Native, w, h int) (*render.Context, error) {
	return render.NewContext(&rendertest.Native{}, g.gl, w, h)
}

var _ platform.Backend = (*fakeBackend)(nil)

// fakeBackend delivers queued events from Dispatch. Dispatch blocks until
// an event is queued or Wake is called.
type fakeBackend struct {
	gfx     *fakeGraphics
	wake    chan struct{}
	natives map[string]*fakeNative
	nextID  uint64

	mu          sync.Mutex
	events      []func(platform.Handler)
	dispatchErr error
	closed      bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		gfx:     &fakeGraphics{gl: rendertest.NewGL()},
		wake:    make(chan struct{}, 1),
		natives: make(map[string]*fakeNative),
	}
}

func (b *fakeBackend) Name() string               { return "fake" }
func (b *fakeBackend) Graphics() surface.Graphics { return b.gfx }

func (b *fakeBackend) CreateSurface(o platform.Output) (surface.Native, error) {
	if o.Name == "broken" {
		return nil, errors.New("layer surface refused")
	}
	b.nextID++
	n := &fakeNative{id: b.nextID}
	b.natives[o.Key()] = n
	return n, nil
}

func (b *fakeBackend) Dispatch(h platform.Handler) error {
	<-b.wake
	b.mu.Lock()
	events := b.events
	b.events = nil
	err := b.dispatchErr
	b.mu.Unlock()
	if err != nil {
		return err
	}
	for _, ev := range events {
		ev(h)
	}
	return nil
}

func (b *fakeBackend) Wake() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) queue(ev func(platform.Handler)) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
	b.Wake()
}

// announce queues an output and its first configure.
func (b *fakeBackend) announce(o platform.Output) {
	b.queue(func(h platform.Handler) {
		h.OutputAdded(o)
		h.Configure(b.natives[o.Key()].id, o.Width, o.Height)
	})
}

func (b *fakeBackend) failDispatch(err error) {
	b.mu.Lock()
	b.dispatchErr = err
	b.mu.Unlock()
	b.Wake()
}

func (b *fakeBackend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeAny(path string) (*imagesrc.Image, error) {
	if filepath.Base(path) == "broken.png" {
		return nil, &imagesrc.DecodeError{Path: path, Err: errors.New("bad header")}
	}
	return imagesrc.Solid(4, 4, 10, 20, 30), nil
}

// writeImages creates empty image files under dir and returns their
// paths. Contents are never read because decodeAny ignores them.
func writeImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], nil, 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return paths
}
