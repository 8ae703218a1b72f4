// Package transition tracks the blend between the image currently on an
// output and the one it replaced.
package transition

import (
	"fmt"
	"strings"
)

// Kind selects how a newly loaded image replaces the previous one.
type Kind string

const (
	KindNone      Kind = "none"
	KindFade      Kind = "fade"
	KindSlide     Kind = "slide"
	KindWipe      Kind = "wipe"
	KindCrossfade Kind = "crossfade"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindNone, KindFade, KindSlide, KindWipe, KindCrossfade}

// ParseKind maps a config value to a Kind. An empty string is fade.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindFade, nil
	case KindNone, KindFade, KindSlide, KindWipe, KindCrossfade:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transition %q", s)
	}
}

// Selector returns the blend selector the fragment shader branches on.
// Fade and crossfade share the alpha blend; slide and wipe share the
// horizontal reveal.
func (k Kind) Selector() int {
	switch k {
	case KindFade, KindCrossfade:
		return 1
	case KindSlide, KindWipe:
		return 2
	default:
		return 0
	}
}

// Texture is a GPU resource the engine holds in one of its two slots.
type Texture interface {
	Release()
}

// Engine is the progress state of one output's transition. It is not safe
// for concurrent use; the owning surface drives it from the event loop.
type Engine struct {
	kind       Kind
	durationMS float64
	elapsedMS  float64
	progress   float64
	current    Texture
	previous   Texture
}

// New returns an engine with nothing loaded and progress complete.
func New(kind Kind, durationMS int) *Engine {
	e := &Engine{progress: 1}
	e.Configure(kind, durationMS)
	return e
}

// Configure updates kind and duration. An in-flight transition continues
// with the new parameters.
func (e *Engine) Configure(kind Kind, durationMS int) {
	if kind == "" {
		kind = KindFade
	}
	if durationMS < 0 {
		durationMS = 0
	}
	e.kind = kind
	e.durationMS = float64(durationMS)
}

// Load installs tex as the current image. With kind none, or when nothing
// was shown before, the swap is immediate. Otherwise the old current image
// becomes the previous one and progress restarts at zero; an older
// previous image still in flight is released.
func (e *Engine) Load(tex Texture) {
	if e.kind == KindNone || e.current == nil {
		e.releasePrevious()
		if e.current != nil {
			e.current.Release()
		}
		e.current = tex
		e.progress = 1
		return
	}

	e.releasePrevious()
	e.previous = e.current
	e.current = tex
	e.elapsedMS = 0
	e.progress = 0
}

// Advance moves progress forward by deltaMS and reports whether the
// transition is still running. Progress is derived from the total elapsed
// time, so it reaches exactly one once that total covers the duration.
// Once complete it is a no-op returning false.
func (e *Engine) Advance(deltaMS float64) bool {
	if e.progress >= 1 {
		return false
	}
	if deltaMS > 0 {
		e.elapsedMS += deltaMS
	}
	if e.durationMS <= 0 || e.elapsedMS >= e.durationMS {
		e.progress = 1
	} else {
		e.progress = e.elapsedMS / e.durationMS
	}
	if e.progress >= 1 {
		e.progress = 1
		e.releasePrevious()
		return false
	}
	return true
}

// Animating reports whether progress is below one.
func (e *Engine) Animating() bool { return e.progress < 1 }

func (e *Engine) Progress() float64 { return e.progress }
func (e *Engine) Kind() Kind        { return e.kind }
func (e *Engine) DurationMS() int   { return int(e.durationMS) }
func (e *Engine) Current() Texture  { return e.current }
func (e *Engine) Previous() Texture { return e.previous }

// Release frees both slots.
func (e *Engine) Release() {
	e.releasePrevious()
	if e.current != nil {
		e.current.Release()
		e.current = nil
	}
	e.progress = 1
}

func (e *Engine) releasePrevious() {
	if e.previous != nil {
		e.previous.Release()
		e.previous = nil
	}
}
