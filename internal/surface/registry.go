package surface

import (
	"fmt"
	"log/slog"
	"sort"
)

// PlaceholderName names an output the compositor did not name.
func PlaceholderName(global uint32) string {
	return fmt.Sprintf("unknown-%d", global)
}

// Registry maps output names to surfaces and native surface ids back to
// names. It is owned by the event loop.
type Registry struct {
	surfaces map[string]*Surface
	byNative map[uint64]string
	log      *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		surfaces: make(map[string]*Surface),
		byNative: make(map[uint64]string),
		log:      logger,
	}
}

// Add registers s. A surface already registered under the same name is
// closed and replaced.
func (r *Registry) Add(s *Surface) {
	if old, ok := r.surfaces[s.Name()]; ok {
		r.log.Warn("replacing surface", "output", s.Name())
		r.drop(old)
	}
	r.surfaces[s.Name()] = s
	r.byNative[s.Native().ID()] = s.Name()
}

// Remove closes and forgets the named surface.
func (r *Registry) Remove(name string) bool {
	s, ok := r.surfaces[name]
	if !ok {
		return false
	}
	r.drop(s)
	return true
}

func (r *Registry) drop(s *Surface) {
	delete(r.surfaces, s.Name())
	delete(r.byNative, s.Native().ID())
	s.Close()
}

func (r *Registry) Get(name string) (*Surface, bool) {
	s, ok := r.surfaces[name]
	return s, ok
}

// ByNative finds the surface owning a native surface id.
func (r *Registry) ByNative(id uint64) (*Surface, bool) {
	name, ok := r.byNative[id]
	if !ok {
		return nil, false
	}
	return r.Get(name)
}

func (r *Registry) Len() int { return len(r.surfaces) }

// Names returns the registered outputs in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.surfaces))
	for name := range r.surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every surface in name order.
func (r *Registry) Each(fn func(*Surface)) {
	for _, name := range r.Names() {
		fn(r.surfaces[name])
	}
}

// Configure forwards a geometry event. Unknown ids are logged and ignored.
func (r *Registry) Configure(id uint64, width, height int) {
	s, ok := r.ByNative(id)
	if !ok {
		r.log.Debug("configure for unknown surface", "id", id)
		return
	}
	if err := s.Configure(width, height); err != nil {
		r.log.Error("configure failed", "output", s.Name(), "error", err)
	}
}

// Frame forwards a frame-ready callback.
func (r *Registry) Frame(id uint64) {
	s, ok := r.ByNative(id)
	if !ok {
		r.log.Debug("frame for unknown surface", "id", id)
		return
	}
	if err := s.Frame(); err != nil {
		r.log.Error("frame failed", "output", s.Name(), "error", err)
	}
}

// SetScale forwards an output scale change.
func (r *Registry) SetScale(name string, scale int) {
	s, ok := r.Get(name)
	if !ok {
		r.log.Debug("scale for unknown output", "output", name)
		return
	}
	if err := s.SetScale(scale); err != nil {
		r.log.Error("scale change failed", "output", name, "error", err)
	}
}

// Close tears down every surface.
func (r *Registry) Close() {
	for _, name := range r.Names() {
		r.drop(r.surfaces[name])
	}
}
