// Package rendertest provides in-memory stand-ins for the GL function table
// and the native context so render state can be tested without a GPU.
package rendertest

import (
	"errors"
	"fmt"

	"github.com/javanhut/Canviz/internal/render"
)

// Color is a clear color in [0,1].
type Color struct{ R, G, B, A float32 }

// GL records calls and tracks live objects.
type GL struct {
	// Knobs
	FailCompile   bool
	FailLink      bool
	InfoLog       string
	MaxTexture    int32
	TexImageError uint32

	Calls     []string
	Textures  map[uint32][2]int32
	Programs  map[uint32]bool
	Buffers   map[uint32]bool
	Shaders   map[uint32]bool
	Clears    []Color
	Draws     int
	Viewports [][4]int32

	nextID    uint32
	clear     Color
	pendError uint32
	uniforms  map[string]int32
	values    map[int32][]float32
}

func NewGL() *GL {
	return &GL{
		Textures: map[uint32][2]int32{},
		Programs: map[uint32]bool{},
		Buffers:  map[uint32]bool{},
		Shaders:  map[uint32]bool{},
		uniforms: map[string]int32{},
		values:   map[int32][]float32{},
	}
}

var _ render.GL = (*GL)(nil)

func (g *GL) id() uint32 {
	g.nextID++
	return g.nextID
}

func (g *GL) record(format string, args ...any) {
	g.Calls = append(g.Calls, fmt.Sprintf(format, args...))
}

// Uniform returns the last value set for the named uniform.
func (g *GL) Uniform(name string) []float32 {
	loc, ok := g.uniforms[name]
	if !ok {
		return nil
	}
	return g.values[loc]
}

// LastClear returns the most recent clear color.
func (g *GL) LastClear() (Color, bool) {
	if len(g.Clears) == 0 {
		return Color{}, false
	}
	return g.Clears[len(g.Clears)-1], true
}

func (g *GL) CreateShader(kind uint32) uint32 {
	id := g.id()
	g.Shaders[id] = true
	return id
}
func (g *GL) ShaderSource(shader uint32, source string) {}
func (g *GL) CompileShader(shader uint32) {
	g.record("CompileShader")
}
func (g *GL) GetShaderiv(shader uint32, pname uint32) int32 {
	if pname == render.COMPILE_STATUS && g.FailCompile {
		return 0
	}
	return 1
}
func (g *GL) GetShaderInfoLog(shader uint32) string {
	return g.InfoLog + "\x00"
}
func (g *GL) DeleteShader(shader uint32) {
	delete(g.Shaders, shader)
}

func (g *GL) CreateProgram() uint32 {
	id := g.id()
	g.Programs[id] = true
	return id
}
func (g *GL) AttachShader(program, shader uint32) {}
func (g *GL) LinkProgram(program uint32) {
	g.record("LinkProgram")
}
func (g *GL) GetProgramiv(program uint32, pname uint32) int32 {
	if pname == render.LINK_STATUS && g.FailLink {
		return 0
	}
	return 1
}
func (g *GL) GetProgramInfoLog(program uint32) string {
	return g.InfoLog
}
func (g *GL) UseProgram(program uint32) {
	g.record("UseProgram %d", program)
}
func (g *GL) DeleteProgram(program uint32) {
	delete(g.Programs, program)
}
func (g *GL) GetAttribLocation(program uint32, name string) int32 {
	switch name {
	case "a_position":
		return 0
	case "a_texcoord":
		return 1
	}
	return -1
}
func (g *GL) GetUniformLocation(program uint32, name string) int32 {
	if loc, ok := g.uniforms[name]; ok {
		return loc
	}
	loc := int32(len(g.uniforms))
	g.uniforms[name] = loc
	return loc
}

func (g *GL) GenBuffer() uint32 {
	id := g.id()
	g.Buffers[id] = true
	return id
}
func (g *GL) BindBuffer(target, buffer uint32)                       {}
func (g *GL) BufferData(target uint32, data []float32, usage uint32) {}
func (g *GL) DeleteBuffer(buffer uint32) {
	delete(g.Buffers, buffer)
}
func (g *GL) EnableVertexAttribArray(index uint32) {}
func (g *GL) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	g.record("VertexAttribPointer %d %d %d %d", index, size, stride, offset)
}

func (g *GL) GenTexture() uint32 {
	return g.id()
}
func (g *GL) ActiveTexture(unit uint32) {}
func (g *GL) BindTexture(target, texture uint32) {
	if texture != 0 {
		g.record("BindTexture %d", texture)
	}
}
func (g *GL) TexParameteri(target, pname uint32, param int32) {
	g.record("TexParameteri 0x%04x 0x%04x", pname, param)
}
func (g *GL) TexImage2D(width, height int32, pix []byte) {
	if g.TexImageError != 0 {
		g.pendError = g.TexImageError
		return
	}
	g.Textures[g.nextID] = [2]int32{width, height}
}
func (g *GL) DeleteTexture(texture uint32) {
	delete(g.Textures, texture)
}

func (g *GL) Uniform1i(location int32, v int32) {
	g.values[location] = []float32{float32(v)}
}
func (g *GL) Uniform1f(location int32, v float32) {
	g.values[location] = []float32{v}
}
func (g *GL) Uniform2f(location int32, x, y float32) {
	g.values[location] = []float32{x, y}
}

func (g *GL) GetIntegerv(pname uint32) int32 {
	if pname == render.MAX_TEXTURE_SIZE {
		return g.MaxTexture
	}
	return 0
}
func (g *GL) GetError() uint32 {
	e := g.pendError
	g.pendError = 0
	return e
}
func (g *GL) Viewport(x, y, width, height int32) {
	g.Viewports = append(g.Viewports, [4]int32{x, y, width, height})
}
func (g *GL) ClearColor(r, gr, b, a float32) {
	g.clear = Color{r, gr, b, a}
}
func (g *GL) Clear(mask uint32) {
	g.Clears = append(g.Clears, g.clear)
}
func (g *GL) DrawArrays(mode uint32, first, count int32) {
	g.Draws++
	g.record("DrawArrays %d", count)
}

// Native is a fake EGL context and window surface.
type Native struct {
	FailMakeCurrent bool
	Current         bool
	Swaps           int
	Sizes           [][2]int
	Destroyed       bool
}

var _ render.Native = (*Native)(nil)

func (n *Native) MakeCurrent() error {
	if n.FailMakeCurrent {
		return errors.New("eglMakeCurrent failed")
	}
	if n.Destroyed {
		return errors.New("context destroyed")
	}
	n.Current = true
	return nil
}
func (n *Native) ReleaseCurrent() error {
	n.Current = false
	return nil
}
func (n *Native) SwapBuffers() error {
	n.Swaps++
	return nil
}
func (n *Native) Resize(width, height int) error {
	n.Sizes = append(n.Sizes, [2]int{width, height})
	return nil
}
func (n *Native) Destroy() error {
	if n.Current {
		return errors.New("destroying a current context")
	}
	n.Destroyed = true
	return nil
}
