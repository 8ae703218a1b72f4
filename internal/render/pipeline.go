package render

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline is the compiled blend program plus the full-screen quad.
type Pipeline struct {
	gl      GL
	program uint32
	vbo     uint32

	// vertex
	position int32
	texcoord int32

	// fragment
	texture     int32
	texturePrev int32
	progress    int32
	transition  int32
	scale       int32
	scalePrev   int32
	tile        int32
}

// Frame is everything one draw needs.
type Frame struct {
	Current  *Texture
	Previous *Texture
	Progress float64
	Selector int
	Mode     FillMode
}

// NewPipeline compiles and links the shaders and uploads the quad.
// Failures are *InitError carrying the driver's info log.
func NewPipeline(cur Current) (*Pipeline, error) {
	if err := cur.check(); err != nil {
		return nil, &InitError{Stage: StageProgram, Err: err}
	}
	gl := cur.GL()
	p := &Pipeline{gl: gl}

	vert, err := compileShader(gl, VERTEX_SHADER, vertexShader)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vert)
	frag, err := compileShader(gl, FRAGMENT_SHADER, fragmentShader)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(frag)

	p.program = gl.CreateProgram()
	if p.program == 0 {
		return nil, &InitError{Stage: StageProgram, Err: errors.New("glCreateProgram returned 0")}
	}
	gl.AttachShader(p.program, vert)
	gl.AttachShader(p.program, frag)
	gl.LinkProgram(p.program)
	if gl.GetProgramiv(p.program, LINK_STATUS) == 0 {
		log := strings.TrimRight(gl.GetProgramInfoLog(p.program), "\x00\n")
		gl.DeleteProgram(p.program)
		return nil, &InitError{Stage: StageProgram, Log: log, Err: errors.New("link failed")}
	}

	p.position = gl.GetAttribLocation(p.program, "a_position")
	p.texcoord = gl.GetAttribLocation(p.program, "a_texcoord")
	if p.position < 0 || p.texcoord < 0 {
		gl.DeleteProgram(p.program)
		return nil, &InitError{Stage: StageProgram, Err: errors.New("vertex attributes not found")}
	}
	p.texture = gl.GetUniformLocation(p.program, "u_texture")
	p.texturePrev = gl.GetUniformLocation(p.program, "u_texture_prev")
	p.progress = gl.GetUniformLocation(p.program, "u_progress")
	p.transition = gl.GetUniformLocation(p.program, "u_transition")
	p.scale = gl.GetUniformLocation(p.program, "u_scale")
	p.scalePrev = gl.GetUniformLocation(p.program, "u_scale_prev")
	p.tile = gl.GetUniformLocation(p.program, "u_tile")

	p.vbo = gl.GenBuffer()
	if p.vbo == 0 {
		gl.DeleteProgram(p.program)
		return nil, &InitError{Stage: StageGeometry, Err: errors.New("glGenBuffers returned 0")}
	}
	gl.BindBuffer(ARRAY_BUFFER, p.vbo)
	gl.BufferData(ARRAY_BUFFER, quad, STATIC_DRAW)
	gl.BindBuffer(ARRAY_BUFFER, 0)

	return p, nil
}

func compileShader(gl GL, kind uint32, source string) (uint32, error) {
	stage := "vertex"
	if kind == FRAGMENT_SHADER {
		stage = "fragment"
	}
	sh := gl.CreateShader(kind)
	if sh == 0 {
		return 0, &InitError{Stage: StageShader, Err: fmt.Errorf("glCreateShader(%s) returned 0", stage)}
	}
	gl.ShaderSource(sh, source)
	gl.CompileShader(sh)
	if gl.GetShaderiv(sh, COMPILE_STATUS) == 0 {
		log := strings.TrimRight(gl.GetShaderInfoLog(sh), "\x00\n")
		gl.DeleteShader(sh)
		return 0, &InitError{Stage: StageShader, Log: log, Err: fmt.Errorf("%s shader compile failed", stage)}
	}
	return sh, nil
}

// Draw renders f into the viewport of the bound context.
func (p *Pipeline) Draw(cur Current, f Frame) error {
	if err := cur.check(); err != nil {
		return err
	}
	if p.program == 0 {
		return errors.New("pipeline destroyed")
	}
	w, h := cur.ctx.Size()
	gl := p.gl

	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(COLOR_BUFFER_BIT)
	if f.Current == nil || f.Current.id == 0 {
		return nil
	}

	prev := f.Previous
	if prev == nil || prev.id == 0 {
		prev = f.Current
	}

	gl.UseProgram(p.program)

	gl.ActiveTexture(TEXTURE0)
	gl.BindTexture(TEXTURE_2D, f.Current.id)
	gl.Uniform1i(p.texture, 0)
	gl.ActiveTexture(TEXTURE1)
	gl.BindTexture(TEXTURE_2D, prev.id)
	gl.Uniform1i(p.texturePrev, 1)

	sx, sy := UVScale(f.Mode, w, h, f.Current.Width, f.Current.Height)
	gl.Uniform2f(p.scale, sx, sy)
	px, py := UVScale(f.Mode, w, h, prev.Width, prev.Height)
	gl.Uniform2f(p.scalePrev, px, py)
	tile := int32(0)
	if f.Mode == FillTile {
		tile = 1
	}
	gl.Uniform1i(p.tile, tile)

	progress := f.Progress
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	gl.Uniform1f(p.progress, float32(progress))
	gl.Uniform1i(p.transition, int32(f.Selector))

	gl.BindBuffer(ARRAY_BUFFER, p.vbo)
	gl.EnableVertexAttribArray(uint32(p.position))
	gl.VertexAttribPointer(uint32(p.position), 2, quadStride, 0)
	gl.EnableVertexAttribArray(uint32(p.texcoord))
	gl.VertexAttribPointer(uint32(p.texcoord), 2, quadStride, 2*4)

	gl.DrawArrays(TRIANGLES, 0, quadVertices)
	gl.BindBuffer(ARRAY_BUFFER, 0)
	gl.ActiveTexture(TEXTURE0)
	return nil
}

// ClearSolid fills the viewport with one color. It is the fallback when
// no pipeline could be built.
func ClearSolid(cur Current, r, g, b uint8) error {
	if err := cur.check(); err != nil {
		return err
	}
	w, h := cur.ctx.Size()
	gl := cur.GL()
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(float32(r)/255, float32(g)/255, float32(b)/255, 1)
	gl.Clear(COLOR_BUFFER_BIT)
	return nil
}

// Destroy deletes the program and vertex buffer. The owning context must
// be current.
func (p *Pipeline) Destroy() {
	if p.vbo != 0 {
		p.gl.DeleteBuffer(p.vbo)
		p.vbo = 0
	}
	if p.program != 0 {
		p.gl.DeleteProgram(p.program)
		p.program = 0
	}
}
