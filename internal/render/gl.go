// Package render owns the GPU side of an output: the rendering context,
// textures and the blend pipeline. GL calls go through the GL interface so
// the state handling can run without a GPU.
package render

// GLES2 enum values used by the pipeline.
const (
	TEXTURE_2D         = 0x0DE1
	TEXTURE0           = 0x84C0
	TEXTURE1           = 0x84C1
	TEXTURE_MIN_FILTER = 0x2801
	TEXTURE_MAG_FILTER = 0x2800
	TEXTURE_WRAP_S     = 0x2802
	TEXTURE_WRAP_T     = 0x2803
	LINEAR             = 0x2601
	CLAMP_TO_EDGE      = 0x812F
	MAX_TEXTURE_SIZE   = 0x0D33

	VERTEX_SHADER   = 0x8B31
	FRAGMENT_SHADER = 0x8B30
	COMPILE_STATUS  = 0x8B81
	LINK_STATUS     = 0x8B82

	ARRAY_BUFFER = 0x8892
	STATIC_DRAW  = 0x88E4
	TRIANGLES    = 0x0004

	COLOR_BUFFER_BIT = 0x4000
	NO_ERROR         = 0
)

// GL is the subset of OpenGL ES 2.0 the renderer needs. Implementations
// expect the owning context to be current on the calling thread.
type GL interface {
	CreateShader(kind uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32

	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []float32, usage uint32)
	DeleteBuffer(buffer uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size, stride int32, offset int)

	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(width, height int32, pix []byte)
	DeleteTexture(texture uint32)

	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)

	GetIntegerv(pname uint32) int32
	GetError() uint32
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	DrawArrays(mode uint32, first, count int32)
}
