// Package gles implements render.GL on top of go-gl's OpenGL ES 2.0
// bindings.
package gles

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"

	"github.com/javanhut/Canviz/internal/render"
)

// ProcAddrFunc resolves a GL entry point, normally eglGetProcAddress.
type ProcAddrFunc func(name string) unsafe.Pointer

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the function pointers. It must run with a context current and
// only the first call does any work.
func Init(getProcAddr ProcAddrFunc) error {
	initOnce.Do(func() {
		if err := gl.InitWithProcAddrFunc(getProcAddr); err != nil {
			initErr = fmt.Errorf("load GLES2 entry points: %w", err)
		}
	})
	return initErr
}

// Functions is the go-gl backed render.GL.
type Functions struct{}

var _ render.GL = Functions{}

func (Functions) CreateShader(kind uint32) uint32 { return gl.CreateShader(kind) }

func (Functions) ShaderSource(shader uint32, source string) {
	csource, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csource, nil)
}

func (Functions) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Functions) GetShaderiv(shader uint32, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (Functions) GetShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return log
}

func (Functions) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Functions) CreateProgram() uint32 { return gl.CreateProgram() }

func (Functions) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (Functions) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (Functions) GetProgramiv(program uint32, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (Functions) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return log
}

func (Functions) UseProgram(program uint32) { gl.UseProgram(program) }

func (Functions) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Functions) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (Functions) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Functions) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (Functions) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (Functions) BufferData(target uint32, data []float32, usage uint32) {
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (Functions) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (Functions) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (Functions) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (Functions) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (Functions) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

func (Functions) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

func (Functions) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (Functions) TexImage2D(width, height int32, pix []byte) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

func (Functions) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (Functions) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (Functions) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (Functions) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (Functions) GetIntegerv(pname uint32) int32 {
	var v int32
	gl.GetIntegerv(pname, &v)
	return v
}

func (Functions) GetError() uint32 { return gl.GetError() }

func (Functions) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (Functions) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (Functions) Clear(mask uint32) { gl.Clear(mask) }

func (Functions) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }
