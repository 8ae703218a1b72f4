package render

import (
	"errors"
	"fmt"
)

// Texture is an RGBA8 image resident on the GPU.
type Texture struct {
	gl     GL
	id     uint32
	Width  int
	Height int
}

// UploadTexture copies a tightly packed RGBA8 buffer into a new texture
// with linear filtering and clamp-to-edge wrapping.
func UploadTexture(cur Current, width, height int, pix []byte) (*Texture, error) {
	if err := cur.check(); err != nil {
		return nil, &InitError{Stage: StageTexture, Err: err}
	}
	if width <= 0 || height <= 0 {
		return nil, &InitError{Stage: StageTexture, Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}
	if len(pix) != width*height*4 {
		return nil, &InitError{Stage: StageTexture, Err: fmt.Errorf("pixel buffer is %d bytes, want %d", len(pix), width*height*4)}
	}
	if limit := MaxTextureSize(cur); limit > 0 && (width > limit || height > limit) {
		return nil, &InitError{Stage: StageTexture, Err: fmt.Errorf("%dx%d exceeds max texture size %d", width, height, limit)}
	}

	gl := cur.GL()
	id := gl.GenTexture()
	if id == 0 {
		return nil, &InitError{Stage: StageTexture, Err: errors.New("glGenTextures returned 0")}
	}
	gl.BindTexture(TEXTURE_2D, id)
	gl.TexParameteri(TEXTURE_2D, TEXTURE_MIN_FILTER, LINEAR)
	gl.TexParameteri(TEXTURE_2D, TEXTURE_MAG_FILTER, LINEAR)
	gl.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_S, CLAMP_TO_EDGE)
	gl.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_T, CLAMP_TO_EDGE)
	gl.TexImage2D(int32(width), int32(height), pix)
	if code := gl.GetError(); code != NO_ERROR {
		gl.DeleteTexture(id)
		return nil, &InitError{Stage: StageTexture, Err: fmt.Errorf("glTexImage2D error 0x%04x", code)}
	}
	gl.BindTexture(TEXTURE_2D, 0)

	return &Texture{gl: gl, id: id, Width: width, Height: height}, nil
}

// MaxTextureSize queries GL_MAX_TEXTURE_SIZE, or 0 if the driver did not
// answer.
func MaxTextureSize(cur Current) int {
	if !cur.Valid() {
		return 0
	}
	return int(cur.GL().GetIntegerv(MAX_TEXTURE_SIZE))
}

// ID returns the GL name, 0 after Release.
func (t *Texture) ID() uint32 { return t.id }

// Release deletes the texture. The owning context must be current.
func (t *Texture) Release() {
	if t == nil || t.id == 0 {
		return
	}
	t.gl.DeleteTexture(t.id)
	t.id = 0
}
