package render

import (
	"errors"
	"fmt"
)

// Stage names the part of graphics setup that failed.
type Stage string

const (
	StageContext  Stage = "context"
	StageShader   Stage = "shader"
	StageProgram  Stage = "program"
	StageTexture  Stage = "texture"
	StageGeometry Stage = "geometry"
)

// InitError reports a failure to create a context, pipeline or texture.
// It is fatal to the one output that hit it.
type InitError struct {
	Stage Stage
	// Log holds the driver's info log for shader and program failures.
	Log string
	Err error
}

func (e *InitError) Error() string {
	msg := fmt.Sprintf("graphics init (%s)", e.Stage)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Log != "" {
		msg += ": " + e.Log
	}
	return msg
}

func (e *InitError) Unwrap() error { return e.Err }

// ErrNotCurrent is returned when a Current token no longer refers to the
// context bound on this thread.
var ErrNotCurrent = errors.New("rendering context is not current")
