package platform

import (
	"errors"
	"fmt"
	"os"
)

const (
	Wayland = "wayland"
	X11     = "x11"
)

// ErrNoDisplay is returned when neither WAYLAND_DISPLAY nor DISPLAY is set.
var ErrNoDisplay = errors.New("no display server found (WAYLAND_DISPLAY and DISPLAY are unset)")

// Detect picks the backend to use. A non-empty override wins; otherwise
// Wayland is preferred over X11.
func Detect(override string) (string, error) {
	switch override {
	case Wayland, X11:
		return override, nil
	case "", "auto":
	default:
		return "", fmt.Errorf("unknown backend %q (valid: %s, %s)", override, Wayland, X11)
	}

	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return Wayland, nil
	}
	if os.Getenv("DISPLAY") != "" {
		return X11, nil
	}
	return "", ErrNoDisplay
}
