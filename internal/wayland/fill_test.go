package wayland

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFillXRGB(t *testing.T) {
	pix := make([]byte, 8)
	fillXRGB(pix, 30, 30, 40)

	want := []byte{40, 30, 30, 0xff, 40, 30, 30, 0xff}
	if diff := cmp.Diff(want, pix); diff != "" {
		t.Fatalf("fillXRGB() mismatch (-want +got):\n%s", diff)
	}
}

func TestProtocolErrorMessage(t *testing.T) {
	err := &ProtocolError{Interface: "wl_output", Event: "scale", Reason: "factor below 1"}
	want := "wayland wl_output.scale: factor below 1"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
