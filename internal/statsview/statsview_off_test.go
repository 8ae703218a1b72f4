//go:build !statsview

package statsview

import (
	"context"
	"errors"
	"testing"
)

func TestStartWithoutTagIsUnavailable(t *testing.T) {
	if Available() {
		t.Fatal("Available() = true, want false without the statsview tag")
	}
	err := Start(context.Background(), DefaultAddr, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Start() error = %v, want ErrUnavailable", err)
	}
}
