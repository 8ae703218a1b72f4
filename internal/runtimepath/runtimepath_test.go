package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/canviz-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/canviz.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}
}

func TestHyprlandDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	if _, err := HyprlandDir(); err == nil {
		t.Fatal("HyprlandDir() expected error without signature")
	}

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc_123")
	got, err := HyprlandDir()
	if err != nil {
		t.Fatalf("HyprlandDir() error: %v", err)
	}
	if want := filepath.Join(td, "hypr", "abc_123"); got != want {
		t.Fatalf("HyprlandDir() = %q, want %q", got, want)
	}
}
