//go:build !statsview

package main

import "testing"

func TestRunDaemonRejectsStatsviewWithoutTag(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")
	if code := runDaemon([]string{"--statsview"}); code != 2 {
		t.Fatalf("runDaemon(--statsview) = %d, want 2", code)
	}
}
