package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseLevel(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "canviz.log")
	var console bytes.Buffer

	logger, closer, err := New(Options{Level: "info", File: path, Console: &console})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Info("wallpaper loaded", "output", "DP-1")
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if !strings.Contains(console.String(), "wallpaper loaded") {
		t.Fatalf("console output %q missing message", console.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "output=DP-1") {
		t.Fatalf("file output %q missing attribute", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("file output %q contains debug record", data)
	}
}

func TestNewVerbose(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := New(Options{Level: "error", Verbose: true, Console: &console})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Fatalf("verbose logger does not enable debug")
	}
}

func TestRotatingFileRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canviz.log")
	rf, err := NewRotatingFile(path, 1, 2)
	if err != nil {
		t.Fatalf("NewRotatingFile() error: %v", err)
	}
	defer rf.Close()

	chunk := bytes.Repeat([]byte("x"), 700*1024)
	for i := 0; i < 4; i++ {
		if _, err := rf.Write(chunk); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected %s.3 to be absent, stat err = %v", path, err)
	}
}

func TestRotatingFileWriteAfterClose(t *testing.T) {
	rf, err := NewRotatingFile(filepath.Join(t.TempDir(), "a.log"), 1, 1)
	if err != nil {
		t.Fatalf("NewRotatingFile() error: %v", err)
	}
	rf.Close()
	if _, err := rf.Write([]byte("late")); err == nil {
		t.Fatalf("Write() after Close error = nil, want error")
	}
}
