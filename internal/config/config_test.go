package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/transition"
)

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	want := Output{
		Transition:     transition.KindFade,
		TransitionTime: 300,
		Mode:           render.FillCover,
		Sorting:        SortRandom,
		Recursive:      true,
	}
	if diff := cmp.Diff(want, cfg.Default); diff != "" {
		t.Fatalf("default output mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, "# empty"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Default.TransitionTime != DefaultTransitionTime {
		t.Fatalf("transition_time = %d, want %d", cfg.Default.TransitionTime, DefaultTransitionTime)
	}
}

func TestLoadFromPath_FullFile(t *testing.T) {
	path := writeConfig(t,
		"default:",
		"  path: /walls",
		"  transition: wipe",
		"  transition_time: 500",
		"  mode: contain",
		"monitors:",
		"  DP-1:",
		"    path: /walls/dp1.png",
		"    transition: none",
		"  HDMI-A-1:",
		"    path: /walls/slides",
		"    duration: 10m",
		"    sorting: ascending",
		"    recursive: false",
		"workspaces:",
		"  enabled: true",
		"  wallpapers:",
		"    1: /walls/one.png",
		"    2: /walls/two.png",
		"logging:",
		"  level: debug",
		"  max_files: 5",
	)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	dp1 := cfg.ForOutput("DP-1")
	want := Output{
		Path:           "/walls/dp1.png",
		Transition:     transition.KindNone,
		TransitionTime: 500,
		Mode:           render.FillContain,
		Sorting:        SortRandom,
		Recursive:      true,
	}
	if diff := cmp.Diff(want, dp1); diff != "" {
		t.Fatalf("DP-1 mismatch (-want +got):\n%s", diff)
	}

	hdmi := cfg.ForOutput("HDMI-A-1")
	if hdmi.Duration != 10*time.Minute || hdmi.Sorting != SortAscending || hdmi.Recursive {
		t.Fatalf("HDMI-A-1 = %+v", hdmi)
	}
	if hdmi.Transition != transition.KindWipe {
		t.Fatalf("HDMI-A-1 transition = %q, want inherited wipe", hdmi.Transition)
	}

	other := cfg.ForOutput("eDP-1")
	if other.Path != "/walls" {
		t.Fatalf("unknown output path = %q, want default /walls", other.Path)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.MaxFiles != 5 || cfg.Logging.MaxSizeMB != DefaultLogMaxSizeMB {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromPath_InvalidValuesAreLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		path  string
	}{
		{"transition", []string{"default:", "  transition: zoom"}, "default.transition"},
		{"mode", []string{"monitors:", "  DP-1:", "    mode: huge"}, "monitors.DP-1.mode"},
		{"sorting", []string{"default:", "  sorting: shuffle"}, "default.sorting"},
		{"time", []string{"default:", "  transition_time: -1"}, "default.transition_time"},
		{"level", []string{"logging:", "  level: loud"}, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, tt.lines...))
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("error = %v, want *LoadError", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want wrapped *ValidationError", err)
			}
			if vErr.Path != tt.path {
				t.Fatalf("ValidationError.Path = %q, want %q", vErr.Path, tt.path)
			}
		})
	}
}

func TestInvalidEnumListsAcceptedValues(t *testing.T) {
	tests := []struct {
		lines []string
		want  string
	}{
		{[]string{"default:", "  transition: zoom"}, `unknown transition "zoom"; must be one of: none, fade, slide, wipe, crossfade`},
		{[]string{"default:", "  mode: huge"}, `unknown fill mode "huge"; must be one of: cover, contain, fill, tile, center`},
	}
	for _, tt := range tests {
		_, err := LoadFromPath(writeConfig(t, tt.lines...))
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error = %v, want wrapped *ValidationError", err)
		}
		if got := vErr.Err.Error(); got != tt.want {
			t.Fatalf("ValidationError.Err = %q, want %q", got, tt.want)
		}
	}
}

func TestLoadFromPath_UnparseableIsLoadError(t *testing.T) {
	for _, body := range []string{"default: [", "unknown_key: 1"} {
		_, err := LoadFromPath(writeConfig(t, body))
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("LoadFromPath(%q) error = %v, want *LoadError", body, err)
		}
	}
}

func TestWallpaperFor_LookupOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Default.Path = "/default.png"
	cfg.Monitors["DP-1"] = Output{Path: "/dp1.png"}
	cfg.Workspaces.Wallpapers[3] = "/ws3.png"

	if got := cfg.WallpaperFor("DP-1", 3); got != "/dp1.png" {
		t.Fatalf("disabled workspaces: got %q, want /dp1.png", got)
	}

	cfg.Workspaces.Enabled = true
	tests := []struct {
		output    string
		workspace int
		want      string
	}{
		{"DP-1", 3, "/ws3.png"},
		{"DP-1", 4, "/dp1.png"},
		{"DP-1", -1, "/dp1.png"},
		{"HDMI-A-1", 3, "/ws3.png"},
		{"HDMI-A-1", 9, "/default.png"},
	}
	for _, tt := range tests {
		if got := cfg.WallpaperFor(tt.output, tt.workspace); got != tt.want {
			t.Fatalf("WallpaperFor(%q, %d) = %q, want %q", tt.output, tt.workspace, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WALLS", "/srv/walls")

	tests := map[string]string{
		"":             "",
		"~":            home,
		"~/pics/a.png": filepath.Join(home, "pics/a.png"),
		"$WALLS/b.png": "/srv/walls/b.png",
		"/abs/c.png":   "/abs/c.png",
		"~other/d.png": "~other/d.png",
	}
	for in, want := range tests {
		if got := ExpandPath(in); got != want {
			t.Fatalf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath() error: %v", err)
	}
	if want := filepath.Join(xdg, "canviz", "config.yaml"); got != want {
		t.Fatalf("DefaultConfigPath() = %q, want %q", got, want)
	}

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	got, err = DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath() error: %v", err)
	}
	if want := filepath.Join(home, ".config", "canviz", "config.yaml"); got != want {
		t.Fatalf("DefaultConfigPath() = %q, want %q", got, want)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Default.Path = "/walls"
	cfg.Default.Duration = 90 * time.Second
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v\n%s", err, data)
	}
	if back.Default.Path != "/walls" || back.Default.Duration != 90*time.Second {
		t.Fatalf("round trip default = %+v", back.Default)
	}
}
