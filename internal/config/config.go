package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/javanhut/Canviz/internal/render"
	"github.com/javanhut/Canviz/internal/transition"
)

// SortOrder controls slideshow ordering for directory wallpapers.
type SortOrder string

const (
	SortRandom     SortOrder = "random"
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

const (
	DefaultTransitionTime = 300 // ms
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxFiles    = 3
)

// Output is the resolved configuration of one display.
type Output struct {
	// Path is a file or a directory of images.
	Path           string          `yaml:"path,omitempty"`
	Transition     transition.Kind `yaml:"transition"`
	TransitionTime int             `yaml:"transition_time"` // ms
	Mode           render.FillMode `yaml:"mode"`
	// Duration is the slideshow interval for directory paths; 0 disables it.
	Duration  time.Duration `yaml:"duration,omitempty"`
	Sorting   SortOrder     `yaml:"sorting"`
	Recursive bool          `yaml:"recursive"`
}

// Workspaces maps workspace ids to wallpapers.
type Workspaces struct {
	Enabled    bool           `yaml:"enabled"`
	Wallpapers map[int]string `yaml:"wallpapers,omitempty"`
}

// LoggingConfig configures daemon logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File is an optional log file; empty logs to stderr only.
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the file size that triggers rotation.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep.
	MaxFiles int `yaml:"max_files"`
}

// Config is the effective daemon configuration.
type Config struct {
	Default    Output            `yaml:"default"`
	Monitors   map[string]Output `yaml:"monitors,omitempty"`
	Workspaces Workspaces        `yaml:"workspaces"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// DefaultConfig returns the built-in configuration used when no file is
// present or the file cannot be loaded.
func DefaultConfig() *Config {
	return &Config{
		Default: Output{
			Transition:     transition.KindFade,
			TransitionTime: DefaultTransitionTime,
			Mode:           render.FillCover,
			Sorting:        SortRandom,
			Recursive:      true,
		},
		Monitors: map[string]Output{},
		Workspaces: Workspaces{
			Wallpapers: map[int]string{},
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: DefaultLogMaxSizeMB,
			MaxFiles:  DefaultLogMaxFiles,
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/canviz/config.yaml, falling
// back to ~/.config/canviz/config.yaml.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "canviz", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "canviz", "config.yaml"), nil
}

// ForOutput returns the configuration for the named output: its monitor
// entry when present, otherwise the default record. Paths are expanded.
func (c *Config) ForOutput(name string) Output {
	out, ok := c.Monitors[name]
	if !ok {
		out = c.Default
	}
	out.Path = ExpandPath(out.Path)
	return out
}

// WorkspaceWallpaper returns the wallpaper bound to workspace id when
// workspace wallpapers are enabled.
func (c *Config) WorkspaceWallpaper(id int) (string, bool) {
	if !c.Workspaces.Enabled {
		return "", false
	}
	p, ok := c.Workspaces.Wallpapers[id]
	if !ok || strings.TrimSpace(p) == "" {
		return "", false
	}
	return ExpandPath(p), true
}

// WallpaperFor resolves the wallpaper path for an output showing the given
// workspace (id < 0 means unknown). Lookup order is workspace, monitor,
// default.
func (c *Config) WallpaperFor(output string, workspace int) string {
	if workspace >= 0 {
		if p, ok := c.WorkspaceWallpaper(workspace); ok {
			return p
		}
	}
	return c.ForOutput(output).Path
}

// ExpandPath replaces a leading ~ with the home directory and expands
// environment variables.
func ExpandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return os.ExpandEnv(p)
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if err := validateOutput("default", c.Default); err != nil {
		return err
	}
	for _, name := range sortedKeys(c.Monitors) {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "monitors", Err: fmt.Errorf("monitor name must not be empty")}
		}
		if err := validateOutput("monitors."+name, c.Monitors[name]); err != nil {
			return err
		}
	}
	for id := range c.Workspaces.Wallpapers {
		if id < 0 {
			return &ValidationError{Path: "workspaces.wallpapers", Err: fmt.Errorf("workspace id %d must not be negative", id)}
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 1 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 1")}
	}
	if c.Logging.MaxFiles < 1 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 1")}
	}
	return nil
}

func validateOutput(path string, o Output) error {
	if _, err := transition.ParseKind(string(o.Transition)); err != nil || o.Transition == "" {
		return &ValidationError{Path: path + ".transition", Err: fmt.Errorf("transition must be one of: %s", oneOf(transition.Kinds))}
	}
	if o.TransitionTime < 0 {
		return &ValidationError{Path: path + ".transition_time", Err: fmt.Errorf("transition_time must be >= 0")}
	}
	if _, err := render.ParseFillMode(string(o.Mode)); err != nil || o.Mode == "" {
		return &ValidationError{Path: path + ".mode", Err: fmt.Errorf("mode must be one of: %s", oneOf(render.FillModes))}
	}
	if o.Duration < 0 {
		return &ValidationError{Path: path + ".duration", Err: fmt.Errorf("duration must be >= 0")}
	}
	switch o.Sorting {
	case SortRandom, SortAscending, SortDescending:
	default:
		return &ValidationError{Path: path + ".sorting", Err: fmt.Errorf("sorting must be one of: random, ascending, descending")}
	}
	return nil
}

func oneOf[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
