package config

import "time"

// RawOutput is an output record as written in the file. Nil fields
// inherit.
type RawOutput struct {
	Path           *string        `yaml:"path"`
	Transition     *string        `yaml:"transition"`
	TransitionTime *int           `yaml:"transition_time"`
	Mode           *string        `yaml:"mode"`
	Duration       *time.Duration `yaml:"duration"`
	Sorting        *string        `yaml:"sorting"`
	Recursive      *bool          `yaml:"recursive"`
}

type RawWorkspaces struct {
	Enabled    *bool          `yaml:"enabled"`
	Wallpapers map[int]string `yaml:"wallpapers"`
}

type RawLogging struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig mirrors the YAML file before defaults are applied.
type RawConfig struct {
	Default    *RawOutput           `yaml:"default"`
	Monitors   map[string]RawOutput `yaml:"monitors"`
	Workspaces *RawWorkspaces       `yaml:"workspaces"`
	Logging    *RawLogging          `yaml:"logging"`
}
