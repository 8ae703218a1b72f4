package mcp

import "github.com/javanhut/Canviz/internal/ipc"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Backend       string             `json:"backend"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	Outputs       []ipc.OutputStatus `json:"outputs"`
}

// SetWallpaperInput is the input for the set_wallpaper tool.
type SetWallpaperInput struct {
	Path   string `json:"path" jsonschema:"Absolute path of an image file or a directory of images"`
	Output string `json:"output,omitempty" jsonschema:"Output name such as DP-1 (default: all outputs)"`
}

// OutputInput scopes a slideshow tool to one output.
type OutputInput struct {
	Output string `json:"output,omitempty" jsonschema:"Output name such as DP-1 (default: all outputs)"`
}

// ReloadInput is the input for the reload_config tool.
type ReloadInput struct{}

// MessageOutput is the output of tools that only report a result.
type MessageOutput struct {
	Message string `json:"message"`
}
