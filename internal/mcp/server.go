// Package mcp exposes the daemon's control commands as Model Context
// Protocol tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/javanhut/Canviz/internal/ipc"
)

const (
	ServerName    = "canviz"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools use.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	SetWallpaper(output, path string) (string, error)
	Next(output string) (string, error)
	Previous(output string) (string, error)
	Pause(output string) (string, error)
	Resume(output string) (string, error)
	Reload() (string, error)
}

// Server is the MCP server for wallpaper control.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server forwarding to d.
func NewServer(d Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: d,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report every output managed by the canviz daemon: its wallpaper, active workspace, size, transition and slideshow state.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_wallpaper",
		Description: "Show an image file, or a directory of images as a slideshow, on one output or on all outputs when output is omitted. The path must be absolute and readable by the daemon.",
	}, s.handleSetWallpaper)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "next_wallpaper",
		Description: "Advance the slideshow to the next image on one output or on all outputs.",
	}, s.handleNext)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "previous_wallpaper",
		Description: "Step the slideshow back to the previous image on one output or on all outputs.",
	}, s.handlePrevious)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pause_slideshow",
		Description: "Stop the automatic slideshow timer on one output or on all outputs. The current image stays on screen.",
	}, s.handlePause)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resume_slideshow",
		Description: "Restart the automatic slideshow timer on one output or on all outputs.",
	}, s.handleResume)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reread the canviz configuration file and apply it to every output. A file that fails to load leaves the previous settings in effect.",
	}, s.handleReload)
}
