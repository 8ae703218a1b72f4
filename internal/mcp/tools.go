package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Backend:       status.Backend,
		UptimeSeconds: status.UptimeSeconds,
		Outputs:       status.Outputs,
	}, nil
}

func (s *Server) handleSetWallpaper(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWallpaperInput) (*mcpsdk.CallToolResult, MessageOutput, error) {
	path := strings.TrimSpace(args.Path)
	if path == "" {
		return nil, MessageOutput{}, fmt.Errorf("path is required")
	}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~") {
		return nil, MessageOutput{}, fmt.Errorf("path must be absolute: %s", path)
	}
	msg, err := s.daemon.SetWallpaper(args.Output, path)
	return s.result("set_wallpaper", args.Output, msg, err)
}

func (s *Server) handleNext(_ context.Context, _ *mcpsdk.CallToolRequest, args OutputInput) (*mcpsdk.CallToolResult, MessageOutput, error) {
	msg, err := s.daemon.Next(args.Output)
	return s.result("next_wallpaper", args.Output, msg, err)
}

func (s *Server) handlePrevious(_ context.Context, _ *mcpsdk.CallToolRequest, args OutputInput) (*mcpsdk.CallToolResult, MessageOutput, error) {
	msg, err := s.daemon.Previous(args.Output)
	return s.result("previous_wallpaper", args.Output, msg, err)
}

func (s *Server) handlePause(_ context.Context, _ *mcpsdk.CallToolRequest, args OutputInput) (*mcpsdk.CallToolResult, MessageOutput, error) {
	msg, err := s.daemon.Pause(args.Output)
	return s.result("pause_slideshow", args.Output, msg, err)
}

func (s *Server) handleResume(_ context.Context, _ *mcpsdk.CallToolRequest, args OutputInput) (*mcpsdk.CallToolResult, MessageOutput, error) {
	msg, err := s.daemon.Resume(args.Output)
	return s.result("resume_slideshow", args.Output, msg, err)
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, MessageOutput, error) {
	msg, err := s.daemon.Reload()
	return s.result("reload_config", "", msg, err)
}

func (s *Server) result(tool, output, msg string, err error) (*mcpsdk.CallToolResult, MessageOutput, error) {
	if err != nil {
		s.logger.Debug("tool failed", "tool", tool, "output", output, "error", err)
		return nil, MessageOutput{}, err
	}
	s.logger.Debug("tool done", "tool", tool, "output", output)
	return nil, MessageOutput{Message: msg}, nil
}
