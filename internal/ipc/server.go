package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/javanhut/Canviz/internal/runtimepath"
)

// DefaultTimeout bounds how long one request may wait for the daemon.
const DefaultTimeout = 5 * time.Second

// Controller carries out commands. Each method returns a message for the
// client; errors are reported to the client by their message only.
type Controller interface {
	SetWallpaper(ctx context.Context, output, path string) (string, error)
	Next(ctx context.Context, output string) (string, error)
	Previous(ctx context.Context, output string) (string, error)
	Pause(ctx context.Context, output string) (string, error)
	Resume(ctx context.Context, output string) (string, error)
	Reload(ctx context.Context) (string, error)
	Status(ctx context.Context) (*StatusData, error)
	Wallpapers(ctx context.Context, output string) ([]WallpaperInfo, error)
}

// ServerConfig holds configuration for the server.
type ServerConfig struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	Controller Controller
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	timeout      time.Duration
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	if cfg.Controller == nil {
		return nil, fmt.Errorf("ipc server needs a controller")
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	s := &Server{
		socketPath: socketPath,
		ctrl:       cfg.Controller,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout + time.Second))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.send(conn, s.handleCommand(ctx, req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandSetWallpaper:
		var p SetWallpaperPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if p.Path == "" {
			return NewErrorResponse("path is required")
		}
		return messageResponse(s.ctrl.SetWallpaper(ctx, p.Output, p.Path))

	case CommandNext, CommandPrevious, CommandPause, CommandResume:
		var p OutputPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return messageResponse(s.outputCommand(ctx, req.Command, p.Output))

	case CommandReload:
		return messageResponse(s.ctrl.Reload(ctx))

	case CommandGetStatus:
		status, err := s.ctrl.Status(ctx)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return dataResponse(status)

	case CommandGetWallpaper:
		var p OutputPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		walls, err := s.ctrl.Wallpapers(ctx, p.Output)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return dataResponse(WallpapersData{Wallpapers: walls})

	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) outputCommand(ctx context.Context, cmd CommandType, output string) (string, error) {
	switch cmd {
	case CommandNext:
		return s.ctrl.Next(ctx, output)
	case CommandPrevious:
		return s.ctrl.Previous(ctx, output)
	case CommandPause:
		return s.ctrl.Pause(ctx, output)
	default:
		return s.ctrl.Resume(ctx, output)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("Invalid payload: %v", err)
	}
	return nil
}

func messageResponse(msg string, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return NewMessageResponse(msg)
}

func dataResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
