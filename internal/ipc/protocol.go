package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandSetWallpaper CommandType = "SET_WALLPAPER"
	CommandNext         CommandType = "NEXT"
	CommandPrevious     CommandType = "PREVIOUS"
	CommandPause        CommandType = "PAUSE"
	CommandResume       CommandType = "RESUME"
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetWallpaper CommandType = "GET_WALLPAPER"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status  string          `json:"status"` // "OK" or "ERROR"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// OutputPayload scopes a command to one output. An empty output means
// every output.
type OutputPayload struct {
	Output string `json:"output,omitempty"`
}

// SetWallpaperPayload represents the payload for SET_WALLPAPER
type SetWallpaperPayload struct {
	Output string `json:"output,omitempty"`
	Path   string `json:"path"`
}

// OutputStatus describes one output in GET_STATUS
type OutputStatus struct {
	Name string `json:"name"`
	// Wallpaper is empty while the fallback color is shown.
	Wallpaper string `json:"wallpaper,omitempty"`
	// Workspace is nil when the active workspace is unknown.
	Workspace       *int   `json:"workspace,omitempty"`
	SlideshowActive bool   `json:"slideshow_active"`
	SlideshowPaused bool   `json:"slideshow_paused"`
	State           string `json:"state"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Scale           int    `json:"scale"`
	Transition      string `json:"transition"`
	Mode            string `json:"mode"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool           `json:"daemon_running"`
	Backend       string         `json:"backend"`
	ConfigPath    string         `json:"config_path,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Outputs       []OutputStatus `json:"outputs"`
}

// WallpaperInfo pairs an output with the image it shows.
type WallpaperInfo struct {
	Output string `json:"output"`
	Path   string `json:"path,omitempty"`
}

// WallpapersData represents the data returned by GET_WALLPAPER
type WallpapersData struct {
	Wallpapers []WallpaperInfo `json:"wallpapers"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewMessageResponse creates a successful response carrying only a message
func NewMessageResponse(msg string) *Response {
	return &Response{
		Status:  "OK",
		Message: msg,
	}
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
