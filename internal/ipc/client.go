package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/javanhut/Canviz/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for the socket at path.
func NewClientWithSocket(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    DefaultTimeout,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) message(cmd CommandType, payload any) (string, error) {
	resp, err := c.sendRequest(cmd, payload)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SetWallpaper shows path on output, or on every output when output is
// empty.
func (c *Client) SetWallpaper(output, path string) (string, error) {
	return c.message(CommandSetWallpaper, SetWallpaperPayload{Output: output, Path: path})
}

// Next advances the slideshow.
func (c *Client) Next(output string) (string, error) {
	return c.message(CommandNext, OutputPayload{Output: output})
}

// Previous steps the slideshow back.
func (c *Client) Previous(output string) (string, error) {
	return c.message(CommandPrevious, OutputPayload{Output: output})
}

// Pause stops the slideshow timer.
func (c *Client) Pause(output string) (string, error) {
	return c.message(CommandPause, OutputPayload{Output: output})
}

// Resume restarts the slideshow timer.
func (c *Client) Resume(output string) (string, error) {
	return c.message(CommandResume, OutputPayload{Output: output})
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() (string, error) {
	return c.message(CommandReload, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetWallpapers returns the image on output, or on every output.
func (c *Client) GetWallpapers(output string) ([]WallpaperInfo, error) {
	resp, err := c.sendRequest(CommandGetWallpaper, OutputPayload{Output: output})
	if err != nil {
		return nil, err
	}

	var data WallpapersData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse wallpaper data: %w", err)
	}
	return data.Wallpapers, nil
}
