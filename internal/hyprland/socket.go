package hyprland

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"time"
)

const (
	requestSocket = ".socket.sock"
	eventSocket   = ".socket2.sock"
)

// Monitor is the subset of "j/monitors" canviz reads.
type Monitor struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Focused         bool   `json:"focused"`
	ActiveWorkspace struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"activeWorkspace"`
}

// QueryMonitors asks the request socket in dir for the monitor list.
func QueryMonitors(ctx context.Context, dir string) ([]Monitor, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", filepath.Join(dir, requestSocket))
	if err != nil {
		return nil, fmt.Errorf("connect to hyprland: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(5 * time.Second))
	}

	if _, err := conn.Write([]byte("j/monitors")); err != nil {
		return nil, fmt.Errorf("send monitors request: %w", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("read monitors reply: %w", err)
	}

	var monitors []Monitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		return nil, fmt.Errorf("parse monitors reply: %w", err)
	}
	return monitors, nil
}

// ListenerConfig holds configuration for the listener.
type ListenerConfig struct {
	// Dir is the instance directory holding both sockets.
	Dir        string
	OnChange   func(WorkspaceChange)
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Logger     *slog.Logger
}

// Listener reports workspace changes until its context ends,
// reconnecting with exponential backoff when the socket drops.
type Listener struct {
	dir        string
	onChange   func(WorkspaceChange)
	minBackoff time.Duration
	maxBackoff time.Duration
	logger     *slog.Logger
}

func NewListener(cfg ListenerConfig) *Listener {
	l := &Listener{
		dir:        cfg.Dir,
		onChange:   cfg.OnChange,
		minBackoff: cfg.MinBackoff,
		maxBackoff: cfg.MaxBackoff,
		logger:     cfg.Logger,
	}
	if l.minBackoff <= 0 {
		l.minBackoff = time.Second
	}
	if l.maxBackoff < l.minBackoff {
		l.maxBackoff = 30 * time.Second
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.onChange == nil {
		l.onChange = func(WorkspaceChange) {}
	}
	return l
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	l.logger.Info("hyprland listener started", "dir", l.dir)
	backoff := l.minBackoff
	for {
		tracker := NewTracker()
		connected, err := l.session(ctx, tracker)
		if ctx.Err() != nil {
			l.logger.Info("hyprland listener stopped")
			return
		}
		if connected {
			backoff = l.minBackoff
		}
		l.logger.Warn("hyprland event socket lost", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			l.logger.Info("hyprland listener stopped")
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

// session seeds the tracker from a monitors query and then follows the
// event socket until it fails.
func (l *Listener) session(ctx context.Context, tracker *Tracker) (bool, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", filepath.Join(l.dir, eventSocket))
	if err != nil {
		return false, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	monitors, err := QueryMonitors(qctx, l.dir)
	cancel()
	if err != nil {
		l.logger.Warn("hyprland monitors query failed", "error", err)
	}
	for _, c := range tracker.Seed(monitors) {
		l.emit(c)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		ev, ok := ParseEvent(scanner.Text())
		if !ok {
			continue
		}
		if c, ok := tracker.Apply(ev); ok {
			l.emit(c)
		}
	}
	if err := scanner.Err(); err != nil {
		return true, err
	}
	return true, io.EOF
}

func (l *Listener) emit(c WorkspaceChange) {
	l.logger.Debug("workspace changed", "output", c.Output, "workspace", c.Workspace)
	l.onChange(c)
}
