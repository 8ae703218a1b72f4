package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/javanhut/Canviz/internal/config"
	"github.com/javanhut/Canviz/internal/ipc"
	"github.com/javanhut/Canviz/internal/surface"
)

var _ ipc.Controller = (*Core)(nil)

// targets returns the surfaces a command applies to: the named output, or
// every output when name is empty.
func (c *Core) targets(name string) ([]*surface.Surface, error) {
	if name != "" {
		s, ok := c.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown output: %s", name)
		}
		return []*surface.Surface{s}, nil
	}
	var all []*surface.Surface
	c.registry.Each(func(s *surface.Surface) { all = append(all, s) })
	if len(all) == 0 {
		return nil, errors.New("no outputs available")
	}
	return all, nil
}

func names(ss []*surface.Surface) string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Name()
	}
	return strings.Join(out, ", ")
}

// SetWallpaper shows path, a file or directory, on the target outputs.
// The path replaces the configured source until the next reload or
// workspace change.
func (c *Core) SetWallpaper(ctx context.Context, output, path string) (string, error) {
	path = config.ExpandPath(path)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("wallpaper not found: %s", path)
	}

	var msg string
	var cmdErr error
	err := c.submit(ctx, func() {
		targets, err := c.targets(output)
		if err != nil {
			cmdErr = err
			return
		}
		var failed []*surface.Surface
		for _, s := range targets {
			out := c.outputs[s.Name()]
			out.source = path
			out.playlist = c.buildPlaylist(path, out.opts)
			if err := c.show(s, out); err != nil {
				c.log.Error("set wallpaper failed", "output", s.Name(), "path", path, "error", err)
				failed = append(failed, s)
			}
		}
		if len(failed) > 0 {
			cmdErr = fmt.Errorf("cannot load wallpaper on %s", names(failed))
			return
		}
		msg = fmt.Sprintf("Wallpaper set on %s", names(targets))
	})
	if err != nil {
		return "", err
	}
	return msg, cmdErr
}

// Next advances the slideshow of the target outputs.
func (c *Core) Next(ctx context.Context, output string) (string, error) {
	return c.step(ctx, output, true)
}

// Previous steps the slideshow of the target outputs back.
func (c *Core) Previous(ctx context.Context, output string) (string, error) {
	return c.step(ctx, output, false)
}

func (c *Core) step(ctx context.Context, output string, forward bool) (string, error) {
	var msg string
	var cmdErr error
	err := c.submit(ctx, func() {
		targets, err := c.targets(output)
		if err != nil {
			cmdErr = err
			return
		}
		var moved, failed []*surface.Surface
		for _, s := range targets {
			out := c.outputs[s.Name()]
			if out.playlist == nil || out.playlist.Len() < 2 {
				continue
			}
			if forward {
				out.playlist.Next()
			} else {
				out.playlist.Previous()
			}
			if err := c.show(s, out); err != nil {
				c.log.Error("slideshow step failed", "output", s.Name(), "error", err)
				failed = append(failed, s)
				continue
			}
			moved = append(moved, s)
		}
		switch {
		case len(failed) > 0:
			cmdErr = fmt.Errorf("cannot load wallpaper on %s", names(failed))
		case len(moved) == 0:
			cmdErr = errors.New("no slideshow with more than one image")
		case forward:
			msg = fmt.Sprintf("Next wallpaper on %s", names(moved))
		default:
			msg = fmt.Sprintf("Previous wallpaper on %s", names(moved))
		}
	})
	if err != nil {
		return "", err
	}
	return msg, cmdErr
}

// Pause stops the slideshow timers of the target outputs.
func (c *Core) Pause(ctx context.Context, output string) (string, error) {
	return c.setPaused(ctx, output, true)
}

// Resume restarts the slideshow timers of the target outputs.
func (c *Core) Resume(ctx context.Context, output string) (string, error) {
	return c.setPaused(ctx, output, false)
}

func (c *Core) setPaused(ctx context.Context, output string, paused bool) (string, error) {
	var msg string
	var cmdErr error
	err := c.submit(ctx, func() {
		targets, err := c.targets(output)
		if err != nil {
			cmdErr = err
			return
		}
		var changed []*surface.Surface
		for _, s := range targets {
			out := c.outputs[s.Name()]
			if out.playlist == nil || !out.playlist.Active() {
				continue
			}
			if paused {
				out.playlist.Pause()
			} else {
				out.playlist.Resume(c.now())
			}
			changed = append(changed, s)
		}
		switch {
		case len(changed) == 0:
			cmdErr = errors.New("no active slideshow")
		case paused:
			msg = fmt.Sprintf("Slideshow paused on %s", names(changed))
		default:
			msg = fmt.Sprintf("Slideshow resumed on %s", names(changed))
		}
	})
	if err != nil {
		return "", err
	}
	return msg, cmdErr
}

// Reload rereads the configuration and applies it to every output. A
// configuration that fails to load leaves the previous one in effect.
func (c *Core) Reload(ctx context.Context) (string, error) {
	var msg string
	var cmdErr error
	err := c.submit(ctx, func() {
		msg, cmdErr = c.reload()
	})
	if err != nil {
		return "", err
	}
	return msg, cmdErr
}

func (c *Core) reload() (string, error) {
	cfg, err := c.load()
	if err != nil {
		c.log.Error("config reload failed, keeping previous configuration", "error", err)
		return "", errors.New("configuration could not be loaded, keeping previous settings")
	}
	c.cfg = cfg
	c.registry.Each(func(s *surface.Surface) {
		s.Reconfigure(cfg.ForOutput(s.Name()))
		if out, ok := c.outputs[s.Name()]; ok {
			c.refresh(s, out, false)
		}
	})
	c.log.Info("configuration reloaded", "outputs", c.registry.Len())
	return "Configuration reloaded", nil
}

// Status reports every output.
func (c *Core) Status(ctx context.Context) (*ipc.StatusData, error) {
	var status *ipc.StatusData
	err := c.submit(ctx, func() {
		status = &ipc.StatusData{
			DaemonRunning: true,
			Backend:       c.backend.Name(),
			ConfigPath:    c.cfgPath,
			UptimeSeconds: int64(c.now().Sub(c.started) / time.Second),
			Outputs:       []ipc.OutputStatus{},
		}
		c.registry.Each(func(s *surface.Surface) {
			status.Outputs = append(status.Outputs, c.outputStatus(s))
		})
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Core) outputStatus(s *surface.Surface) ipc.OutputStatus {
	w, h := s.Size()
	cfg := s.Config()
	st := ipc.OutputStatus{
		Name:       s.Name(),
		Wallpaper:  s.Wallpaper(),
		State:      s.State().String(),
		Width:      w,
		Height:     h,
		Scale:      s.Scale(),
		Transition: string(cfg.Transition),
		Mode:       string(cfg.Mode),
	}
	if ws, ok := c.workspaces[s.Name()]; ok && ws >= 0 {
		st.Workspace = &ws
	}
	if out, ok := c.outputs[s.Name()]; ok && out.playlist != nil {
		st.SlideshowActive = out.playlist.Active()
		st.SlideshowPaused = out.playlist.Paused()
	}
	return st
}

// Wallpapers reports the image shown on the target outputs.
func (c *Core) Wallpapers(ctx context.Context, output string) ([]ipc.WallpaperInfo, error) {
	var walls []ipc.WallpaperInfo
	var cmdErr error
	err := c.submit(ctx, func() {
		targets, err := c.targets(output)
		if err != nil {
			cmdErr = err
			return
		}
		for _, s := range targets {
			walls = append(walls, ipc.WallpaperInfo{Output: s.Name(), Path: s.Wallpaper()})
		}
	})
	if err != nil {
		return nil, err
	}
	return walls, cmdErr
}
