package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/javanhut/Canviz/internal/config"
	"github.com/javanhut/Canviz/internal/daemon"
	"github.com/javanhut/Canviz/internal/hyprland"
	"github.com/javanhut/Canviz/internal/ipc"
	"github.com/javanhut/Canviz/internal/logging"
	"github.com/javanhut/Canviz/internal/platform"
	"github.com/javanhut/Canviz/internal/runtimepath"
	"github.com/javanhut/Canviz/internal/statsview"
	"github.com/javanhut/Canviz/internal/wayland"
	"github.com/javanhut/Canviz/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: canviz daemon [--config PATH] [--backend wayland|x11] [-v] [--statsview [--statsview-addr ADDR]]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the wallpaper daemon in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/canviz/config.yaml)")
	backendName := fs.String("backend", "auto", "Display backend: auto, wayland or x11")
	verbose := fs.Bool("v", false, "Log at debug level")
	stats := fs.Bool("statsview", false, "Serve runtime charts (needs a build with -tags statsview)")
	statsAddr := fs.String("statsview-addr", statsview.DefaultAddr, "Address for --statsview")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}
	if *stats && !statsview.Available() {
		fmt.Fprintln(os.Stderr, statsview.ErrUnavailable)
		return 2
	}

	path := *configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	cfg, loadErr := config.LoadFromPath(path)
	if loadErr != nil {
		cfg = config.DefaultConfig()
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		Verbose:   *verbose,
		File:      config.ExpandPath(cfg.Logging.File),
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	if loadErr != nil {
		logger.Error("configuration unusable, using built-in defaults", "path", path, "error", loadErr)
	} else {
		logger.Info("configuration loaded", "path", path, "monitors", len(cfg.Monitors))
	}

	kind, err := platform.Detect(*backendName)
	if err != nil {
		logger.Error("cannot select display backend", "error", err)
		return 1
	}
	backend, err := openBackend(kind, logger)
	if err != nil {
		logger.Error("failed to connect to display", "backend", kind, "error", err)
		return 1
	}

	core, err := daemon.New(daemon.Config{
		Config:     cfg,
		ConfigPath: path,
		Backend:    backend,
		Logger:     logger,
	})
	if err != nil {
		backend.Close()
		logger.Error("failed to create daemon", "error", err)
		return 1
	}

	ipcServer, err := ipc.NewServer(ipc.ServerConfig{Controller: core, Logger: logger})
	if err != nil {
		backend.Close()
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		backend.Close()
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if dir, err := runtimepath.HyprlandDir(); err == nil {
		listener := hyprland.NewListener(hyprland.ListenerConfig{
			Dir: dir,
			OnChange: func(c hyprland.WorkspaceChange) {
				core.NotifyWorkspace(c.Output, c.Workspace)
			},
			Logger: logger,
		})
		go listener.Run(ctx)
	}

	if *stats {
		if err := statsview.Start(ctx, *statsAddr, logger); err != nil {
			logger.Error("failed to start stats server", "error", err)
		}
	}

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					logger.Info("received SIGHUP, reloading config")
					reloadCtx, reloadCancel := context.WithTimeout(ctx, ipc.DefaultTimeout)
					if _, err := core.Reload(reloadCtx); err != nil {
						logger.Warn("config reload failed", "error", err)
					}
					reloadCancel()
				default:
					logger.Info("shutting down", "signal", sig.String())
					cancel()
				}
			}
		}
	}()

	if err := core.Run(ctx); err != nil {
		logger.Error("event loop failed", "error", err)
		return 1
	}
	return 0
}

// openBackend connects to the display server named by kind.
func openBackend(kind string, logger *slog.Logger) (platform.Backend, error) {
	switch kind {
	case platform.Wayland:
		c, err := wayland.Connect(logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case platform.X11:
		b, err := x11.Connect(logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.New("unsupported backend: " + kind)
	}
}

