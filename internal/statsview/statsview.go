//go:build statsview

package statsview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Available reports whether this build carries the stats server.
func Available() bool { return true }

// Start serves the charts on addr until ctx is done. The listener runs in
// the background; a failure to serve is logged.
func Start(ctx context.Context, addr string, logger *slog.Logger) error {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()

	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("stats server failed", "addr", addr, "error", err)
		}
	}()
	context.AfterFunc(ctx, mgr.Stop)

	logger.Info("stats server started", "url", "http://"+addr+Path)
	return nil
}
