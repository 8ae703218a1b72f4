package daemon

import (
	"context"
	"log/slog"
	"time"
)

// TickerConfig holds configuration for the slideshow ticker.
type TickerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Ticker periodically asks the event loop to advance due slideshows. It
// never touches surfaces itself.
type Ticker struct {
	interval time.Duration
	post     func(func()) bool
	advance  func()
	logger   *slog.Logger
}

// NewTicker creates a ticker that hands advance to post on every tick.
func NewTicker(cfg TickerConfig, post func(func()) bool, advance func()) *Ticker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Ticker{
		interval: interval,
		post:     post,
		advance:  advance,
		logger:   logger,
	}
}

// Run starts the tick loop. Blocks until context is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Debug("slideshow ticker started", "interval", t.interval)

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("slideshow ticker stopped")
			return
		case <-ticker.C:
			if !t.post(t.advance) {
				t.logger.Debug("command queue full, skipping slideshow tick")
			}
		}
	}
}
