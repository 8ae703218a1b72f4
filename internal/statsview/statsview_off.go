//go:build !statsview

package statsview

import (
	"context"
	"log/slog"
)

func Available() bool { return false }

func Start(ctx context.Context, addr string, logger *slog.Logger) error {
	return ErrUnavailable
}
