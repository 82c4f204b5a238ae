package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper is the scheduled entry point of the reconciliation service.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

// StartSweeper runs sweep cycles forever on a fixed interval. This is
// the liveness backstop: every pending payment converges to a terminal
// state even if the buyer closed the page right after checkout.
func StartSweeper(svc Sweeper, interval time.Duration) {
	go func() {
		slog.Info("Sweep worker started", "interval", interval.String())
		for {
			svc.Sweep(context.Background())
			time.Sleep(interval)
		}
	}()
}
