package focus

import (
	"context"
	"time"
)

// Run ticks the engine every interval until ctx is cancelled or the run
// leaves the running state. It is the scheduler for hosts that do not
// provide their own.
func Run(ctx context.Context, engine *Engine, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			engine.Tick()
			if !engine.State().IsRunning {
				return
			}
		}
	}
}
