package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence while active reports true. Refreshes back off exponentially
// while every collection is failing. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, interval time.Duration, active func() bool, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			wait := interval
			if active == nil || active() {
				if err := store.RefreshAll(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("refresh failed", zap.Error(err))
				}
				wait = calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			}
			timer.Reset(wait)
		}
	}()
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
