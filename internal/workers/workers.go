package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
)

// sweepTimeout bounds a single pass over all active challenges.
const sweepTimeout = 5 * time.Minute

type Sweeper interface {
	SweepAll(ctx context.Context, now time.Time) error
}

// StartSweepWorker runs one sweep immediately and then every interval until
// ctx is cancelled. The returned channel closes once the worker has exited.
func StartSweepWorker(ctx context.Context, sweeper Sweeper, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		runSweep(ctx, sweeper)
		for {
			select {
			case <-ctx.Done():
				logger.Log.Info("sweep worker stopped")
				return
			case <-ticker.C:
				runSweep(ctx, sweeper)
			}
		}
	}()

	return done
}

func runSweep(ctx context.Context, sweeper Sweeper) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	start := time.Now()
	if err := sweeper.SweepAll(ctx, start); err != nil {
		logger.Log.Error("sweep failed", zap.Error(err))
		return
	}
	logger.Log.Debug("sweep finished", zap.Duration("took", time.Since(start)))
}
