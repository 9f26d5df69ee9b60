package app

import (
	"context"
	"time"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	syncsvc "github.com/bobmcallan/foliosync/internal/services/sync"
)

// startSyncScheduler triggers an incremental bulk sync on a fixed interval.
// Owners already mid-sync are skipped by the orchestrator's single-flight
// guard, so an overrunning tick never doubles up work.
func startSyncScheduler(ctx context.Context, coordinator *syncsvc.Coordinator, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Sync scheduler: stopped")
			return
		case <-ticker.C:
			runScheduledSync(ctx, coordinator, logger)
		}
	}
}

func runScheduledSync(ctx context.Context, coordinator *syncsvc.Coordinator, logger *common.Logger) {
	start := time.Now()

	outcomes, err := coordinator.SyncAll(ctx, interfaces.SyncOptions{})
	if err != nil {
		logger.Warn().Err(err).Msg("Scheduled sync: bulk run failed")
		return
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}

	logger.Info().
		Int("owners", len(outcomes)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled sync: complete")
}
