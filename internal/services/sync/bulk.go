package sync

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/models"
)

const (
	// DefaultBatchSize bounds concurrent owner syncs during a bulk run.
	DefaultBatchSize = 2

	// DefaultBatchDelay is the pause between bulk batches.
	DefaultBatchDelay = time.Second

	// eventBufferSize bounds the bulk event channel. Slow consumers drop
	// events rather than stall the run.
	eventBufferSize = 64
)

// Coordinator runs syncs for many owners in fixed-size batches, isolating
// per-owner failures and publishing completion events.
type Coordinator struct {
	owners     interfaces.OwnerStore
	syncer     interfaces.SyncService
	logger     *common.Logger
	batchSize  int
	batchDelay time.Duration

	events chan models.SyncEvent

	sleep func(ctx context.Context, d time.Duration) error
}

// NewCoordinator creates a bulk sync coordinator.
func NewCoordinator(owners interfaces.OwnerStore, syncer interfaces.SyncService, logger *common.Logger, batchSize int, batchDelay time.Duration) *Coordinator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchDelay <= 0 {
		batchDelay = DefaultBatchDelay
	}
	return &Coordinator{
		owners:     owners,
		syncer:     syncer,
		logger:     logger,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		events:     make(chan models.SyncEvent, eventBufferSize),
		sleep:      sleepCtx,
	}
}

// Events exposes the completion event stream. Events are dropped, never
// blocked on, when the buffer is full.
func (c *Coordinator) Events() <-chan models.SyncEvent {
	return c.events
}

// SyncAll runs a sync for every active owner in batches. One owner's failure
// never aborts the run; cancellation is honored between owners. The outcome
// list covers every owner attempted.
func (c *Coordinator) SyncAll(ctx context.Context, opts interfaces.SyncOptions) ([]*models.OwnerSyncOutcome, error) {
	owners, err := c.owners.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("owners", len(owners)).
		Int("batch_size", c.batchSize).
		Bool("full_sync", opts.FullSync).
		Msg("Bulk sync started")

	var outcomes []*models.OwnerSyncOutcome

	for start := 0; start < len(owners); start += c.batchSize {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		end := start + c.batchSize
		if end > len(owners) {
			end = len(owners)
		}

		outcomes = append(outcomes, c.runBatch(ctx, owners[start:end], opts)...)

		if end < len(owners) {
			if err := c.sleep(ctx, c.batchDelay); err != nil {
				return outcomes, err
			}
		}
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	c.logger.Info().
		Int("owners", len(outcomes)).
		Int("failed", failed).
		Msg("Bulk sync finished")

	return outcomes, nil
}

// runBatch syncs one batch of owners concurrently, one goroutine per member.
// This is the only place syncs run in parallel; batchSize bounds the fan-out.
// Outcomes keep the batch's owner order regardless of completion order.
func (c *Coordinator) runBatch(ctx context.Context, owners []*models.Owner, opts interfaces.SyncOptions) []*models.OwnerSyncOutcome {
	outcomes := make([]*models.OwnerSyncOutcome, len(owners))

	var wg sync.WaitGroup
	for i, owner := range owners {
		if err := ctx.Err(); err != nil {
			outcomes[i] = &models.OwnerSyncOutcome{OwnerID: owner.ID, Err: err}
			c.publish(owner.ID, nil, err)
			continue
		}

		wg.Add(1)
		go func(i int, owner *models.Owner) {
			defer wg.Done()

			report, err := c.syncer.Synchronize(ctx, owner.ID, opts)
			if err != nil {
				c.logger.Warn().Err(err).Str("owner", owner.ID).Msg("Owner sync failed")
			}

			outcomes[i] = &models.OwnerSyncOutcome{OwnerID: owner.ID, Report: report, Err: err}
			c.publish(owner.ID, report, err)
		}(i, owner)
	}
	wg.Wait()

	return outcomes
}

// publish emits a completion event without blocking.
func (c *Coordinator) publish(ownerID string, report *models.SyncReport, err error) {
	event := models.SyncEvent{
		OwnerID:    ownerID,
		Report:     report,
		FinishedAt: time.Now(),
	}
	if err != nil {
		event.Err = err.Error()
	}

	select {
	case c.events <- event:
	default:
		c.logger.Debug().Str("owner", ownerID).Msg("Event buffer full, dropping sync event")
	}
}
