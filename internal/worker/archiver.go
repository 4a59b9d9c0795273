package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tripmart/fulfillment/internal/domain/model"
)

// FulfillmentFacade exposes the subset of application functionality required
// by the archiver.
type FulfillmentFacade interface {
	FinalizedOrders(olderThan time.Duration) []model.OrderState
	ArchiveOrder(ctx context.Context, state model.OrderState) error
	EvictOrder(orderID string)
}

// Archiver periodically persists finalized orders to the archive and evicts
// their coordinators from the registry.
type Archiver struct {
	facade        FulfillmentFacade
	sweepInterval time.Duration
	retention     time.Duration
	logger        *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewArchiver constructs the archive sweeper.
func NewArchiver(facade FulfillmentFacade, sweepInterval, retention time.Duration, logger *slog.Logger) *Archiver {
	if sweepInterval <= 0 {
		sweepInterval = time.Second
	}
	if retention < 0 {
		retention = 0
	}
	return &Archiver{
		facade:        facade,
		sweepInterval: sweepInterval,
		retention:     retention,
		logger:        logger,
	}
}

// Start launches background sweeping.
func (a *Archiver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go a.run(runCtx)
}

// Stop waits for the sweeper to finish.
func (a *Archiver) Stop() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *Archiver) run(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(ctx)
		}
	}
}

func (a *Archiver) sweep(ctx context.Context) {
	for _, state := range a.facade.FinalizedOrders(a.retention) {
		if err := a.facade.ArchiveOrder(ctx, state); err != nil {
			// keep the coordinator around for the next sweep
			a.logger.Error("archive order failed",
				slog.String("order_id", state.Order.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		a.facade.EvictOrder(state.Order.ID)
		a.logger.Info("order archived",
			slog.String("order_id", state.Order.ID),
			slog.String("phase", string(state.Phase)),
		)
	}
}
