package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
)

// Registry hosts the live coordinator instance for each order and enforces
// the order-id reuse policy: a resubmission is rejected while an active or
// resolved instance exists, and allowed again only after a failed one.
type Registry struct {
	timeouts   TimeoutProvider
	dispatcher Dispatcher
	logger     *slog.Logger
	runCtx     context.Context

	mu           sync.RWMutex
	coordinators map[string]*Coordinator
}

// NewRegistry constructs a registry whose coordinators run on the given
// application context.
func NewRegistry(ctx context.Context, timeouts TimeoutProvider, dispatcher Dispatcher, logger *slog.Logger) *Registry {
	return &Registry{
		timeouts:     timeouts,
		dispatcher:   dispatcher,
		logger:       logger,
		runCtx:       ctx,
		coordinators: make(map[string]*Coordinator),
	}
}

// Submit validates the order, registers a coordinator for it and starts the
// fulfillment run asynchronously. Validation and configuration errors are
// returned synchronously; no state is registered for a rejected submission.
func (r *Registry) Submit(order model.Order) (*Coordinator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.coordinators[order.ID]; ok {
		if existing.Err() == nil {
			return nil, fmt.Errorf("%w: order %q", domainErrors.ErrAlreadyExists, order.ID)
		}
		// a failed instance may be superseded
		r.logger.Info("replacing failed order instance", slog.String("order_id", order.ID))
	}

	coord, err := New(order, r.timeouts, r.dispatcher, r.logger)
	if err != nil {
		return nil, err
	}
	r.coordinators[order.ID] = coord
	go coord.Run(r.runCtx)
	return coord, nil
}

// Complete routes a completion notification to the order's coordinator.
// Delivery is at-least-once upstream; the coordinator absorbs duplicates.
func (r *Registry) Complete(orderID string, category model.Category, itemID string, outcome model.Outcome) error {
	r.mu.RLock()
	coord, ok := r.coordinators[orderID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: order %q", domainErrors.ErrNotFound, orderID)
	}
	coord.RecordCompletion(category, itemID, outcome)
	return nil
}

// State returns the current snapshot for a live order.
func (r *Registry) State(orderID string) (*model.OrderState, error) {
	r.mu.RLock()
	coord, ok := r.coordinators[orderID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: order %q", domainErrors.ErrNotFound, orderID)
	}
	state := coord.Snapshot()
	return &state, nil
}

// TerminalBefore returns snapshots of coordinators that finalized at or
// before the cutoff, for archival.
func (r *Registry) TerminalBefore(cutoff time.Time) []model.OrderState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.OrderState
	for _, coord := range r.coordinators {
		state := coord.Snapshot()
		if state.FinalizedAt == nil || state.FinalizedAt.After(cutoff) {
			continue
		}
		out = append(out, state)
	}
	return out
}

// Evict removes a terminal coordinator from the registry. Live coordinators
// are never evicted.
func (r *Registry) Evict(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coord, ok := r.coordinators[orderID]
	if !ok || !coord.Snapshot().Phase.Terminal() {
		return
	}
	delete(r.coordinators, orderID)
}

// Len reports the number of hosted coordinators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.coordinators)
}
