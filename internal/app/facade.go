package app

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
	"github.com/tripmart/fulfillment/internal/domain/repository"
	"github.com/tripmart/fulfillment/internal/fulfillment"
)

// FulfillmentFacade aggregates the live coordinator registry and the
// finalized-order archive behind one application surface.
type FulfillmentFacade struct {
	registry *fulfillment.Registry
	archive  repository.ArchiveRepository
}

// NewFulfillmentFacade constructs FulfillmentFacade.
func NewFulfillmentFacade(registry *fulfillment.Registry, archive repository.ArchiveRepository) *FulfillmentFacade {
	return &FulfillmentFacade{registry: registry, archive: archive}
}

// SubmitOrder validates and starts fulfillment of a new order.
func (f *FulfillmentFacade) SubmitOrder(ctx context.Context, order model.Order) error {
	_, err := f.registry.Submit(order)
	return err
}

// CompleteFulfillment routes an external completion notification to the
// order's coordinator.
func (f *FulfillmentFacade) CompleteFulfillment(ctx context.Context, orderID string, category model.Category, itemID string, outcome model.Outcome) error {
	return f.registry.Complete(orderID, category, itemID, outcome)
}

// OrderState returns the current snapshot for a live order, falling back to
// the archive for orders already evicted from the registry.
func (f *FulfillmentFacade) OrderState(ctx context.Context, orderID string) (*model.OrderState, error) {
	state, err := f.registry.State(orderID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}
	return f.archive.GetFinalState(ctx, orderID)
}

// FinalizedOrders returns live orders that have been terminal for at least
// the given duration.
func (f *FulfillmentFacade) FinalizedOrders(olderThan time.Duration) []model.OrderState {
	return f.registry.TerminalBefore(time.Now().Add(-olderThan))
}

// ArchiveOrder persists a finalized order state.
func (f *FulfillmentFacade) ArchiveOrder(ctx context.Context, state model.OrderState) error {
	return f.archive.SaveFinalState(ctx, state)
}

// EvictOrder drops a terminal coordinator from the registry.
func (f *FulfillmentFacade) EvictOrder(orderID string) {
	f.registry.Evict(orderID)
}
