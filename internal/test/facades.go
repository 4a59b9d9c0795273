package test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
)

// SampleOrder builds the canonical two-item order used across tests: one
// taxi and one accommodation.
func SampleOrder(id string) model.Order {
	return model.Order{
		ID:     id,
		UserID: "u-1",
		Items: []model.Item{
			{
				ID:       "T1",
				Category: model.CategoryTaxi,
				Taxi:     &model.TaxiDetails{Name: "City Cab", PickupAt: time.Unix(0, 0)},
			},
			{
				ID:            "L1",
				Category:      model.CategoryAccommodation,
				Accommodation: &model.AccommodationDetails{Name: "Grand Hotel", CheckIn: time.Unix(0, 0), CheckOut: time.Unix(86400, 0)},
			},
		},
	}
}

// DispatcherStub controls per-item dispatch behaviour.
type DispatcherStub struct {
	DispatchFn func(ctx context.Context, orderID string, item model.Item) error

	mu    sync.Mutex
	calls []string
}

// Dispatch records the call and delegates to the configured function;
// by default every item is accepted.
func (s *DispatcherStub) Dispatch(ctx context.Context, orderID string, item model.Item) error {
	s.mu.Lock()
	s.calls = append(s.calls, item.ID)
	s.mu.Unlock()
	if s.DispatchFn != nil {
		return s.DispatchFn(ctx, orderID, item)
	}
	return nil
}

// Calls returns item ids in dispatch order.
func (s *DispatcherStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// TimeoutProviderStub serves a fixed wait for every requested category.
type TimeoutProviderStub struct {
	Wait      time.Duration
	ResolveFn func([]model.Category) (map[model.Category]time.Duration, error)
}

// ResolveTimeouts delegates or answers with the fixed wait.
func (s TimeoutProviderStub) ResolveTimeouts(categories []model.Category) (map[model.Category]time.Duration, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(categories)
	}
	wait := s.Wait
	if wait == 0 {
		wait = 50 * time.Millisecond
	}
	out := make(map[model.Category]time.Duration, len(categories))
	for _, category := range categories {
		out[category] = wait
	}
	return out, nil
}

// ArchiveRepositoryStub keeps archived states in memory.
type ArchiveRepositoryStub struct {
	SaveFn func(context.Context, model.OrderState) error
	GetFn  func(context.Context, string) (*model.OrderState, error)

	mu    sync.Mutex
	saved map[string]model.OrderState
}

// SaveFinalState stores or delegates.
func (s *ArchiveRepositoryStub) SaveFinalState(ctx context.Context, state model.OrderState) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]model.OrderState)
	}
	s.saved[state.Order.ID] = state
	return nil
}

// GetFinalState looks up or delegates.
func (s *ArchiveRepositoryStub) GetFinalState(ctx context.Context, orderID string) (*model.OrderState, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.saved[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %q", domainErrors.ErrNotFound, orderID)
	}
	return &state, nil
}

// Saved returns the archived state for an order id, if any.
func (s *ArchiveRepositoryStub) Saved(orderID string) (model.OrderState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.saved[orderID]
	return state, ok
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	SubmitFn func(context.Context, model.Order) error
	StateFn  func(context.Context, string) (*model.OrderState, error)
}

// SubmitOrder delegates to the provided function or accepts the order.
func (s OrderFacadeStub) SubmitOrder(ctx context.Context, order model.Order) error {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, order)
	}
	return nil
}

// OrderState delegates or returns a minimal waiting snapshot.
func (s OrderFacadeStub) OrderState(ctx context.Context, orderID string) (*model.OrderState, error) {
	if s.StateFn != nil {
		return s.StateFn(ctx, orderID)
	}
	return &model.OrderState{
		Order:       model.Order{ID: orderID},
		Phase:       model.PhaseWaiting,
		Completions: map[string]model.Completion{},
	}, nil
}

// CompletionFacadeStub simulates the completion ingestion surface.
type CompletionFacadeStub struct {
	CompleteFn func(context.Context, string, model.Category, string, model.Outcome) error
}

// CompleteFulfillment delegates or absorbs the notification.
func (s CompletionFacadeStub) CompleteFulfillment(ctx context.Context, orderID string, category model.Category, itemID string, outcome model.Outcome) error {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, orderID, category, itemID, outcome)
	}
	return nil
}

// FulfillmentFacadeStub aggregates the handler-facing stubs.
type FulfillmentFacadeStub struct {
	OrderFacadeStub
	CompletionFacadeStub
}

// VendorClientStub records per-category initiate calls.
type VendorClientStub struct {
	FlightFn        func(context.Context, string, model.Item) error
	TaxiFn          func(context.Context, string, model.Item) error
	AccommodationFn func(context.Context, string, model.Item) error

	mu    sync.Mutex
	calls []string
}

func (s *VendorClientStub) record(product, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, product+":"+itemID)
}

// InitiateFlight records the call and delegates.
func (s *VendorClientStub) InitiateFlight(ctx context.Context, orderID string, item model.Item) error {
	s.record("flight", item.ID)
	if s.FlightFn != nil {
		return s.FlightFn(ctx, orderID, item)
	}
	return nil
}

// InitiateTaxi records the call and delegates.
func (s *VendorClientStub) InitiateTaxi(ctx context.Context, orderID string, item model.Item) error {
	s.record("taxi", item.ID)
	if s.TaxiFn != nil {
		return s.TaxiFn(ctx, orderID, item)
	}
	return nil
}

// InitiateAccommodation records the call and delegates.
func (s *VendorClientStub) InitiateAccommodation(ctx context.Context, orderID string, item model.Item) error {
	s.record("accommodation", item.ID)
	if s.AccommodationFn != nil {
		return s.AccommodationFn(ctx, orderID, item)
	}
	return nil
}

// Calls returns "product:item" markers in call order.
func (s *VendorClientStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// ArchiveCall stores information about ArchiveOrder invocations.
type ArchiveCall struct {
	OrderID string
	Phase   model.Phase
}

// ArchiverFacadeStub mimics worker interactions with the fulfillment facade.
type ArchiverFacadeStub struct {
	Batches     [][]model.OrderState
	FinalizedFn func(time.Duration) []model.OrderState
	ArchiveFn   func(context.Context, model.OrderState) error

	mu             sync.Mutex
	Archived       []ArchiveCall
	Evicted        []string
	batchCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *ArchiverFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *ArchiverFacadeStub) Unlock() { s.mu.Unlock() }

// FinalizedOrders returns batches from the configured queue.
func (s *ArchiverFacadeStub) FinalizedOrders(olderThan time.Duration) []model.OrderState {
	if s.FinalizedFn != nil {
		return s.FinalizedFn(olderThan)
	}
	call := atomic.AddInt32(&s.batchCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1]
	}
	return nil
}

// ArchiveOrder records the call and delegates.
func (s *ArchiverFacadeStub) ArchiveOrder(ctx context.Context, state model.OrderState) error {
	if s.ArchiveFn != nil {
		if err := s.ArchiveFn(ctx, state); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Archived = append(s.Archived, ArchiveCall{OrderID: state.Order.ID, Phase: state.Phase})
	return nil
}

// EvictOrder records the eviction.
func (s *ArchiverFacadeStub) EvictOrder(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Evicted = append(s.Evicted, orderID)
}
