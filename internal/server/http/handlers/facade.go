package handlers

import (
	"context"

	"github.com/tripmart/fulfillment/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, order model.Order) error
	OrderState(ctx context.Context, orderID string) (*model.OrderState, error)
}

// CompletionFacade absorbs external completion notifications.
type CompletionFacade interface {
	CompleteFulfillment(ctx context.Context, orderID string, category model.Category, itemID string, outcome model.Outcome) error
}

// FulfillmentFacade aggregates the full set of operations used across handlers.
type FulfillmentFacade interface {
	OrderFacade
	CompletionFacade
}
