package repository

import (
	"context"

	"github.com/tripmart/fulfillment/internal/domain/model"
)

// ArchiveRepository persists finalized order states beyond the lifetime of
// their in-memory coordinators.
type ArchiveRepository interface {
	SaveFinalState(ctx context.Context, state model.OrderState) error
	GetFinalState(ctx context.Context, orderID string) (*model.OrderState, error)
}
