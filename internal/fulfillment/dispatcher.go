package fulfillment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tripmart/fulfillment/internal/adapter/vendorapi"
	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
)

// VendorDispatcher routes each item to its category-specific vendor
// operation, switching on the category tag.
type VendorDispatcher struct {
	client vendorapi.Client
	logger *slog.Logger
}

// NewVendorDispatcher constructs a dispatcher over the vendor client.
func NewVendorDispatcher(client vendorapi.Client, logger *slog.Logger) *VendorDispatcher {
	return &VendorDispatcher{client: client, logger: logger}
}

// Dispatch invokes the initiate operation matching the item's category.
func (d *VendorDispatcher) Dispatch(ctx context.Context, orderID string, item model.Item) error {
	switch item.Category {
	case model.CategoryFlight:
		return d.client.InitiateFlight(ctx, orderID, item)
	case model.CategoryTaxi:
		return d.client.InitiateTaxi(ctx, orderID, item)
	case model.CategoryAccommodation:
		return d.client.InitiateAccommodation(ctx, orderID, item)
	default:
		return fmt.Errorf("%w: %q", domainErrors.ErrUnknownCategory, item.Category)
	}
}
