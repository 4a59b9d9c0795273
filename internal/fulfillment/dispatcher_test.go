package fulfillment

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
	testhelpers "github.com/tripmart/fulfillment/internal/test"
)

func TestVendorDispatcherRoutesByCategory(t *testing.T) {
	client := &testhelpers.VendorClientStub{}
	dispatcher := NewVendorDispatcher(client, testLogger())
	ctx := context.Background()

	items := []model.Item{
		{ID: "F1", Category: model.CategoryFlight, Flight: &model.FlightDetails{}},
		{ID: "T1", Category: model.CategoryTaxi, Taxi: &model.TaxiDetails{}},
		{ID: "L1", Category: model.CategoryAccommodation, Accommodation: &model.AccommodationDetails{}},
	}
	for _, item := range items {
		if err := dispatcher.Dispatch(ctx, "o-1", item); err != nil {
			t.Fatalf("unexpected error for %s: %v", item.ID, err)
		}
	}

	want := []string{"flight:F1", "taxi:T1", "accommodation:L1"}
	got := client.Calls()
	if len(got) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected call %q at position %d, got %q", want[i], i, got[i])
		}
	}
}

func TestVendorDispatcherPropagatesRejection(t *testing.T) {
	rejection := errors.New("no seats left")
	client := &testhelpers.VendorClientStub{
		FlightFn: func(context.Context, string, model.Item) error { return rejection },
	}
	dispatcher := NewVendorDispatcher(client, testLogger())

	item := model.Item{ID: "F1", Category: model.CategoryFlight, Flight: &model.FlightDetails{}}
	if err := dispatcher.Dispatch(context.Background(), "o-1", item); !errors.Is(err, rejection) {
		t.Fatalf("expected the vendor error to surface, got %v", err)
	}
}

func TestVendorDispatcherUnknownCategory(t *testing.T) {
	dispatcher := NewVendorDispatcher(&testhelpers.VendorClientStub{}, testLogger())

	item := model.Item{ID: "X1", Category: "CRUISE"}
	if err := dispatcher.Dispatch(context.Background(), "o-1", item); !errors.Is(err, domainErrors.ErrUnknownCategory) {
		t.Fatalf("expected unknown category error, got %v", err)
	}
}
