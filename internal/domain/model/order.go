package model

import "time"

// Category discriminates fulfillment item variants.
type Category string

const (
	CategoryFlight        Category = "FLIGHT"
	CategoryTaxi          Category = "TAXI"
	CategoryAccommodation Category = "ACCOMMODATION"
)

// Valid reports whether the category is one of the known product types.
func (c Category) Valid() bool {
	switch c {
	case CategoryFlight, CategoryTaxi, CategoryAccommodation:
		return true
	}
	return false
}

// FlightDetails carries flight-specific attributes.
type FlightDetails struct {
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
}

// TaxiDetails carries taxi-specific attributes.
type TaxiDetails struct {
	Name     string    `json:"name"`
	PickupAt time.Time `json:"pickup_at"`
}

// AccommodationDetails carries lodging-specific attributes.
type AccommodationDetails struct {
	Name     string    `json:"name"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Item is one fulfillment request within an order. The Category tag selects
// which of the variant pointers is populated.
type Item struct {
	ID            string                `json:"id"`
	Category      Category              `json:"category"`
	Flight        *FlightDetails        `json:"flight,omitempty"`
	Taxi          *TaxiDetails          `json:"taxi,omitempty"`
	Accommodation *AccommodationDetails `json:"accommodation,omitempty"`
}

// Order is a caller submission of one or more fulfillment items.
// Immutable once submitted.
type Order struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Items  []Item `json:"items"`
}

// Categories returns the distinct categories present, in item order.
func (o Order) Categories() []Category {
	seen := make(map[Category]struct{}, len(o.Items))
	var out []Category
	for _, item := range o.Items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
