package dto

import "time"

// FlightRequest describes one flight item in a submission.
type FlightRequest struct {
	ID           string `json:"id"`
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
}

// TaxiRequest describes one taxi item in a submission.
type TaxiRequest struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	PickupAt time.Time `json:"pickup_at"`
}

// AccommodationRequest describes one lodging item in a submission.
type AccommodationRequest struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// OrderRequest is the body of PUT /api/orders/:id.
type OrderRequest struct {
	UserID         string                 `json:"user_id"`
	Flights        []FlightRequest        `json:"flights"`
	Taxis          []TaxiRequest          `json:"taxis"`
	Accommodations []AccommodationRequest `json:"accommodations"`
}

// ErrorResponse carries the typed rejection reason.
type ErrorResponse struct {
	Error string `json:"error"`
}
