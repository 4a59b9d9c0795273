package dto

import "time"

// CompletionView is one recorded completion in a state response.
type CompletionView struct {
	Category string `json:"category"`
	ItemID   string `json:"item_id"`
	Outcome  string `json:"outcome"`
}

// OrderStateResponse is the body of GET /api/orders/:id.
type OrderStateResponse struct {
	OrderID              string           `json:"order_id"`
	UserID               string           `json:"user_id"`
	Phase                string           `json:"phase"`
	Accepted             []string         `json:"accepted"`
	Rejected             []string         `json:"rejected"`
	Completions          []CompletionView `json:"completions"`
	AllDispatchAttempted bool             `json:"all_dispatch_attempted"`
	TimedOut             bool             `json:"timed_out"`
	PartiallyFulfilled   bool             `json:"partially_fulfilled"`
	FinalizedAt          *time.Time       `json:"finalized_at,omitempty"`
}
