package dto

// CompletionRequest is the body of PUT /api/fulfillments/:id. The path id
// identifies the order.
type CompletionRequest struct {
	Category string `json:"category"`
	ItemID   string `json:"item_id"`
	Outcome  string `json:"outcome"`
}
