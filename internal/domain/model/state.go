package model

import "time"

// Outcome is the terminal result reported for a dispatched item.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeFailed    Outcome = "FAILED"
)

// Completion is an externally originated notification that an item reached a
// terminal outcome.
type Completion struct {
	Category Category `json:"category"`
	ItemID   string   `json:"item_id"`
	Outcome  Outcome  `json:"outcome"`
}

// Phase describes where the coordinator is in its lifecycle.
type Phase string

const (
	PhaseCreated     Phase = "CREATED"
	PhaseDispatching Phase = "DISPATCHING"
	PhaseWaiting     Phase = "WAITING"
	PhaseResolved    Phase = "RESOLVED"
	PhaseHungFailure Phase = "HUNG_FAILURE"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseResolved || p == PhaseHungFailure
}

// OrderState is an immutable snapshot of a coordinator's aggregate.
type OrderState struct {
	Order                Order                 `json:"order"`
	Phase                Phase                 `json:"phase"`
	Accepted             []string              `json:"accepted"`
	Rejected             []string              `json:"rejected"`
	Completions          map[string]Completion `json:"completions"`
	Unexpected           map[string]Completion `json:"unexpected,omitempty"`
	AllDispatchAttempted bool                  `json:"all_dispatch_attempted"`
	TimedOut             bool                  `json:"timed_out"`
	PartiallyFulfilled   bool                  `json:"partially_fulfilled"`
	FinalizedAt          *time.Time            `json:"finalized_at,omitempty"`
}

// FullyFulfilled reports whether every item completed successfully.
func (s OrderState) FullyFulfilled() bool {
	return s.Phase == PhaseResolved && !s.PartiallyFulfilled
}
