package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
)

// TimeoutProvider resolves the maximum-wait policy for a set of categories.
// An entry must exist for every requested category.
type TimeoutProvider interface {
	ResolveTimeouts(categories []model.Category) (map[model.Category]time.Duration, error)
}

// Dispatcher begins fulfillment of a single item. A nil error means the
// request was accepted by the vendor side, not that the product is fulfilled.
type Dispatcher interface {
	Dispatch(ctx context.Context, orderID string, item model.Item) error
}

// Coordinator owns the state of one order: it fans out dispatch requests,
// waits for asynchronous completion notifications under a deadline, cancels
// outstanding work on timeout and derives the final disposition.
//
// All state mutations are serialized through a single mutex; dispatch
// outcomes and completion notifications may arrive in any order relative to
// each other.
type Coordinator struct {
	order      model.Order
	dispatcher Dispatcher
	logger     *slog.Logger
	maxWait    time.Duration

	mu                   sync.Mutex
	phase                model.Phase
	accepted             map[string]struct{}
	rejected             map[string]struct{}
	completions          map[string]model.Completion
	unexpected           map[string]model.Completion
	allDispatchAttempted bool
	timedOut             bool
	partiallyFulfilled   bool
	finalizedAt          time.Time
	failure              error
	settledOnce          bool

	itemIDs map[string]struct{}
	settled chan struct{}
	done    chan struct{}
}

// New validates the order, resolves the timeout policy and returns a
// coordinator ready to Run. Validation and configuration failures happen
// here, synchronously, before any dispatch work begins.
func New(order model.Order, timeouts TimeoutProvider, dispatcher Dispatcher, logger *slog.Logger) (*Coordinator, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: order %q has no items", domainErrors.ErrInvalidArgs, order.ID)
	}

	itemIDs := make(map[string]struct{}, len(order.Items))
	for _, item := range order.Items {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: item without id in order %q", domainErrors.ErrInvalidArgs, order.ID)
		}
		if !item.Category.Valid() {
			return nil, fmt.Errorf("%w: item %q has unknown category %q", domainErrors.ErrInvalidArgs, item.ID, item.Category)
		}
		if _, dup := itemIDs[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q in order %q", domainErrors.ErrInvalidArgs, item.ID, order.ID)
		}
		itemIDs[item.ID] = struct{}{}
	}

	waits, err := timeouts.ResolveTimeouts(order.Categories())
	if err != nil {
		return nil, err
	}

	var maxWait time.Duration
	for _, wait := range waits {
		if wait > maxWait {
			maxWait = wait
		}
	}
	if maxWait <= 0 {
		return nil, fmt.Errorf("%w: resolved max wait %s", domainErrors.ErrBadConfig, maxWait)
	}

	return &Coordinator{
		order:       order,
		dispatcher:  dispatcher,
		logger:      logger,
		maxWait:     maxWait,
		phase:       model.PhaseCreated,
		accepted:    make(map[string]struct{}, len(order.Items)),
		rejected:    make(map[string]struct{}),
		completions: make(map[string]model.Completion, len(order.Items)),
		unexpected:  make(map[string]model.Completion),
		itemIDs:     itemIDs,
		settled:     make(chan struct{}),
		done:        make(chan struct{}),
	}, nil
}

// MaxWait returns the deadline duration resolved from configuration.
func (c *Coordinator) MaxWait() time.Duration { return c.maxWait }

// Run executes the state machine to completion. It blocks exactly once, in
// the waiting phase, until every dispatched item has a recorded completion or
// the deadline elapses. Cancellation of in-flight dispatches on timeout is
// advisory: Run never waits for an acknowledgement.
func (c *Coordinator) Run(ctx context.Context) {
	dispatchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.phase = model.PhaseDispatching
	c.mu.Unlock()

	for _, item := range c.order.Items {
		go c.dispatchItem(dispatchCtx, item)
	}

	c.mu.Lock()
	c.phase = model.PhaseWaiting
	c.mu.Unlock()

	c.logger.Info("order waiting for completions",
		slog.String("order_id", c.order.ID),
		slog.Int("items", len(c.order.Items)),
		slog.Duration("max_wait", c.maxWait),
	)

	timer := time.NewTimer(c.maxWait)
	defer timer.Stop()

	hung := false
	select {
	case <-c.settled:
	case <-timer.C:
		c.mu.Lock()
		c.timedOut = true
		hung = !c.allDispatchAttempted
		received := len(c.completions)
		c.mu.Unlock()
		cancel()
		c.logger.Info("order timed out",
			slog.String("order_id", c.order.ID),
			slog.Int("completions", received),
			slog.Bool("hung", hung),
		)
	case <-ctx.Done():
		// host shutdown: cancel outstanding work and finalize from the
		// state accumulated so far, no deadline elapsed
		cancel()
	}

	c.finalize(hung)
}

func (c *Coordinator) dispatchItem(ctx context.Context, item model.Item) {
	err := c.dispatcher.Dispatch(ctx, c.order.ID, item)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase.Terminal() {
		return
	}

	if err != nil {
		c.rejected[item.ID] = struct{}{}
		c.logger.Warn("dispatch rejected",
			slog.String("order_id", c.order.ID),
			slog.String("item_id", item.ID),
			slog.String("category", string(item.Category)),
			slog.String("error", err.Error()),
		)
	} else {
		c.accepted[item.ID] = struct{}{}
	}
	if len(c.accepted)+len(c.rejected) == len(c.order.Items) {
		c.allDispatchAttempted = true
	}
	c.signalLocked()
}

// RecordCompletion folds an external completion notification into state.
// The first record for an item id wins for counting purposes; later
// duplicates update the stored outcome only. Unknown item ids are kept but
// never satisfy the wait condition: a stale network retry is
// indistinguishable from a genuine but unexpected notification.
func (c *Coordinator) RecordCompletion(category model.Category, itemID string, outcome model.Outcome) {
	record := model.Completion{Category: category, ItemID: itemID, Outcome: outcome}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == model.PhaseHungFailure {
		return
	}
	if _, known := c.itemIDs[itemID]; !known {
		c.unexpected[itemID] = record
		return
	}
	c.completions[itemID] = record
	c.signalLocked()
}

// signalLocked closes the settle channel once every item has both a dispatch
// outcome and a completion. Callers must hold c.mu.
func (c *Coordinator) signalLocked() {
	if c.settledOnce {
		return
	}
	if c.allDispatchAttempted && len(c.completions) == len(c.order.Items) {
		c.settledOnce = true
		close(c.settled)
	}
}

func (c *Coordinator) finalize(hung bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase.Terminal() {
		return
	}

	if hung {
		unresolved := len(c.order.Items) - len(c.accepted) - len(c.rejected)
		c.phase = model.PhaseHungFailure
		c.failure = fmt.Errorf("%w: %d of %d dispatch attempts unresolved at deadline",
			domainErrors.ErrHungDispatch, unresolved, len(c.order.Items))
	} else {
		c.phase = model.PhaseResolved
	}
	c.partiallyFulfilled = c.partiallyFulfilledLocked()
	c.finalizedAt = time.Now()
	close(c.done)

	c.logger.Info("order finalized",
		slog.String("order_id", c.order.ID),
		slog.String("phase", string(c.phase)),
		slog.Bool("timed_out", c.timedOut),
		slog.Bool("partially_fulfilled", c.partiallyFulfilled),
	)
}

// partiallyFulfilledLocked: not every item reached a successful terminal
// outcome, whether by rejected dispatch, missing completion or explicit
// failure. Callers must hold c.mu.
func (c *Coordinator) partiallyFulfilledLocked() bool {
	if len(c.rejected) > 0 || len(c.completions) < len(c.order.Items) {
		return true
	}
	for _, record := range c.completions {
		if record.Outcome == model.OutcomeFailed {
			return true
		}
	}
	return false
}

// Snapshot returns an immutable copy of the order state, callable at any
// point in the lifecycle.
func (c *Coordinator) Snapshot() model.OrderState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := model.OrderState{
		Order:                c.order,
		Phase:                c.phase,
		Accepted:             sortedKeys(c.accepted),
		Rejected:             sortedKeys(c.rejected),
		Completions:          make(map[string]model.Completion, len(c.completions)),
		AllDispatchAttempted: c.allDispatchAttempted,
		TimedOut:             c.timedOut,
		PartiallyFulfilled:   c.partiallyFulfilled,
	}
	for id, record := range c.completions {
		state.Completions[id] = record
	}
	if len(c.unexpected) > 0 {
		state.Unexpected = make(map[string]model.Completion, len(c.unexpected))
		for id, record := range c.unexpected {
			state.Unexpected[id] = record
		}
	}
	if !c.finalizedAt.IsZero() {
		at := c.finalizedAt
		state.FinalizedAt = &at
	}
	return state
}

// Done is closed when the coordinator reaches a terminal phase.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

// Err returns the terminal failure, if any. Nil until the coordinator
// finalizes and for normally resolved orders.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
