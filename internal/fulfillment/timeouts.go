package fulfillment

import (
	"fmt"
	"time"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
)

// StaticTimeoutProvider serves the per-category maximum-wait policy from
// application configuration. Pure lookup, no state.
type StaticTimeoutProvider struct {
	waits map[model.Category]time.Duration
}

// NewStaticTimeoutProvider constructs a provider over a fixed policy table.
func NewStaticTimeoutProvider(waits map[model.Category]time.Duration) *StaticTimeoutProvider {
	copied := make(map[model.Category]time.Duration, len(waits))
	for category, wait := range waits {
		copied[category] = wait
	}
	return &StaticTimeoutProvider{waits: copied}
}

// ResolveTimeouts returns an entry for every requested category or fails the
// whole resolution.
func (p *StaticTimeoutProvider) ResolveTimeouts(categories []model.Category) (map[model.Category]time.Duration, error) {
	out := make(map[model.Category]time.Duration, len(categories))
	for _, category := range categories {
		wait, ok := p.waits[category]
		if !ok {
			return nil, fmt.Errorf("%w: no max wait configured for category %q", domainErrors.ErrBadConfig, category)
		}
		if wait <= 0 {
			return nil, fmt.Errorf("%w: non-positive max wait %s for category %q", domainErrors.ErrBadConfig, wait, category)
		}
		out[category] = wait
	}
	return out, nil
}
