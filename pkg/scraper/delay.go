package scraper

import (
	"context"
	"time"
)

// Step timeouts. They are fixed by the portal's behaviour, not by tuning.
const (
	NavigationTimeout = 60 * time.Second
	RedirectTimeout   = 60 * time.Second
	IdentityTimeout   = 15 * time.Second
	ListingTimeout    = 60 * time.Second
	ExpandTimeout     = 60 * time.Second
)

// ActionTimeout is Playwright's default bound on fill, click and text reads.
const ActionTimeout = 30 * time.Second

// flowActions counts the bounded page actions of one invocation: two fills,
// the submit and view-more clicks, and the identity read.
const flowActions = 5

// DefaultSettleDelay is the default for every settle stage.
const DefaultSettleDelay = 3 * time.Second

// Delays are the settle pauses that let client-side rendering catch up.
type Delays struct {
	// PostType runs between entering credentials and submitting
	PostType time.Duration

	// PostLogin runs between authentication and reading the listing
	PostLogin time.Duration

	// PostExpand runs between the view-more expansion and the snapshot
	PostExpand time.Duration
}

// DefaultDelays returns DefaultSettleDelay for every stage.
func DefaultDelays() Delays {
	return UniformDelays(DefaultSettleDelay)
}

// UniformDelays uses d for every stage.
func UniformDelays(d time.Duration) Delays {
	return Delays{PostType: d, PostLogin: d, PostExpand: d}
}

// Budget returns the longest one invocation can run once it holds a
// session: every step timeout, every page action and every settle pause.
func (d Delays) Budget() time.Duration {
	steps := NavigationTimeout + RedirectTimeout + IdentityTimeout + ListingTimeout + ExpandTimeout
	return steps + flowActions*ActionTimeout + d.PostType + d.PostLogin + d.PostExpand
}

// sleep pauses for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
