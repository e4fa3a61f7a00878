// gate.go — Gate: the auto-waiting state machine described in spec.md §4.6.
package actionability

import (
	"context"
	"time"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// DefaultPollInterval is the fixed polling cadence (spec.md §4.6 "Polls at
// a fixed cadence (default 100ms)").
const DefaultPollInterval = 100 * time.Millisecond

// DefaultTimeout is used when a caller doesn't specify its own deadline
// (spec.md §4.6 "up to a configured timeout (default 5-30s depending on
// caller)").
const DefaultTimeout = 5 * time.Second

// Gate polls a resolved handle until it is attached, visible, stable,
// enabled, and in viewport, or until the timeout elapses.
type Gate struct {
	CDP          ports.CDPSession
	Clock        ports.Clock
	PollInterval time.Duration
}

// NewGate constructs a Gate with the default poll interval.
func NewGate(cdp ports.CDPSession, clock ports.Clock) *Gate {
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &Gate{CDP: cdp, Clock: clock, PollInterval: DefaultPollInterval}
}

// Wait blocks until handle is actionable or timeout elapses, returning
// true on the first tick all five predicates hold (spec.md §4.6 "Returns
// success the first tick all predicates hold, or timeout").
func (g *Gate) Wait(ctx context.Context, tabID string, handle ports.DOMHandle, timeout time.Duration) (bool, error) {
	interval := g.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := g.Clock.Now().Add(timeout)

	var prevRect types.Rect
	haveSample := false

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		attached, visible, enabled, inViewport, err := g.CDP.Actionable(ctx, tabID, handle)
		if err != nil {
			return false, err
		}

		rect, rectErr := g.CDP.BoundingBox(ctx, tabID, handle)
		stable := false
		if rectErr == nil {
			stable = haveSample && rect == prevRect
			prevRect = rect
			haveSample = true
		}

		if attached && visible && enabled && inViewport && stable {
			return true, nil
		}

		if !g.Clock.Now().Before(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-g.Clock.After(interval):
		}
	}
}
