// emitter.go — ActionEmitter: assigns the monotone stepNumber, guards the
// fallbackChain invariant, deduplicates near-instant repeat emissions, and
// forwards the finished Action to its sink (spec.md §2, §3 Action
// invariants).
package emitter

import (
	"fmt"
	"sync"
	"time"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// DefaultDedupeWindow catches only near-instant duplicate emissions (e.g.
// overlapping evidence-layer callbacks racing to finish the same action),
// not genuinely repeated user actions — EventFilter already owns the
// debounce window for raw browser events (spec.md §4.2).
const DefaultDedupeWindow = 50 * time.Millisecond

// ActionSink receives finished Actions, typically a repository-backed
// Recording accumulator.
type ActionSink interface {
	EmitAction(action types.Action) error
}

// Emitter owns stepNumber assignment for one recording session.
type Emitter struct {
	mu           sync.Mutex
	nextStep     int
	lastKey      string
	lastAt       time.Time
	dedupeWindow time.Duration
	clock        ports.Clock
	sink         ActionSink
}

// NewEmitter constructs an Emitter writing to sink.
func NewEmitter(sink ActionSink, clock ports.Clock) *Emitter {
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &Emitter{sink: sink, clock: clock, dedupeWindow: DefaultDedupeWindow}
}

// Emit finalizes one captured Action. It returns emitted=false without
// error when the call was a near-instant duplicate of the previous emit;
// emits (and forwards to the sink) otherwise.
//
// Every non-open Action must carry a non-empty fallbackChain
// (spec.md §3 invariant) — Emit refuses to assign a stepNumber to one that
// doesn't, since stepNumber must stay contiguous and this Action would
// otherwise burn a number without being replayable.
func (e *Emitter) Emit(kind types.ActionKind, value string, bundle types.LocatorBundle, evidence types.Evidence, chain []types.Strategy) (types.Action, bool, error) {
	if kind.RequiresFallbackChain() && len(chain) == 0 {
		return types.Action{}, false, fmt.Errorf("emitter: action kind %q requires a non-empty fallback chain", kind)
	}

	e.mu.Lock()
	key := dedupeKey(kind, value, bundle)
	now := e.clock.Now()
	if e.lastKey == key && !e.lastAt.IsZero() && now.Sub(e.lastAt) < e.dedupeWindow {
		e.mu.Unlock()
		return types.Action{}, false, nil
	}
	e.lastKey = key
	e.lastAt = now
	e.nextStep++
	step := e.nextStep
	e.mu.Unlock()

	action := types.Action{
		StepNumber:    step,
		TimestampMs:   now.UnixMilli(),
		Kind:          kind,
		Value:         value,
		LocatorBundle: bundle,
		Evidence:      evidence,
		FallbackChain: chain,
	}

	if e.sink != nil {
		if err := e.sink.EmitAction(action); err != nil {
			return types.Action{}, false, err
		}
	}
	return action, true, nil
}

// NextStepNumber previews the step number the next Emit call will assign,
// without consuming it — useful for SequencePatternAnalyzer callers that
// need to know the upcoming position before the action is finalized.
func (e *Emitter) NextStepNumber() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextStep + 1
}

func dedupeKey(kind types.ActionKind, value string, bundle types.LocatorBundle) string {
	return string(kind) + "|" + value + "|" + bundle.TagName + "|" + bundle.ID + "|" + bundle.TestID
}
