// engine.go — DecisionEngine: walks an Action's fallback chain in
// confidence order, gated by Actionability, dispatching on success and
// recording telemetry on every attempt (spec.md §4.5).
package replay

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/actionability"
	"github.com/tracewright/locatorcore/internal/dispatch"
	"github.com/tracewright/locatorcore/internal/evaluator"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// DefaultStepDeadline bounds one step's entire chain walk (spec.md §4.5
// "a per-step deadline (default 30s)").
const DefaultStepDeadline = 30 * time.Second

// DefaultActionabilityTimeout is the per-attempt actionability wait used
// when Policy doesn't override it.
const DefaultActionabilityTimeout = 5 * time.Second

// TelemetrySink is the append-only destination for Attempt rows
// (spec.md §3 TelemetryEvent, §7 Observable behavior). internal/telemetry
// provides the production implementation; the engine only needs this one
// method.
type TelemetrySink interface {
	AppendTelemetry(events ...types.TelemetryEvent) error
}

// Policy controls per-run DecisionEngine behavior (spec.md §4.5, §6).
type Policy struct {
	StepDeadline         time.Duration
	ActionabilityTimeout time.Duration
	StopOnError          bool
	DisabledStrategies   map[types.StrategyKind]bool
}

// Attempt mirrors one logged TelemetryEvent plus the dispatch outcome,
// returned inline so callers don't need a second telemetry query to see
// what just happened (spec.md §7 "Observable behavior").
type Attempt = types.TelemetryEvent

// StepOutcome is the result of walking one Action's fallback chain.
type StepOutcome struct {
	StepNumber   int
	Succeeded    bool
	ErrorKind    types.ErrorKind
	WinningKind  types.StrategyKind // the strategy that succeeded, if any
	Attempts     []Attempt
}

// RunResult aggregates every step outcome for one replay Run.
type RunResult struct {
	RunID   string
	Steps   []StepOutcome
	Stopped bool // true if StopOnError halted the run before all steps ran
}

// HistoryRecorder receives the outcome of each dispatched candidate so the
// evidence_scoring evaluator's history axis can learn within a session
// (spec.md §4.3 "prior success on this selector within the tab/session").
type HistoryRecorder interface {
	Record(tabID string, handle ports.DOMHandle, succeeded bool)
}

// Engine is the DecisionEngine itself.
type Engine struct {
	Registry      *EvaluatorRegistry
	Actionability *actionability.Gate
	Dispatcher    *dispatch.Dispatcher
	Telemetry     TelemetrySink
	History       HistoryRecorder
	Clock         ports.Clock
	Policy        Policy
	Log           *logrus.Entry
}

// NewEngine constructs an Engine with sane defaults filled in.
func NewEngine(registry *EvaluatorRegistry, gate *actionability.Gate, dispatcher *dispatch.Dispatcher, sink TelemetrySink, clock ports.Clock, log *logrus.Entry) *Engine {
	if clock == nil {
		clock = ports.RealClock{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{Registry: registry, Actionability: gate, Dispatcher: dispatcher, Telemetry: sink, Clock: clock, Log: log}
}

// Run walks every non-open Action in actions, in stepNumber order
// (spec.md §5 Ordering guarantees), stopping early if Policy.StopOnError
// fires on a failed step.
func (e *Engine) Run(ctx context.Context, runID string, actions []types.Action, ec evaluator.EvaluationContext) RunResult {
	result := RunResult{RunID: runID}
	for _, action := range actions {
		if !action.Kind.RequiresFallbackChain() {
			continue
		}
		outcome := e.RunStep(ctx, runID, action, ec)
		result.Steps = append(result.Steps, outcome)
		if !outcome.Succeeded && e.Policy.StopOnError {
			result.Stopped = true
			break
		}
	}
	return result
}

// RunStep walks one Action's fallback chain strictly in confidence-
// descending order (tie-broken by category) until a strategy resolves,
// passes Actionability, and dispatches successfully, or the chain is
// exhausted (spec.md §4.5 steps 1-5).
func (e *Engine) RunStep(ctx context.Context, runID string, action types.Action, ec evaluator.EvaluationContext) StepOutcome {
	outcome := StepOutcome{StepNumber: action.StepNumber}

	deadline := e.Policy.StepDeadline
	if deadline <= 0 {
		deadline = DefaultStepDeadline
	}
	stepCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	chain := e.orderedChain(action.FallbackChain)

	for i, strategy := range chain {
		if stepCtx.Err() != nil {
			e.record(runID, action.StepNumber, strategy.Kind, i, false, strategy.Confidence, 0, types.ErrExecutionTimeout, &outcome)
			continue
		}

		result := e.evaluate(stepCtx, ec, action, strategy)
		if !result.Found {
			e.record(runID, action.StepNumber, strategy.Kind, i, false, strategy.Confidence, result.DurationMs, result.ErrorKind, &outcome)
			continue
		}

		ready, err := e.waitActionable(stepCtx, ec.TabID, result.Handle)
		if err != nil || !ready {
			e.recordHistory(ec.TabID, result.Handle, false)
			e.record(runID, action.StepNumber, strategy.Kind, i, false, strategy.Confidence, result.DurationMs, types.ErrElementNotFound, &outcome)
			continue
		}

		if err := e.dispatch(stepCtx, ec.TabID, result.Handle, action); err != nil {
			e.recordHistory(ec.TabID, result.Handle, false)
			e.record(runID, action.StepNumber, strategy.Kind, i, false, strategy.Confidence, result.DurationMs, types.ErrElementNotFound, &outcome)
			continue
		}

		e.recordHistory(ec.TabID, result.Handle, true)
		e.record(runID, action.StepNumber, strategy.Kind, i, true, result.Confidence, result.DurationMs, "", &outcome)
		outcome.Succeeded = true
		outcome.WinningKind = strategy.Kind
		return outcome
	}

	if outcome.ErrorKind != types.ErrExecutionTimeout {
		outcome.ErrorKind = types.ErrAllStrategiesFailed
	}
	return outcome
}

// orderedChain drops user-disabled strategies and re-sorts defensively by
// confidence descending, tie-broken by category rank, so DecisionEngine
// never depends on FallbackChainGenerator having produced a perfectly
// ordered chain (spec.md §4.5 "Strategies are attempted strictly in
// confidence-descending order... the one from the more semantic category
// is preferred").
func (e *Engine) orderedChain(chain []types.Strategy) []types.Strategy {
	out := make([]types.Strategy, 0, len(chain))
	for _, s := range chain {
		if e.Policy.DisabledStrategies != nil && e.Policy.DisabledStrategies[s.Kind] {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Kind.Category().Rank() < out[j].Kind.Category().Rank()
	})
	return out
}

func (e *Engine) evaluate(ctx context.Context, ec evaluator.EvaluationContext, action types.Action, strategy types.Strategy) evaluator.Result {
	ev, ok := e.Registry.For(strategy.Kind)
	if !ok {
		return evaluator.Result{Found: false, ErrorKind: types.ErrElementNotFound}
	}
	return ev.Evaluate(ctx, ec, action, strategy)
}

func (e *Engine) waitActionable(ctx context.Context, tabID string, handle ports.DOMHandle) (bool, error) {
	if e.Actionability == nil {
		return true, nil
	}
	timeout := e.Policy.ActionabilityTimeout
	if timeout <= 0 {
		timeout = DefaultActionabilityTimeout
	}
	return e.Actionability.Wait(ctx, tabID, handle, timeout)
}

func (e *Engine) recordHistory(tabID string, handle ports.DOMHandle, succeeded bool) {
	if e.History != nil {
		e.History.Record(tabID, handle, succeeded)
	}
}

func (e *Engine) dispatch(ctx context.Context, tabID string, handle ports.DOMHandle, action types.Action) error {
	if e.Dispatcher == nil {
		return nil
	}
	return e.Dispatcher.Dispatch(ctx, tabID, handle, action)
}

// record appends one Attempt to the outcome and to the telemetry sink
// (spec.md §8 "0 <= attemptIndex < |fallbackChain| and the kind at that
// index matches the chain entry"). A sink failure is logged, never
// propagated: telemetry is observational and must never change replay
// behavior (spec.md §7 Propagation policy).
func (e *Engine) record(runID string, stepNumber int, kind types.StrategyKind, attemptIndex int, succeeded bool, confidence float64, durationMs int64, errKind types.ErrorKind, outcome *StepOutcome) {
	event := Attempt{
		RunID:         runID,
		StepNumber:    stepNumber,
		StrategyKind:  kind,
		AttemptIndex:  attemptIndex,
		Succeeded:     succeeded,
		Confidence:    confidence,
		DurationMs:    durationMs,
		ErrorKind:     errKind,
		TimestampUnix: e.Clock.Now().Unix(),
	}
	outcome.Attempts = append(outcome.Attempts, event)
	if !succeeded {
		outcome.ErrorKind = errKind
	}

	if e.Telemetry == nil {
		return
	}
	if err := e.Telemetry.AppendTelemetry(event); err != nil {
		e.Log.WithError(err).WithFields(logrus.Fields{
			"run_id": runID, "step_number": stepNumber, "strategy_kind": kind,
		}).Warn("decision engine: telemetry append failed")
	}
}
