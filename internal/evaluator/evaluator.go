// Package evaluator implements the StrategyEvaluators: the per-strategy
// resolution logic DecisionEngine walks in confidence order (spec.md §4.3).
//
// Every evaluator implements the same contract so DecisionEngine can treat
// them uniformly: given an Action and an EvaluationContext, produce one
// Result; further matches are not returned. A failing evaluator never poisons the decision — it
// returns Result{Found: false} with an ErrorKind, and the engine moves on
// to the next strategy in the chain.
package evaluator

import (
	"context"
	"time"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// EvaluationContext carries what an evaluator needs beyond the Action
// itself: the live tab/frame to search in and a timeout budget
// (spec.md §4.3 "given an Action... and an EvaluationContext").
type EvaluationContext struct {
	TabID         string
	Timeout       time.Duration
	CDP           ports.CDPSession
	Vision        ports.VisionPort
	Clock         ports.Clock
	SequenceFn    SequenceScorer // evidence_scoring's sequence axis, injected
	CurrentScroll types.ScrollPosition

	// CurrentURL is the live page URL the sequence axis normalizes into a
	// URLPattern (spec.md §4.8); empty when the host hasn't reported one.
	CurrentURL string
	// RecentLabels is the trailing window of already-executed steps'
	// LocatorBundle.Label() values for this run, oldest first.
	RecentLabels []string
}

// SequenceScorer scores how well a candidate label fits the learned
// SequencePattern for rawURL given the steps executed so far
// (internal/evidence.SequencePatternAnalyzer.Score matches this signature
// exactly; evaluator only consumes it).
type SequenceScorer func(rawURL, candidateLabel string, recentLabels []string) float64

// Result is the outcome of evaluating one Strategy against the live page
// (spec.md §4.3 "return zero or more Result { found, confidence, handle?,
// matchCount, durationMs, errorKind? }").
type Result struct {
	Found      bool
	Confidence float64
	Handle     ports.DOMHandle
	MatchCount int
	DurationMs int64
	ErrorKind  types.ErrorKind
}

// Evaluator resolves one or more StrategyKinds against the live page.
type Evaluator interface {
	HandledKinds() []types.StrategyKind
	Evaluate(ctx context.Context, ec EvaluationContext, action types.Action, strategy types.Strategy) Result
}

// timed runs fn and stamps the elapsed wall time onto the returned Result.
func timed(clock ports.Clock, fn func() Result) Result {
	start := clock.Now()
	res := fn()
	res.DurationMs = clock.Now().Sub(start).Milliseconds()
	return res
}

func failClosed(kind types.ErrorKind) Result {
	return Result{Found: false, ErrorKind: kind}
}
