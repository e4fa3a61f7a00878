// replay.go — ReplaySession: owns one tab's DecisionEngine, wiring the
// evaluator registry, actionability gate, and dispatcher against a live
// CDPSession/InputSynthesisPort/VisionPort (spec.md §9 "one ReplaySession
// per tab owns the DecisionEngine").
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/actionability"
	"github.com/tracewright/locatorcore/internal/dispatch"
	"github.com/tracewright/locatorcore/internal/evaluator"
	"github.com/tracewright/locatorcore/internal/evidence"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/replay"
	"github.com/tracewright/locatorcore/internal/repository"
	"github.com/tracewright/locatorcore/internal/types"
)

// recentLabelWindow bounds how many already-executed steps' labels feed
// the sequence axis's labelSimilarity comparison (spec.md §4.8).
const recentLabelWindow = 6

// ReplaySession owns one tab's replay-time pipeline: EXECUTE_STEP and
// STOP_EXECUTION (spec.md §6) are served by calling RunStep/Run and by
// cancelling the context passed to them, respectively — the session holds
// no run-scoped goroutine of its own.
type ReplaySession struct {
	TabID  string
	Engine *replay.Engine

	// Sequence scores the evidence_scoring evaluator's sequence axis
	// (spec.md §4.3, §4.8). NewReplaySession seeds it with an in-memory-only
	// analyzer; a host that wants patterns shared with the tab's
	// RecordingSession assigns its own *evidence.SequencePatternAnalyzer
	// here instead, the same way Engine.History is assigned post-construction.
	Sequence *evidence.SequencePatternAnalyzer

	cdp    ports.CDPSession
	vision ports.VisionPort

	mu           sync.Mutex
	currentURL   string
	recentLabels []string
}

// NewReplaySession wires an Engine for tabID from the live ports the host
// bridge supplies, plus the shared History and TelemetrySink owners.
func NewReplaySession(tabID string, cdp ports.CDPSession, vision ports.VisionPort, input ports.InputSynthesisPort, sink replay.TelemetrySink, history replay.HistoryRecorder, clock ports.Clock, log *logrus.Entry) *ReplaySession {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if clock == nil {
		clock = ports.RealClock{}
	}

	sequence := evidence.NewSequencePatternAnalyzer(nil, clock, log)

	historyFn := func(string, ports.DOMHandle) float64 { return 0 }
	if h, ok := history.(interface {
		HistoryFn(string, ports.DOMHandle) float64
	}); ok {
		historyFn = h.HistoryFn
	}
	evidenceEvaluator := evaluator.EvidenceEvaluator{HistoryFn: historyFn}
	registry := replay.DefaultRegistry(evidenceEvaluator, evaluator.VisionEvaluator{})
	gate := actionability.NewGate(cdp, clock)
	dispatcher := dispatch.NewDispatcher(input)

	engine := replay.NewEngine(registry, gate, dispatcher, sink, clock, log)
	engine.History = history

	return &ReplaySession{TabID: tabID, Engine: engine, Sequence: sequence, cdp: cdp, vision: vision}
}

func (s *ReplaySession) evalContext() evaluator.EvaluationContext {
	s.mu.Lock()
	url := s.currentURL
	labels := append([]string{}, s.recentLabels...)
	s.mu.Unlock()

	var sequenceFn evaluator.SequenceScorer
	if s.Sequence != nil {
		sequenceFn = s.Sequence.Score
	}

	return evaluator.EvaluationContext{
		TabID:        s.TabID,
		CDP:          s.cdp,
		Vision:       s.vision,
		Clock:        s.Engine.Clock,
		SequenceFn:   sequenceFn,
		CurrentURL:   url,
		RecentLabels: labels,
	}
}

// RunStep executes one Action's fallback chain (EXECUTE_STEP, spec.md §6).
// Callers cancel ctx to implement STOP_EXECUTION. An "open" Action carries
// no fallback chain to walk; RunStep instead updates the URL the sequence
// axis normalizes into a pattern for every step that follows.
func (s *ReplaySession) RunStep(ctx context.Context, runID string, action types.Action) replay.StepOutcome {
	if action.Kind == types.ActionOpen {
		s.mu.Lock()
		s.currentURL = action.Value
		s.mu.Unlock()
		return replay.StepOutcome{StepNumber: action.StepNumber, Succeeded: true}
	}

	outcome := s.Engine.RunStep(ctx, runID, action, s.evalContext())
	s.observeLabel(action)
	return outcome
}

// observeLabel appends action's label to the session's recent-label
// window, bounded to recentLabelWindow, regardless of whether the step
// itself succeeded: the sequence axis scores fit against what actually
// happened in this run, not just successful steps.
func (s *ReplaySession) observeLabel(action types.Action) {
	label := action.LocatorBundle.Label()
	if label == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recentLabels = append(s.recentLabels, label)
	if len(s.recentLabels) > recentLabelWindow {
		s.recentLabels = s.recentLabels[len(s.recentLabels)-recentLabelWindow:]
	}
}

// Run replays every step of a Recording in order (spec.md §5 Ordering
// guarantees), generating a fresh run ID if the caller doesn't supply one.
//
// Run walks rec.Actions through RunStep itself rather than delegating to
// Engine.Run directly, so the sequence axis's currentURL/recentLabels
// advance between steps exactly as they do across successive EXECUTE_STEP
// calls (spec.md §4.8) instead of staying frozen at the run's starting
// context for every step.
func (s *ReplaySession) Run(ctx context.Context, runID string, rec types.Recording) replay.RunResult {
	if runID == "" {
		runID = repository.NewID()
	}
	result := replay.RunResult{RunID: runID}
	for _, action := range rec.Actions {
		outcome := s.RunStep(ctx, runID, action)
		if !action.Kind.RequiresFallbackChain() {
			continue
		}
		result.Steps = append(result.Steps, outcome)
		if !outcome.Succeeded && s.Engine.Policy.StopOnError {
			result.Stopped = true
			break
		}
	}
	return result
}
