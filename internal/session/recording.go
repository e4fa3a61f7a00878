// recording.go — RecordingSession: owns one tab's four CaptureLayers plus
// its ActionEmitter and FallbackChainGenerator, and persists the finished
// Recording through the repository on Stop (spec.md §9 "one
// RecordingSession per tab owns its four CaptureLayer instances and the
// ActionEmitter").
package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/capture"
	"github.com/tracewright/locatorcore/internal/chain"
	"github.com/tracewright/locatorcore/internal/emitter"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/repository"
	"github.com/tracewright/locatorcore/internal/resolve"
	"github.com/tracewright/locatorcore/internal/types"
)

// SequenceObserver records a completed step's label against the
// workflow's current URL pattern (spec.md §4.8). RecordingSession takes an
// interface here rather than *evidence.SequencePatternAnalyzer directly so
// recording_test.go can exercise HandleRawEvent without pulling in a real
// analyzer.
type SequenceObserver interface {
	ObserveSequence(rawURL string, allLabels []string)
}

// RecordingSession owns one tab's capture pipeline: every raw event the
// host bridge hands to HandleRawEvent passes through Filter and Resolve
// (spec.md §4.2) before CaptureLayers ever see it.
type RecordingSession struct {
	TabID string

	DOM     *capture.DOMCapture
	Vision  *capture.VisionCapture
	Mouse   *capture.MouseCapture
	Network *capture.NetworkCapture

	Generator chain.Generator
	Emitter   *emitter.Emitter

	// Filter and Sequence gate/observe HandleRawEvent's pipeline
	// (spec.md §4.2 Filter, §4.8 learned patterns). Sequence is nil-able:
	// a nil Sequence simply skips pattern learning.
	Filter   *resolve.Filter
	Sequence SequenceObserver

	Repo ports.Repository
	Log  *logrus.Entry

	recording  types.Recording
	labels     []string
	currentURL string
}

// NewRecordingSession wires the four capture layers, a chain.Generator
// seeded with the default BundleProducer, a resolve.Filter, and a fresh
// Emitter for tabID. sequence may be nil to disable pattern learning.
func NewRecordingSession(tabID, name string, visionPort ports.VisionPort, clock ports.Clock, repo ports.Repository, sequence SequenceObserver, log *logrus.Entry) *RecordingSession {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &RecordingSession{
		TabID:   tabID,
		DOM:     capture.NewDOMCapture(0),
		Vision:  capture.NewVisionCapture(visionPort, 0, "", log),
		Mouse:   capture.NewMouseCapture(clock),
		Network: capture.NewNetworkCapture(func() bool { return true }),
		Generator: chain.Generator{
			Producers: []chain.CandidateProducer{chain.BundleProducer{}},
			Scorer:    chain.Scorer{},
			Builder:   chain.Builder{},
		},
		Filter:   resolve.NewFilter(clock),
		Sequence: sequence,
		Repo:     repo,
		Log:      log,
		recording: types.Recording{
			ID:   repository.NewID(),
			Name: name,
		},
	}
	s.Emitter = emitter.NewEmitter(sinkFunc(s.appendAction), clock)
	return s
}

// Start starts the mouse layer's trail sampling (spec.md §4.1
// "Each exposes start(), stop()..."). The session starts no other
// capture layer.
func (s *RecordingSession) Start() {
	s.Mouse.Start()
}

// Stop stops the mouse layer and persists the finished Recording
// (START_RECORDING/STOP_RECORDING, spec.md §6).
func (s *RecordingSession) Stop(ctx context.Context) (types.Recording, error) {
	s.Mouse.Stop()
	if s.Repo != nil {
		if err := s.Repo.SaveRecording(s.recording); err != nil {
			return types.Recording{}, fmt.Errorf("session: save recording: %w", err)
		}
	}
	return s.recording, nil
}

// RecordAction reduces one captured target into an Action: DOMCapture
// builds the LocatorBundle, the other layers snapshot their evidence, the
// FallbackChainGenerator proposes and scores the chain, and the Emitter
// finalizes and appends it to the Recording.
func (s *RecordingSession) RecordAction(ctx context.Context, kind types.ActionKind, value string, info capture.RawElementInfo, primary types.Strategy) (types.Action, bool, error) {
	domEvidence := s.DOM.Snapshot(info)
	bundle := domEvidence.Bundle

	evidence := types.Evidence{DOM: &domEvidence}
	if s.Mouse != nil {
		cx, cy := bundle.BoundingRect.Center()
		mouseEv := s.Mouse.Snapshot(cx, cy)
		evidence.Mouse = &mouseEv
	}
	if s.Vision != nil {
		cx, cy := bundle.BoundingRect.Center()
		visionEv := s.Vision.Snapshot(ctx, s.TabID, cx, cy)
		evidence.Vision = &visionEv
	}
	if s.Network != nil {
		networkEv := s.Network.Snapshot()
		evidence.Network = &networkEv
	}

	draft := types.Action{
		StepNumber:    s.Emitter.NextStepNumber(),
		Kind:          kind,
		Value:         value,
		LocatorBundle: bundle,
		Evidence:      evidence,
	}

	var chainStrategies []types.Strategy
	if kind.RequiresFallbackChain() {
		chainStrategies = s.Generator.Generate(ctx, s.TabID, draft, primary)
	}

	return s.Emitter.Emit(kind, value, bundle, evidence, chainStrategies)
}

// HandleRawEvent is the recording pipeline's entry point for one raw,
// unfiltered browser event (spec.md §4.2 EventFilter/TargetResolver): ev
// passes Filter.Accept, Resolve walks its ancestor chain to the element
// that should actually be captured, and the resolved target becomes an
// Action via RecordAction. A rejected event returns emitted=false with no
// error, matching RecordAction/Emitter's existing "reject silently"
// contract for deduplicated emissions.
func (s *RecordingSession) HandleRawEvent(ctx context.Context, ev resolve.RawEvent, info capture.RawElementInfo, kind types.ActionKind, value string) (types.Action, bool, error) {
	if ok, reason := s.Filter.Accept(ev); !ok {
		s.Log.WithFields(logrus.Fields{
			"tab_id": s.TabID, "event_kind": ev.Kind, "reason": reason,
		}).Debug("recording: event rejected")
		return types.Action{}, false, nil
	}

	idx := resolve.Resolve(ev.Chain)
	if idx < 0 || idx >= len(info.Chain) {
		idx = 0
	}
	resolved := info
	resolved.Chain = info.Chain[idx:]

	primary := derivePrimaryStrategy(s.DOM.Snapshot(resolved).Bundle)

	action, emitted, err := s.RecordAction(ctx, kind, value, resolved, primary)
	if err != nil || !emitted {
		return action, emitted, err
	}

	if s.Sequence != nil {
		if label := action.LocatorBundle.Label(); label != "" {
			s.labels = append(s.labels, label)
			s.Sequence.ObserveSequence(s.currentURL, s.labels)
		}
	}
	return action, emitted, nil
}

// RecordOpen records a navigation Action (spec.md §3 ActionOpen) and sets
// the URL SequencePatternAnalyzer scopes learned patterns to (spec.md
// §4.8). Open actions carry no DOM target, so they never pass through
// Filter/Resolve.
func (s *RecordingSession) RecordOpen(ctx context.Context, url string) (types.Action, bool, error) {
	s.currentURL = url
	return s.RecordAction(ctx, types.ActionOpen, url, capture.RawElementInfo{}, types.Strategy{})
}

// derivePrimaryStrategy picks the capture-time primary strategy from a
// resolved bundle, mirroring chain/producers.go's dom_selector basis
// priority (id > test-id > class) so HandleRawEvent's callers never need
// to compute it themselves.
func derivePrimaryStrategy(b types.LocatorBundle) types.Strategy {
	var basis string
	switch {
	case b.ID != "":
		basis = "id"
	case b.TestID != "":
		basis = "testid"
	case len(b.ClassList) > 0:
		basis = "class"
	default:
		return types.Strategy{}
	}
	return types.Strategy{
		Kind: types.StrategyDOMSelector,
		Metadata: map[string]any{
			"id": b.ID, "test_id": b.TestID, "class_list": b.ClassList,
			"selector_basis": basis,
		},
	}
}

func (s *RecordingSession) appendAction(action types.Action) error {
	s.recording.Actions = append(s.recording.Actions, action)
	return nil
}

// sinkFunc adapts a plain function to emitter.ActionSink.
type sinkFunc func(types.Action) error

func (f sinkFunc) EmitAction(action types.Action) error { return f(action) }
