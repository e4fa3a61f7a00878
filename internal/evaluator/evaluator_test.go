package evaluator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }
func (c fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.now.Add(d)
	return ch
}

type fakeCDP struct {
	selectorResults map[string][]ports.DOMHandle
	xpathResults    map[string][]ports.DOMHandle
	axNodes         []ports.AXNode
	resolved        map[string]ports.DOMHandle
	err             error
}

func (f *fakeCDP) Attach(ctx context.Context, tabID string) error { return nil }
func (f *fakeCDP) Detach(ctx context.Context, tabID string) error { return nil }
func (f *fakeCDP) QueryAXTree(ctx context.Context, tabID string) ([]ports.AXNode, error) {
	return f.axNodes, f.err
}
func (f *fakeCDP) QuerySelector(ctx context.Context, tabID, css string) ([]ports.DOMHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.selectorResults[css], nil
}
func (f *fakeCDP) QueryXPath(ctx context.Context, tabID, xpath string) ([]ports.DOMHandle, error) {
	return f.xpathResults[xpath], f.err
}
func (f *fakeCDP) BoundingBox(ctx context.Context, tabID string, h ports.DOMHandle) (types.Rect, error) {
	return h.Rect, nil
}
func (f *fakeCDP) Actionable(ctx context.Context, tabID string, h ports.DOMHandle) (bool, bool, bool, bool, error) {
	return true, true, true, true, nil
}
func (f *fakeCDP) ResolveAXNode(ctx context.Context, tabID, backendDOMNode string) (ports.DOMHandle, error) {
	h, ok := f.resolved[backendDOMNode]
	if !ok {
		return ports.DOMHandle{}, assertErr{}
	}
	return h, nil
}

type assertErr struct{}

func (assertErr) Error() string { return "not found" }

func TestSelectorEvaluator_UniqueIDWins(t *testing.T) {
	cdp := &fakeCDP{selectorResults: map[string][]ports.DOMHandle{
		"#login-email": {{NodeID: "n1", TagName: "input"}},
	}}
	e := SelectorEvaluator{}
	action := types.Action{LocatorBundle: types.LocatorBundle{TagName: "input", ID: "login-email"}}
	strategy := types.Strategy{Kind: types.StrategyDOMSelector, Confidence: 0.85}

	res := e.Evaluate(context.Background(), EvaluationContext{CDP: cdp, Clock: fakeClock{}}, action, strategy)

	require.True(t, res.Found)
	assert.Equal(t, "n1", res.Handle.NodeID)
	assert.Equal(t, 0.85, res.Confidence)
}

func TestSelectorEvaluator_NonUniqueDemotesToNextCandidate(t *testing.T) {
	cdp := &fakeCDP{selectorResults: map[string][]ports.DOMHandle{
		"#dup":                 {{NodeID: "a"}, {NodeID: "b"}},
		`input[name="email"]`: {{NodeID: "unique-one"}},
	}}
	e := SelectorEvaluator{}
	action := types.Action{LocatorBundle: types.LocatorBundle{TagName: "input", ID: "dup", Name: "email"}}
	strategy := types.Strategy{Kind: types.StrategyDOMSelector, Confidence: 0.85}

	res := e.Evaluate(context.Background(), EvaluationContext{CDP: cdp, Clock: fakeClock{}}, action, strategy)

	require.True(t, res.Found)
	assert.Equal(t, "unique-one", res.Handle.NodeID)
}

func TestSelectorEvaluator_NoCDPReturnsNotAttached(t *testing.T) {
	e := SelectorEvaluator{}
	res := e.Evaluate(context.Background(), EvaluationContext{Clock: fakeClock{}}, types.Action{}, types.Strategy{})
	assert.False(t, res.Found)
	assert.Equal(t, types.ErrCDPNotAttached, res.ErrorKind)
}

func TestSemanticEvaluator_MatchesRoleAndName(t *testing.T) {
	cdp := &fakeCDP{
		axNodes: []ports.AXNode{
			{Role: "button", AccessibleName: "Submit order", BackendDOMNode: "bdn-1"},
			{Role: "link", AccessibleName: "Submit order", BackendDOMNode: "bdn-2"},
		},
		resolved: map[string]ports.DOMHandle{"bdn-1": {NodeID: "n1"}},
	}
	e := SemanticEvaluator{}
	action := types.Action{LocatorBundle: types.LocatorBundle{TagName: "button", Role: "button", AccessibleName: "Submit"}}
	strategy := types.Strategy{Kind: types.StrategyCDPSemantic, Confidence: 0.95}

	res := e.Evaluate(context.Background(), EvaluationContext{CDP: cdp, Clock: fakeClock{}}, action, strategy)

	require.True(t, res.Found)
	assert.Equal(t, "n1", res.Handle.NodeID)
}

func TestSemanticEvaluator_FallsBackToImplicitRole(t *testing.T) {
	cdp := &fakeCDP{
		axNodes:  []ports.AXNode{{Role: "button", AccessibleName: "Save", BackendDOMNode: "bdn-1"}},
		resolved: map[string]ports.DOMHandle{"bdn-1": {NodeID: "n1"}},
	}
	e := SemanticEvaluator{}
	action := types.Action{LocatorBundle: types.LocatorBundle{TagName: "button", AccessibleName: "Save"}}
	strategy := types.Strategy{Kind: types.StrategyCDPSemantic, Confidence: 0.95}

	res := e.Evaluate(context.Background(), EvaluationContext{CDP: cdp, Clock: fakeClock{}}, action, strategy)
	assert.True(t, res.Found)
}

func TestCoordinatesEvaluator_NeverExceedsBaseConfidence(t *testing.T) {
	e := CoordinatesEvaluator{}
	strategy := types.Strategy{Kind: types.StrategyCoordinates, Confidence: 0.95, Metadata: map[string]any{"x": 10.0, "y": 20.0}}

	res := e.Evaluate(context.Background(), EvaluationContext{Clock: fakeClock{}}, types.Action{}, strategy)

	require.True(t, res.Found)
	assert.LessOrEqual(t, res.Confidence, types.StrategyCoordinates.BaseConfidence())
}

func TestCoordinatesEvaluator_ResolvesParentOffset(t *testing.T) {
	cdp := &fakeCDP{selectorResults: map[string][]ports.DOMHandle{
		"#panel": {{NodeID: "panel", Rect: types.Rect{X: 100, Y: 50}}},
	}}
	e := CoordinatesEvaluator{}
	strategy := types.Strategy{Kind: types.StrategyCoordinates, Confidence: 0.5, Metadata: map[string]any{
		"x": 10.0, "y": 5.0, "parent_selector": "#panel",
	}}

	res := e.Evaluate(context.Background(), EvaluationContext{CDP: cdp, Clock: fakeClock{}}, types.Action{}, strategy)

	require.True(t, res.Found)
	assert.Equal(t, 110.0, res.Handle.Rect.X)
	assert.Equal(t, 55.0, res.Handle.Rect.Y)
}

func TestEvidenceEvaluator_RejectsBelowThreshold(t *testing.T) {
	cdp := &fakeCDP{selectorResults: map[string][]ports.DOMHandle{
		"span": {{NodeID: "x1", TagName: "div", Rect: types.Rect{X: 900, Y: 900, Width: 5, Height: 5}}},
	}}
	e := EvidenceEvaluator{}
	action := types.Action{LocatorBundle: types.LocatorBundle{TagName: "span", BoundingRect: types.Rect{X: 0, Y: 0, Width: 100, Height: 20}}}
	strategy := types.Strategy{Kind: types.StrategyEvidenceScoring, Confidence: 0.80}

	res := e.Evaluate(context.Background(), EvaluationContext{CDP: cdp, Clock: fakeClock{}}, action, strategy)
	assert.False(t, res.Found)
}

func TestEvidenceEvaluator_AcceptsStrongMatch(t *testing.T) {
	cdp := &fakeCDP{selectorResults: map[string][]ports.DOMHandle{
		"button": {{NodeID: "n-login-submit", TagName: "button", Rect: types.Rect{X: 10, Y: 20, Width: 80, Height: 30}}},
	}}
	e := EvidenceEvaluator{HistoryFn: func(string, ports.DOMHandle) float64 { return 1.0 }}
	action := types.Action{LocatorBundle: types.LocatorBundle{
		TagName: "button", ID: "login-submit",
		BoundingRect: types.Rect{X: 10, Y: 20, Width: 80, Height: 30},
	}}
	strategy := types.Strategy{Kind: types.StrategyEvidenceScoring, Confidence: 0.80}

	res := e.Evaluate(context.Background(), EvaluationContext{CDP: cdp, Clock: fakeClock{}}, action, strategy)

	require.True(t, res.Found)
	assert.Greater(t, res.Confidence, BucketApplyWithFlag)
}
