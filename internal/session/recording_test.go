package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/capture"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/resolve"
	"github.com/tracewright/locatorcore/internal/types"
)

type fakeRepo struct {
	saved []types.Recording
}

func (f *fakeRepo) SaveRecording(r types.Recording) error {
	f.saved = append(f.saved, r)
	return nil
}
func (f *fakeRepo) LoadRecording(id string) (types.Recording, error)  { return types.Recording{}, nil }
func (f *fakeRepo) DeleteRecording(id string) error                   { return nil }
func (f *fakeRepo) ListRecordings() ([]types.Recording, error)        { return nil, nil }
func (f *fakeRepo) AppendTelemetry(events ...types.TelemetryEvent) error { return nil }
func (f *fakeRepo) QueryTelemetry(runID string) ([]types.TelemetryEvent, error) { return nil, nil }
func (f *fakeRepo) TelemetrySince(days int) ([]types.TelemetryEvent, error)     { return nil, nil }
func (f *fakeRepo) SaveSequencePatterns(export types.SequencePatternsExport) error {
	return nil
}
func (f *fakeRepo) LoadSequencePatterns() (types.SequencePatternsExport, bool, error) {
	return types.SequencePatternsExport{}, false, nil
}

var _ ports.Repository = (*fakeRepo)(nil)

func rawElementInfo() capture.RawElementInfo {
	return capture.RawElementInfo{
		Chain: []capture.RawNode{{
			TagName: "button",
			ID:      "submit",
			TestID:  "submit-btn",
			Role:    "button",
			Text:    "Submit",
		}},
		Rect: types.Rect{X: 10, Y: 10, Width: 40, Height: 20},
	}
}

func TestRecordingSession_RecordActionAssignsContiguousStepsAndPrimaryFirst(t *testing.T) {
	repo := &fakeRepo{}
	s := NewRecordingSession("tab1", "checkout flow", nil, nil, repo, nil, nil)
	s.Start()

	primary := types.Strategy{Kind: types.StrategyDOMSelector, Metadata: map[string]any{"id": "submit", "selector_basis": "id"}}
	s.Generator.Scorer.Unique = func(ctx context.Context, tabID string, c types.Strategy) int { return 1 }

	action1, emitted, err := s.RecordAction(context.Background(), types.ActionClick, "", rawElementInfo(), primary)
	require.NoError(t, err)
	require.True(t, emitted)
	assert.Equal(t, 1, action1.StepNumber)
	require.NotEmpty(t, action1.FallbackChain)
	assert.True(t, action1.FallbackChain[0].SameCandidate(primary))

	info2 := rawElementInfo()
	info2.Chain[0].ID = "next"
	action2, emitted, err := s.RecordAction(context.Background(), types.ActionClick, "", info2, primary)
	require.NoError(t, err)
	require.True(t, emitted)
	assert.Equal(t, 2, action2.StepNumber)

	rec, err := s.Stop(context.Background())
	require.NoError(t, err)
	assert.Len(t, rec.Actions, 2)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, rec.ID, repo.saved[0].ID)
}

type fakeSequenceObserver struct {
	urls   []string
	labels [][]string
}

func (f *fakeSequenceObserver) ObserveSequence(rawURL string, allLabels []string) {
	f.urls = append(f.urls, rawURL)
	f.labels = append(f.labels, append([]string{}, allLabels...))
}

func rawClickEvent() resolve.RawEvent {
	return resolve.RawEvent{
		Trusted: true,
		Kind:    resolve.EventClick,
		Chain: []resolve.CandidateNode{{
			TagName: "button",
			ID:      "submit",
			Visible: true,
		}},
	}
}

func TestRecordingSession_HandleRawEventFiltersResolvesAndObservesSequence(t *testing.T) {
	repo := &fakeRepo{}
	seq := &fakeSequenceObserver{}
	s := NewRecordingSession("tab1", "checkout flow", nil, nil, repo, seq, nil)
	s.Start()
	s.Generator.Scorer.Unique = func(ctx context.Context, tabID string, c types.Strategy) int { return 1 }

	_, _, err := s.RecordOpen(context.Background(), "https://example.com/orders/42")
	require.NoError(t, err)

	action, emitted, err := s.HandleRawEvent(context.Background(), rawClickEvent(), rawElementInfo(), types.ActionClick, "")
	require.NoError(t, err)
	require.True(t, emitted)
	assert.Equal(t, "submit", action.LocatorBundle.ID)
	require.NotEmpty(t, action.FallbackChain)
	assert.Equal(t, types.StrategyDOMSelector, action.FallbackChain[0].Kind)

	require.Len(t, seq.urls, 1)
	assert.Equal(t, "https://example.com/orders/42", seq.urls[0])
	assert.Equal(t, []string{"Submit"}, seq.labels[0])
}

func TestRecordingSession_HandleRawEventRejectsUntrustedEvent(t *testing.T) {
	repo := &fakeRepo{}
	s := NewRecordingSession("tab1", "checkout flow", nil, nil, repo, nil, nil)
	s.Start()

	ev := rawClickEvent()
	ev.Trusted = false

	action, emitted, err := s.HandleRawEvent(context.Background(), ev, rawElementInfo(), types.ActionClick, "")
	require.NoError(t, err)
	assert.False(t, emitted)
	assert.Equal(t, types.Action{}, action)
}
