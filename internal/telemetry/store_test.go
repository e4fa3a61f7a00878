package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/types"
)

type fakeRepo struct {
	events []types.TelemetryEvent
	err    error
}

func (f *fakeRepo) SaveRecording(types.Recording) error                           { return nil }
func (f *fakeRepo) LoadRecording(string) (types.Recording, error)                 { return types.Recording{}, nil }
func (f *fakeRepo) DeleteRecording(string) error                                  { return nil }
func (f *fakeRepo) ListRecordings() ([]types.Recording, error)                    { return nil, nil }
func (f *fakeRepo) SaveSequencePatterns(types.SequencePatternsExport) error       { return nil }
func (f *fakeRepo) LoadSequencePatterns() (types.SequencePatternsExport, bool, error) {
	return types.SequencePatternsExport{}, false, nil
}

func (f *fakeRepo) AppendTelemetry(events ...types.TelemetryEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeRepo) QueryTelemetry(runID string) ([]types.TelemetryEvent, error) {
	var out []types.TelemetryEvent
	for _, e := range f.events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) TelemetrySince(days int) ([]types.TelemetryEvent, error) {
	return f.events, nil
}

func TestStore_AppendAndQuery(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo, nil)

	require.NoError(t, s.Append(types.TelemetryEvent{RunID: "r1", StrategyKind: types.StrategyDOMSelector}))

	got, err := s.Query("r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.StrategyDOMSelector, got[0].StrategyKind)
}

func TestStore_AppendPropagatesRepoError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("disk full")}
	s := NewStore(repo, nil)

	err := s.Append(types.TelemetryEvent{RunID: "r1"})
	assert.Error(t, err)
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "failed", Badge(types.StrategyDOMSelector, false))
	assert.Equal(t, "semantic", Badge(types.StrategyCDPSemantic, true))
	assert.Equal(t, "vision", Badge(types.StrategyVisionOCR, true))
	assert.Equal(t, "coordinates", Badge(types.StrategyCoordinates, true))
}
