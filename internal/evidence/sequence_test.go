package evidence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/types"
)

func TestNormalizeURLPattern_WildcardsNumericSegments(t *testing.T) {
	assert.Equal(t, "/orders/*/items", NormalizeURLPattern("/orders/482/items?x=1"))
	assert.Equal(t, "/settings/profile", NormalizeURLPattern("/settings/profile"))
}

func TestSequencePatternAnalyzer_ObserveAndScore(t *testing.T) {
	a := NewSequencePatternAnalyzer(nil, nil, nil)

	for i := 0; i < 5; i++ {
		a.ObserveSequence("/checkout/482", []string{"email", "address", "submit"})
	}

	score := a.Score("/checkout/99", "submit", []string{"email", "address"})
	assert.Greater(t, score, 0.0)

	noMatch := a.Score("/checkout/99", "cancel", []string{"email", "address"})
	assert.Less(t, noMatch, score)
}

func TestSequencePatternAnalyzer_ConfidenceGrowsWithOccurrences(t *testing.T) {
	a := NewSequencePatternAnalyzer(nil, nil, nil)
	a.ObserveSequence("/a", []string{"x", "y"})
	once := a.Score("/a", "y", []string{"x"})

	for i := 0; i < 20; i++ {
		a.ObserveSequence("/a", []string{"x", "y"})
	}
	many := a.Score("/a", "y", []string{"x"})

	assert.Greater(t, many, once)
}

type fakeRepo struct {
	saved     types.SequencePatternsExport
	saveCalls int
	loaded    types.SequencePatternsExport
	hasLoad   bool
	loadErr   error
}

func (f *fakeRepo) SaveRecording(types.Recording) error                  { return nil }
func (f *fakeRepo) LoadRecording(string) (types.Recording, error)        { return types.Recording{}, nil }
func (f *fakeRepo) DeleteRecording(string) error                         { return nil }
func (f *fakeRepo) ListRecordings() ([]types.Recording, error)           { return nil, nil }
func (f *fakeRepo) AppendTelemetry(...types.TelemetryEvent) error        { return nil }
func (f *fakeRepo) QueryTelemetry(string) ([]types.TelemetryEvent, error) { return nil, nil }
func (f *fakeRepo) TelemetrySince(int) ([]types.TelemetryEvent, error)   { return nil, nil }
func (f *fakeRepo) SaveSequencePatterns(export types.SequencePatternsExport) error {
	f.saved = export
	f.saveCalls++
	return nil
}
func (f *fakeRepo) LoadSequencePatterns() (types.SequencePatternsExport, bool, error) {
	return f.loaded, f.hasLoad, f.loadErr
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time                  { return c.t }
func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.t.Add(d)
	return ch
}

func TestSequencePatternAnalyzer_MaybeSave_RespectsDebounce(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	repo := &fakeRepo{}
	a := NewSequencePatternAnalyzer(repo, clock, nil)
	a.debounce = time.Second

	a.ObserveSequence("/a", []string{"x", "y"})

	saved, err := a.MaybeSave()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, repo.saveCalls)

	a.ObserveSequence("/a", []string{"x", "y"})
	saved, err = a.MaybeSave()
	require.NoError(t, err)
	assert.False(t, saved, "second save within debounce window should be skipped")
	assert.Equal(t, 1, repo.saveCalls)

	clock.t = clock.t.Add(2 * time.Second)
	saved, err = a.MaybeSave()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 2, repo.saveCalls)
}

func TestSequencePatternAnalyzer_Load_RejectsMajorMismatch(t *testing.T) {
	repo := &fakeRepo{
		hasLoad: true,
		loaded: types.SequencePatternsExport{
			Version:  types.SequencePatternsVersion{Major: 99, Minor: 0},
			Patterns: []types.SequencePattern{{URLPattern: "/a", Labels: []string{"x", "y"}, Occurrences: 5, Confidence: 0.9}},
		},
	}
	a := NewSequencePatternAnalyzer(repo, nil, nil)
	a.Load()

	score := a.Score("/a", "y", []string{"x"})
	assert.Equal(t, 0.0, score, "MAJOR mismatch must be rejected, leaving the analyzer empty")
}

func TestSequencePatternAnalyzer_Load_AcceptsMinorMismatch(t *testing.T) {
	repo := &fakeRepo{
		hasLoad: true,
		loaded: types.SequencePatternsExport{
			Version:  types.SequencePatternsVersion{Major: types.CurrentPatternsVersion.Major, Minor: 0},
			Patterns: []types.SequencePattern{{URLPattern: "/a", Labels: []string{"x", "y"}, Occurrences: 5, Confidence: 0.9}},
		},
	}
	a := NewSequencePatternAnalyzer(repo, nil, nil)
	a.Load()

	score := a.Score("/a", "y", []string{"x"})
	assert.Greater(t, score, 0.0)
}

func TestSequencePatternAnalyzer_Load_NonFatalOnError(t *testing.T) {
	repo := &fakeRepo{loadErr: assertErr{}}
	a := NewSequencePatternAnalyzer(repo, nil, nil)
	assert.NotPanics(t, func() { a.Load() })
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
