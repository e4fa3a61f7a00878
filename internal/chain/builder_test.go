package chain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/types"
)

func strat(kind types.StrategyKind, conf float64) types.Strategy {
	return types.Strategy{Kind: kind, Confidence: conf}
}

func TestBuilder_SortsByEffectiveConfidenceDescending(t *testing.T) {
	candidates := []types.Strategy{
		strat(types.StrategyCSSSelector, 0.75),
		strat(types.StrategyCDPSemantic, 0.95),
		strat(types.StrategyCoordinates, 0.60),
	}
	scores := map[int]float64{0: 0.75, 1: 0.95, 2: 0.60}

	got := Builder{}.Build(candidates, scores, types.Strategy{})

	require.Len(t, got, 3)
	assert.True(t, got[0].Confidence >= got[1].Confidence)
	assert.True(t, got[1].Confidence >= got[2].Confidence)
	assert.Equal(t, types.StrategyCDPSemantic, got[0].Kind)
}

func TestBuilder_DropsZeroScoredCandidates(t *testing.T) {
	candidates := []types.Strategy{strat(types.StrategyVisionOCR, 0.70), strat(types.StrategyCDPSemantic, 0.95)}
	scores := map[int]float64{0: 0, 1: 0.95}

	got := Builder{}.Build(candidates, scores, types.Strategy{})

	require.Len(t, got, 1)
	assert.Equal(t, types.StrategyCDPSemantic, got[0].Kind)
}

func TestBuilder_DeduplicatesSameCandidate(t *testing.T) {
	s := types.Strategy{Kind: types.StrategyDOMSelector, Confidence: 0.85, Metadata: map[string]any{"selector": "#x"}}
	candidates := []types.Strategy{s, s}
	scores := map[int]float64{0: 0.85, 1: 0.85}

	got := Builder{}.Build(candidates, scores, types.Strategy{})
	assert.Len(t, got, 1)
}

func TestBuilder_EnforcesPrimaryAtIndexZero(t *testing.T) {
	primary := strat(types.StrategyCSSSelector, 0.75)
	candidates := []types.Strategy{
		strat(types.StrategyCDPSemantic, 0.95),
		primary,
	}
	scores := map[int]float64{0: 0.95, 1: 0.75}

	got := Builder{}.Build(candidates, scores, primary)

	require.NotEmpty(t, got)
	assert.Equal(t, types.StrategyCSSSelector, got[0].Kind)
}

func TestBuilder_InsertsMissingPrimary(t *testing.T) {
	primary := strat(types.StrategyDOMSelector, 0.85)
	candidates := []types.Strategy{strat(types.StrategyCDPSemantic, 0.95)}
	scores := map[int]float64{0: 0.95}

	got := Builder{}.Build(candidates, scores, primary)

	require.NotEmpty(t, got)
	assert.Equal(t, types.StrategyDOMSelector, got[0].Kind)
}

func TestBuilder_BuildIsDeterministicAcrossRuns(t *testing.T) {
	candidates := []types.Strategy{
		strat(types.StrategyCDPSemantic, 0.95),
		strat(types.StrategyDOMSelector, 0.85),
		strat(types.StrategyCSSSelector, 0.75),
		strat(types.StrategyVisionOCR, 0.65),
		strat(types.StrategyCoordinates, 0.55),
	}
	scores := map[int]float64{0: 0.95, 1: 0.85, 2: 0.75, 3: 0.65, 4: 0.55}
	primary := candidates[1]

	first := Builder{}.Build(candidates, scores, primary)
	second := Builder{}.Build(candidates, scores, primary)

	// Replay determinism (spec.md §4.4) requires the same candidate pool to
	// build byte-identical chains across runs; cmp.Diff pinpoints which
	// field diverged rather than just reporting inequality.
	if diff := cmp.Diff(first, second, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("Build is not deterministic (-first +second):\n%s", diff)
	}
}

func TestBuilder_CapsChainAtSevenWithCategoryDiversity(t *testing.T) {
	candidates := []types.Strategy{
		strat(types.StrategyCDPSemantic, 0.95),
		strat(types.StrategyCDPPower, 0.90),
		strat(types.StrategyDOMSelector, 0.85),
		strat(types.StrategyCSSSelector, 0.80),
		strat(types.StrategyEvidenceScoring, 0.75),
		strat(types.StrategyVisionOCR, 0.70),
		strat(types.StrategyCoordinates, 0.65),
		strat(types.StrategyCoordinates, 0.60),
	}
	scores := map[int]float64{0: 0.95, 1: 0.90, 2: 0.85, 3: 0.80, 4: 0.75, 5: 0.70, 6: 0.65, 7: 0.60}

	got := Builder{}.Build(candidates, scores, types.Strategy{})
	assert.LessOrEqual(t, len(got), MaxChainLength)

	categories := map[types.Category]bool{}
	for _, s := range got {
		categories[s.Kind.Category()] = true
	}
	assert.True(t, categories[types.CategorySemantic])
	assert.True(t, categories[types.CategoryVision])
	assert.True(t, categories[types.CategoryCoordinates])
}
