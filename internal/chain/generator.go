// generator.go — FallbackChainGenerator: invokes every evaluator in
// candidate-production mode, scores the results, and builds the final
// chain (spec.md §4.4).
package chain

import (
	"context"

	"github.com/tracewright/locatorcore/internal/types"
)

// CandidateProducer is an evaluator acting in capture-time mode: instead
// of resolving against the live page for replay, it proposes the
// Strategy records it could apply to this Action at this moment (spec.md
// §4.4 "invokes every evaluator in candidate-production mode").
type CandidateProducer interface {
	ProduceCandidates(action types.Action) []types.Strategy
}

// Generator builds a FallbackChain for a newly captured Action.
type Generator struct {
	Producers []CandidateProducer
	Scorer    Scorer
	Builder   Builder
}

// Generate runs every producer, scores the pooled candidates, and returns
// the ordered chain with primary forced to index 0.
func (g Generator) Generate(ctx context.Context, tabID string, action types.Action, primary types.Strategy) []types.Strategy {
	var candidates []types.Strategy
	for _, p := range g.Producers {
		candidates = append(candidates, p.ProduceCandidates(action)...)
	}

	scores := make(map[int]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = g.Scorer.Score(ctx, tabID, c)
	}

	return g.Builder.Build(candidates, scores, primary)
}
