// registry.go — EvaluatorRegistry: dispatches a Strategy's kind to the
// evaluator that handles it (spec.md §4.3 "a closed set of implementations
// of a single Evaluator capability").
package replay

import (
	"github.com/tracewright/locatorcore/internal/evaluator"
	"github.com/tracewright/locatorcore/internal/types"
)

// EvaluatorRegistry maps each StrategyKind to the one evaluator that
// resolves it. A single evaluator may handle more than one kind (e.g.
// SelectorEvaluator handles both dom_selector and css_selector).
type EvaluatorRegistry struct {
	byKind map[types.StrategyKind]evaluator.Evaluator
}

// NewEvaluatorRegistry builds a registry from the full evaluator set.
func NewEvaluatorRegistry(evaluators ...evaluator.Evaluator) *EvaluatorRegistry {
	reg := &EvaluatorRegistry{byKind: make(map[types.StrategyKind]evaluator.Evaluator)}
	for _, e := range evaluators {
		for _, k := range e.HandledKinds() {
			reg.byKind[k] = e
		}
	}
	return reg
}

// For returns the evaluator responsible for kind, if any.
func (r *EvaluatorRegistry) For(kind types.StrategyKind) (evaluator.Evaluator, bool) {
	e, ok := r.byKind[kind]
	return e, ok
}

// DefaultRegistry wires the six standard evaluators (spec.md §4.3: dom/
// css selector, semantic, power, evidence scoring, vision, coordinates —
// seven kinds across six evaluator implementations).
func DefaultRegistry(evidenceEvaluator evaluator.EvidenceEvaluator, visionEvaluator evaluator.VisionEvaluator) *EvaluatorRegistry {
	return NewEvaluatorRegistry(
		evaluator.SelectorEvaluator{},
		evaluator.SemanticEvaluator{},
		evaluator.PowerEvaluator{},
		evidenceEvaluator,
		visionEvaluator,
		evaluator.CoordinatesEvaluator{},
	)
}
