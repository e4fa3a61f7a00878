// coordinates.go — coordinates evaluator: the last-resort strategy that
// clicks a raw viewport point (spec.md §4.3).
package evaluator

import (
	"context"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// CoordinatesEvaluator handles StrategyCoordinates. Its confidence never
// exceeds the strategy's base (spec.md §4.3 "Confidence never exceeds its
// base 0.60").
type CoordinatesEvaluator struct{}

func (CoordinatesEvaluator) HandledKinds() []types.StrategyKind {
	return []types.StrategyKind{types.StrategyCoordinates}
}

func (e CoordinatesEvaluator) Evaluate(ctx context.Context, ec EvaluationContext, action types.Action, strategy types.Strategy) Result {
	return timed(ec.Clock, func() Result {
		x, xok := strategy.Metadata["x"].(float64)
		y, yok := strategy.Metadata["y"].(float64)
		if !xok || !yok {
			return failClosed(types.ErrElementNotFound)
		}

		if parentSelector, ok := strategy.Metadata["parent_selector"].(string); ok && parentSelector != "" && ec.CDP != nil {
			// Element-relative coordinates: resolve the parent first and
			// add the recorded offset (spec.md §4.3 coordinates).
			parents, err := ec.CDP.QuerySelector(ctx, ec.TabID, parentSelector)
			if err == nil && len(parents) == 1 {
				x += parents[0].Rect.X
				y += parents[0].Rect.Y
			}
		}

		confidence := strategy.Confidence
		if confidence > types.StrategyCoordinates.BaseConfidence() {
			confidence = types.StrategyCoordinates.BaseConfidence()
		}

		return Result{Found: true, Confidence: confidence, Handle: handleAtPoint(types.Rect{X: x, Y: y}), MatchCount: 1}
	})
}

// handleAtPoint synthesizes a DOMHandle for strategies (vision_ocr,
// coordinates) that resolve to a viewport point rather than a live node.
func handleAtPoint(rect types.Rect) ports.DOMHandle {
	return ports.DOMHandle{Rect: rect}
}
