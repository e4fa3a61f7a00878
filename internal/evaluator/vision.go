// vision.go — vision_ocr evaluator: re-screenshots the viewport, OCRs it,
// and matches the recorded targetText (spec.md §4.3).
package evaluator

import (
	"context"
	"math"
	"strings"

	"github.com/tracewright/locatorcore/internal/types"
)

// DefaultOCRConfidenceThreshold is the spec's fixed OCR confidence floor
// (spec.md §9 Open Questions, resolved fixed-but-inspectable in
// SPEC_FULL.md AMBIENT STACK / internal/config).
const DefaultOCRConfidenceThreshold = 60

// VisionEvaluator handles StrategyVisionOCR.
type VisionEvaluator struct {
	OCRLanguage string

	// OCRConfidenceThreshold rejects OCR matches below this percentage.
	// Zero means DefaultOCRConfidenceThreshold.
	OCRConfidenceThreshold float64
}

func (VisionEvaluator) HandledKinds() []types.StrategyKind {
	return []types.StrategyKind{types.StrategyVisionOCR}
}

func (e VisionEvaluator) Evaluate(ctx context.Context, ec EvaluationContext, action types.Action, strategy types.Strategy) Result {
	return timed(ec.Clock, func() Result {
		if ec.Vision == nil {
			return failClosed(types.ErrVisionInitFailed)
		}
		if action.Evidence.Vision == nil || !action.Evidence.Vision.Available || action.Evidence.Vision.TargetText == "" {
			return failClosed(types.ErrElementNotFound)
		}

		lang := e.OCRLanguage
		if lang == "" {
			lang = "eng"
		}

		shot, err := ec.Vision.CaptureScreenshot(ctx, ec.TabID, "png", 80)
		if err != nil {
			return failClosed(types.ErrVisionOCRFailed)
		}

		result, err := ec.Vision.RunOCR(ctx, shot, nil, lang)
		if err != nil {
			return failClosed(types.ErrVisionOCRFailed)
		}

		target := strings.ToLower(action.Evidence.Vision.TargetText)
		var best *types.Rect
		bestDist := math.MaxFloat64
		for _, w := range result.Words {
			if !strings.Contains(strings.ToLower(w.Text), target) {
				continue
			}
			d := boxDistance(w.BBox, action.Evidence.Vision.BoundingBox)
			if d < bestDist {
				dCopy := w.BBox
				best = &dCopy
				bestDist = d
			}
		}

		if best == nil {
			return failClosed(types.ErrElementNotFound)
		}
		threshold := e.OCRConfidenceThreshold
		if threshold <= 0 {
			threshold = DefaultOCRConfidenceThreshold
		}
		if result.Confidence < threshold {
			return Result{Found: false, ErrorKind: types.ErrVisionConfidenceLow}
		}

		confidence := strategy.Confidence * (float64(result.Confidence) / 100)

		return Result{
			Found:      true,
			Confidence: confidence,
			Handle:     handleAtPoint(*best),
			MatchCount: 1,
		}
	})
}

func boxDistance(a, b types.Rect) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(ax-bx, ay-by)
}
