// producers.go — BundleProducer: the CandidateProducer that proposes one
// Strategy per locator family from a captured Action's LocatorBundle and
// Evidence (spec.md §4.4 "each returns zero or more Strategy records with
// base confidence"; metadata shapes per §4.3's per-evaluator design rules).
package chain

import (
	"github.com/tracewright/locatorcore/internal/capture"
	"github.com/tracewright/locatorcore/internal/types"
)

// BundleProducer is the only CandidateProducer the recording pipeline
// needs: unlike replay's StrategyEvaluators (which resolve against a live
// page), candidate production only inspects what DOMCapture/VisionCapture/
// MouseCapture already wrote onto the Action.
type BundleProducer struct{}

// ProduceCandidates proposes a Strategy for every locator family the
// captured bundle/evidence carries enough signal for.
func (BundleProducer) ProduceCandidates(action types.Action) []types.Strategy {
	b := action.LocatorBundle
	var out []types.Strategy

	if b.Role != "" && b.AccessibleName != "" {
		out = append(out, types.Strategy{
			Kind: types.StrategyCDPSemantic,
			Metadata: map[string]any{
				"role": b.Role, "accessible_name": b.AccessibleName,
				"selector_basis": "role_name",
			},
		})
	}

	if basis, ok := powerBasis(b); ok {
		out = append(out, types.Strategy{
			Kind: types.StrategyCDPPower,
			Metadata: map[string]any{
				"test_id": b.TestID, "placeholder": b.Placeholder,
				"text": b.TextContent, "selector_basis": basis,
			},
		})
	}

	if basis, ok := domSelectorBasis(b); ok {
		out = append(out, types.Strategy{
			Kind: types.StrategyDOMSelector,
			Metadata: map[string]any{
				"id": b.ID, "test_id": b.TestID, "class_list": b.ClassList,
				"selector_basis": basis,
			},
		})
	}

	out = append(out, types.Strategy{
		Kind: types.StrategyCSSSelector,
		Metadata: map[string]any{
			"css_path":       capture.PrimarySelector(b, 4),
			"selector_basis": cssBasis(b),
		},
	})

	out = append(out, types.Strategy{
		Kind:     types.StrategyEvidenceScoring,
		Metadata: map[string]any{"tag_name": b.TagName},
	})

	if action.Evidence.Vision != nil && action.Evidence.Vision.Available && action.Evidence.Vision.TargetText != "" {
		out = append(out, types.Strategy{
			Kind: types.StrategyVisionOCR,
			Metadata: map[string]any{
				"target_text":    action.Evidence.Vision.TargetText,
				"bounding_box":   action.Evidence.Vision.BoundingBox,
				"ocr_confidence": float64(action.Evidence.Vision.OCRConfidence),
			},
		})
	}

	if b.BoundingRect.Width > 0 && b.BoundingRect.Height > 0 {
		cx, cy := b.BoundingRect.Center()
		out = append(out, types.Strategy{
			Kind:     types.StrategyCoordinates,
			Metadata: map[string]any{"x": cx, "y": cy},
		})
	}

	return out
}

// powerBasis reports the selector_basis of a cdp_power candidate: testid
// when a test id was recorded, else role_name when a placeholder or text
// content was. This order is not the order in which the cdp_power
// evaluator tries its predicates at replay time.
func powerBasis(b types.LocatorBundle) (string, bool) {
	switch {
	case b.TestID != "":
		return "testid", true
	case b.Placeholder != "":
		return "role_name", true
	case b.TextContent != "":
		return "role_name", true
	default:
		return "", false
	}
}

// domSelectorBasis reports the selector_basis of a dom_selector candidate
// by priority: id, test-id, class. A bundle with none of these yields no
// dom_selector candidate.
func domSelectorBasis(b types.LocatorBundle) (string, bool) {
	switch {
	case b.ID != "":
		return "id", true
	case b.TestID != "":
		return "testid", true
	case len(b.ClassList) > 0:
		return "class", true
	default:
		return "", false
	}
}

func cssBasis(b types.LocatorBundle) string {
	if basis, ok := domSelectorBasis(b); ok {
		return basis
	}
	return "tag"
}
