// scorer.go — StrategyScorer: multiplies a candidate's base confidence by
// an evidence-quality factor, a selector-specificity factor, and a
// uniqueness test (spec.md §4.4).
package chain

import (
	"context"

	"github.com/tracewright/locatorcore/internal/types"
)

// UniquenessChecker reports how many live elements a candidate selector or
// XPath resolves to at capture time. Generator/Scorer never touch the DOM
// directly; this is the one seam into CDPSession for that purpose.
type UniquenessChecker func(ctx context.Context, tabID string, candidate types.Strategy) int

// Scorer applies the three capture-time scoring factors to a raw candidate.
type Scorer struct {
	Unique UniquenessChecker
}

// Score returns the candidate's effective confidence, or 0 if it should be
// dropped outright (resolves to no live element, or evidence quality too
// low to use). A candidate matching several elements is demoted, not dropped.
func (s Scorer) Score(ctx context.Context, tabID string, candidate types.Strategy) float64 {
	base := candidate.Kind.BaseConfidence()
	if base == 0 {
		base = candidate.Confidence
	}

	quality := evidenceQualityFactor(candidate)
	if quality == 0 {
		return 0
	}

	specificity := specificityFactor(candidate)

	uniqueness := 1.0
	if s.Unique != nil {
		matches := s.Unique(ctx, tabID, candidate)
		switch {
		case matches == 1:
			uniqueness = 1.0
		case matches > 1:
			uniqueness = 0.5 // demoted, not dropped
		case matches == 0:
			uniqueness = 0 // dropped: candidate resolves to nothing
		}
	}

	return base * quality * specificity * uniqueness
}

// evidenceQualityFactor zeroes out candidates whose supporting evidence is
// too weak to trust (spec.md §4.4 "vision skipped if OCR confidence < 60").
func evidenceQualityFactor(candidate types.Strategy) float64 {
	if candidate.Kind == types.StrategyVisionOCR {
		if conf, ok := candidate.Metadata["ocr_confidence"].(float64); ok && conf < 60 {
			return 0
		}
	}
	return 1.0
}

// specificityFactor ranks selector specificity id > testid > role+name >
// class > tag (spec.md §4.4).
func specificityFactor(candidate types.Strategy) float64 {
	basis, _ := candidate.Metadata["selector_basis"].(string)
	switch basis {
	case "id":
		return 1.0
	case "testid":
		return 0.95
	case "role_name":
		return 0.9
	case "class":
		return 0.8
	default:
		return 0.7 // tag or unknown basis
	}
}
