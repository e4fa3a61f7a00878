// evidence.go — evidence_scoring evaluator: scores a candidate pool on
// five weighted axes and buckets the top score (spec.md §4.3).
package evaluator

import (
	"context"
	"strings"

	"github.com/tracewright/locatorcore/internal/evidence"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

var mouseTrailTracker = evidence.NewMouseTrailTracker()

// Score bucket thresholds (spec.md §4.3 "Total score maps to buckets").
const (
	BucketAutoApply     = 0.85
	BucketApplyWithFlag = 0.60
	BucketReject        = 0.30
)

// Axis weights (spec.md §4.3 evidence_scoring axes).
const (
	weightSpatial  = 0.25
	weightSequence = 0.20
	weightVisual   = 0.15
	weightDOM      = 0.25
	weightHistory  = 0.15
)

// EvidenceEvaluator handles StrategyEvidenceScoring.
type EvidenceEvaluator struct {
	// HistoryFn returns this tab/session's prior success rate [0,1] for a
	// candidate handle, or 0 if no history exists. Injected because
	// "history" belongs to telemetry, not evaluator.
	HistoryFn func(tabID string, handle ports.DOMHandle) float64
}

func (EvidenceEvaluator) HandledKinds() []types.StrategyKind {
	return []types.StrategyKind{types.StrategyEvidenceScoring}
}

func (e EvidenceEvaluator) Evaluate(ctx context.Context, ec EvaluationContext, action types.Action, strategy types.Strategy) Result {
	return timed(ec.Clock, func() Result {
		if ec.CDP == nil {
			return failClosed(types.ErrCDPNotAttached)
		}

		candidates, err := candidatePool(ctx, ec, action.LocatorBundle)
		if err != nil {
			return failClosed(types.ErrCDPTimeout)
		}
		if len(candidates) == 0 {
			return failClosed(types.ErrElementNotFound)
		}

		var best ports.DOMHandle
		bestScore := -1.0
		for _, c := range candidates {
			s := e.score(ec, action, c)
			if s > bestScore {
				bestScore = s
				best = c
			}
		}

		if bestScore < BucketReject {
			return Result{Found: false, MatchCount: len(candidates), ErrorKind: types.ErrElementNotFound}
		}

		return Result{Found: true, Confidence: bestScore, Handle: best, MatchCount: len(candidates)}
	})
}

// candidatePool gathers every live element with the recorded tag name. No
// class-overlap or container filtering is applied, so the pool can include
// unrelated elements of the same tag.
func candidatePool(ctx context.Context, ec EvaluationContext, b types.LocatorBundle) ([]ports.DOMHandle, error) {
	return ec.CDP.QuerySelector(ctx, ec.TabID, b.TagName)
}

// score combines the five weighted axes into [0,1].
func (e EvidenceEvaluator) score(ec EvaluationContext, action types.Action, handle ports.DOMHandle) float64 {
	b := action.LocatorBundle

	spatial := spatialScore(b, action.Evidence, handle, ec.CurrentScroll)
	sequence := 0.0
	if ec.SequenceFn != nil {
		sequence = ec.SequenceFn(ec.CurrentURL, b.Label(), ec.RecentLabels)
	}
	visual := visualScore(b, handle)
	dom := domAgreementScore(b, handle)
	history := 0.0
	if e.HistoryFn != nil {
		history = e.HistoryFn(ec.TabID, handle)
	}

	return spatial*weightSpatial + sequence*weightSequence + visual*weightVisual + dom*weightDOM + history*weightHistory
}

// spatialScore rewards position proximity (scroll-compensated), size
// similarity, and mouse-trajectory approach agreement (spec.md §4.3
// spatial axis).
func spatialScore(b types.LocatorBundle, ev types.Evidence, handle ports.DOMHandle, currentScroll types.ScrollPosition) float64 {
	recordedCx, recordedCy := b.BoundingRect.Center()
	liveCx, liveCy := handle.Rect.Center()

	// Scroll compensation: subtract the recorded-vs-current scroll delta
	// before computing distance (spec.md §4.3, §8).
	dist := evidence.ScrollCompensatedDistance(recordedCx, recordedCy, liveCx, liveCy, b.ScrollPosition, currentScroll)
	proximity := 1 / (1 + dist/200)

	sizeScore := 1.0
	if b.BoundingRect.Width > 0 && b.BoundingRect.Height > 0 {
		wr := ratio(handle.Rect.Width, b.BoundingRect.Width)
		hr := ratio(handle.Rect.Height, b.BoundingRect.Height)
		sizeScore = (wr + hr) / 2
	}

	trajectoryScore := 0.5
	if ev.Mouse != nil && len(ev.Mouse.Trail) > 0 {
		trajectoryScore = mouseTrailTracker.AnalyzeScrollCompensated(handle.Rect, b.ScrollPosition, currentScroll, ev.Mouse.Trail)
	}

	return clamp01((proximity + sizeScore + trajectoryScore) / 3)
}

func ratio(a, b float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return a / b
}

// visualScore rewards tag agreement (spec.md §4.3 visual axis). The input
// type is not compared.
func visualScore(b types.LocatorBundle, handle ports.DOMHandle) float64 {
	if strings.EqualFold(b.TagName, handle.TagName) {
		return 1.0
	}
	return 0.0
}

// domAgreementScore approximates the dom axis (spec.md §4.3) from the
// handle alone: 1.0 when the recorded id appears in the handle's NodeID,
// 0.5 when only the tag matches, else 0. Name, aria-label and data
// attributes are not compared.
func domAgreementScore(b types.LocatorBundle, handle ports.DOMHandle) float64 {
	if b.ID != "" && strings.Contains(handle.NodeID, b.ID) {
		return 1.0
	}
	if strings.EqualFold(b.TagName, handle.TagName) {
		return 0.5
	}
	return 0.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
