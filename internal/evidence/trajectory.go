// trajectory.go — MouseTrailTracker: scores a mouse trail's approach to a
// candidate element, with a scroll-compensated variant (spec.md §4.8).
package evidence

import (
	"math"

	"github.com/tracewright/locatorcore/internal/types"
)

// MouseTrailTracker analyzes a captured MouseTrail against a candidate
// element's bounds. It holds no state; it exists as a named component
// because the spec calls out its method as a first-class operation
// (spec.md §4.8 "MouseTrailTracker exposes analyzeTrajectoryToElement").
type MouseTrailTracker struct{}

// NewMouseTrailTracker constructs a MouseTrailTracker.
func NewMouseTrailTracker() *MouseTrailTracker {
	return &MouseTrailTracker{}
}

// AnalyzeTrajectoryToElement returns [0,1]: the approach ratio (fraction of
// consecutive trail points whose distance to the element center strictly
// decreases), weighted 0.6, plus a proximity term for the trail's last
// point, weighted 0.4 (spec.md §4.8).
func (MouseTrailTracker) AnalyzeTrajectoryToElement(bounds types.Rect, trail []types.TrailPoint) float64 {
	if len(trail) == 0 {
		return 0
	}

	cx, cy := bounds.Center()

	decreasing := 0
	comparisons := 0
	prevDist := math.Inf(1)
	for i, p := range trail {
		d := hypot(p.X-cx, p.Y-cy)
		if i > 0 {
			comparisons++
			if d < prevDist {
				decreasing++
			}
		}
		prevDist = d
	}

	approachRatio := 0.0
	if comparisons > 0 {
		approachRatio = float64(decreasing) / float64(comparisons)
	}

	last := trail[len(trail)-1]
	lastDist := hypot(last.X-cx, last.Y-cy)
	proximity := 1 / (1 + lastDist/200)

	return clamp01(approachRatio*0.6 + proximity*0.4)
}

// AnalyzeScrollCompensated adjusts the candidate bounds by the delta
// between the recorded and current scroll positions before scoring, so a
// page that has merely scrolled between record and replay doesn't read as
// the mouse having moved away from the target (spec.md §4.3 "scroll
// compensation", §8 testable property).
func (t MouseTrailTracker) AnalyzeScrollCompensated(bounds types.Rect, recordedScroll, currentScroll types.ScrollPosition, trail []types.TrailPoint) float64 {
	dx, dy := ScrollCompensatedOffset(recordedScroll, currentScroll)
	adjusted := bounds
	adjusted.X += dx
	adjusted.Y += dy
	return t.AnalyzeTrajectoryToElement(adjusted, trail)
}

// ScrollCompensatedOffset returns the (x, y) the recorded geometry must be
// shifted by to compare against current-page geometry: the current scroll
// offset minus the recorded one (spec.md §8 "the distance fed to
// the spatial scorer equals the raw distance minus that delta").
func ScrollCompensatedOffset(recordedScroll, currentScroll types.ScrollPosition) (float64, float64) {
	return currentScroll.Delta(recordedScroll)
}

// ScrollCompensatedDistance computes the distance between a recorded point
// and a live point after subtracting the scroll delta, the exact property
// asserted in spec.md §8.
func ScrollCompensatedDistance(recordedX, recordedY, liveX, liveY float64, recordedScroll, currentScroll types.ScrollPosition) float64 {
	dx, dy := ScrollCompensatedOffset(recordedScroll, currentScroll)
	rawDX := liveX - recordedX
	rawDY := liveY - recordedY
	return hypot(rawDX-dx, rawDY-dy)
}

func hypot(dx, dy float64) float64 {
	return math.Hypot(dx, dy)
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
