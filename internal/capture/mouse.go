// mouse.go — MouseCapture: maintains the bounded MouseTrail ring and
// classifies its geometric pattern (spec.md §4.1 MouseCapture, §3 MouseTrail).
package capture

import (
	"math"
	"sync"
	"time"

	"github.com/tracewright/locatorcore/internal/buffers"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// DefaultMouseTrailCapacity bounds the ring; points are sampled at <= 20Hz
// so this comfortably covers several seconds of motion.
const DefaultMouseTrailCapacity = 200

// DefaultTrailTTL drops points older than this from a snapshot
// (spec.md §3 MouseTrail "Points older than a TTL (default 5s) are dropped").
const DefaultTrailTTL = 5 * time.Second

// MouseCapture owns the MouseTrail ring for one tab.
type MouseCapture struct {
	mu      sync.Mutex
	ring    *buffers.RingBuffer[types.TrailPoint]
	ttl     time.Duration
	clock   ports.Clock
	running bool
}

// NewMouseCapture constructs a MouseCapture with the default capacity/TTL.
func NewMouseCapture(clock ports.Clock) *MouseCapture {
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &MouseCapture{
		ring:  buffers.NewRingBuffer[types.TrailPoint](DefaultMouseTrailCapacity),
		ttl:   DefaultTrailTTL,
		clock: clock,
	}
}

// Start begins accepting samples. Idempotent.
func (m *MouseCapture) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
}

// Stop stops accepting samples; buffered points remain until Clear.
func (m *MouseCapture) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// Sample records one mouse position, sampled by the host at <=20Hz.
func (m *MouseCapture) Sample(x, y float64) {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if !running {
		return
	}
	m.ring.WriteOne(types.TrailPoint{X: x, Y: y, Timestamp: m.clock.Now()})
}

// Snapshot returns the MouseEvidence for an action occurring at (x, y).
// Trail points older than the TTL are dropped from the returned snapshot
// (the ring itself is left untouched; eviction there is capacity-driven).
func (m *MouseCapture) Snapshot(x, y float64) types.MouseEvidence {
	all := m.ring.ReadAll()
	now := m.clock.Now()

	fresh := make([]types.TrailPoint, 0, len(all))
	for _, p := range all {
		if now.Sub(p.Timestamp) <= m.ttl {
			fresh = append(fresh, p)
		}
	}

	ev := types.MouseEvidence{
		Trail:    fresh,
		Endpoint: types.Point{X: x, Y: y},
	}

	if len(fresh) == 0 {
		ev.Pattern = types.PatternDirect
		return ev
	}

	first, last := fresh[0], fresh[len(fresh)-1]
	ev.DurationMs = last.Timestamp.Sub(first.Timestamp).Milliseconds()
	ev.TotalDistance = pathLength(fresh)

	endpointDistance := distance(first.X, first.Y, x, y)
	if ev.DurationMs > 0 {
		ev.AverageVelocity = ev.TotalDistance / (float64(ev.DurationMs) / 1000)
	}

	ev.Direction = approachDirection(fresh)
	ev.Pattern = classifyPattern(fresh, ev.TotalDistance, endpointDistance)

	return ev
}

// pathLength sums the Euclidean distance between consecutive trail points.
func pathLength(trail []types.TrailPoint) float64 {
	total := 0.0
	for i := 1; i < len(trail); i++ {
		total += distance(trail[i-1].X, trail[i-1].Y, trail[i].X, trail[i].Y)
	}
	return total
}

func distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// approachDirection derives a unit vector from the last up-to-5 points.
func approachDirection(trail []types.TrailPoint) types.Point {
	n := len(trail)
	if n < 2 {
		return types.Point{}
	}
	start := n - 5
	if start < 0 {
		start = 0
	}
	first, last := trail[start], trail[n-1]
	dx := last.X - first.X
	dy := last.Y - first.Y
	mag := math.Sqrt(dx*dx + dy*dy)
	if mag == 0 {
		return types.Point{}
	}
	return types.Point{X: dx / mag, Y: dy / mag}
}

// classifyPattern buckets the trail's shape using simple geometric
// heuristics: the ratio of path length to endpoint distance, and the
// count of direction reversals (spec.md §4.1 MouseCapture).
func classifyPattern(trail []types.TrailPoint, pathLen, endpointDist float64) types.MouseTrailPattern {
	if len(trail) < 3 {
		return types.PatternDirect
	}

	ratio := 1.0
	if endpointDist > 1 {
		ratio = pathLen / endpointDist
	}

	reversals := countReversals(trail)

	switch {
	case ratio <= 1.15 && reversals == 0:
		return types.PatternDirect
	case reversals >= 4:
		return types.PatternSearching
	case reversals >= 2:
		return types.PatternCorrective
	case ratio > 1.15 && ratio <= 1.8:
		return types.PatternCurved
	default:
		return types.PatternHesitant
	}
}

// countReversals counts sign changes in the dominant direction of travel
// across consecutive trail segments.
func countReversals(trail []types.TrailPoint) int {
	reversals := 0
	var prevDX, prevDY float64
	haveSign := false
	for i := 1; i < len(trail); i++ {
		dx := trail[i].X - trail[i-1].X
		dy := trail[i].Y - trail[i-1].Y
		if dx == 0 && dy == 0 {
			continue
		}
		if haveSign {
			if sign(dx) != 0 && sign(prevDX) != 0 && sign(dx) != sign(prevDX) {
				reversals++
			} else if sign(dy) != 0 && sign(prevDY) != 0 && sign(dy) != sign(prevDY) {
				reversals++
			}
		}
		prevDX, prevDY = dx, dy
		haveSign = true
	}
	return reversals
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
