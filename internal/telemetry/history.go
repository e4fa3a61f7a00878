// history.go — per-tab/session selector win-rate tracking for the
// evidence_scoring evaluator's history axis (spec.md §4.3 "prior success
// on this selector within the tab/session"). This is deliberately
// in-memory and distinct from the persisted telemetry.Store: a
// TelemetryEvent (spec.md §3) has no locator-bundle identity to key a
// durable lookup on, so History tracks candidate outcomes by the live
// DOM handle's node identity for the lifetime of the tab's session.
package telemetry

import (
	"sync"

	"github.com/tracewright/locatorcore/internal/buffers"
	"github.com/tracewright/locatorcore/internal/ports"
)

// DefaultHistoryWindow bounds how many recent outcomes History keeps per
// selector. Unlike TelemetryStore, History never persists and never gets
// pruned by "save as approved" (spec.md §3 evidence pruning), so an
// unbounded per-selector counter would grow for as long as the tab's
// session runs; a ring buffer keeps the history axis reflecting recent
// performance instead of a stale all-time average.
const DefaultHistoryWindow = 50

// History is the in-memory, per-tab owner of "prior success on this
// selector within the tab/session" (spec.md §4.3 history axis).
type History struct {
	mu    sync.Mutex
	rings map[string]*buffers.RingBuffer[bool]
}

// NewHistory constructs an empty History.
func NewHistory() *History {
	return &History{rings: make(map[string]*buffers.RingBuffer[bool])}
}

// Record notes whether a dispatch against tabID/handle succeeded.
func (h *History) Record(tabID string, handle ports.DOMHandle, succeeded bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := historyKey(tabID, handle)
	rb, ok := h.rings[key]
	if !ok {
		rb = buffers.NewRingBuffer[bool](DefaultHistoryWindow)
		h.rings[key] = rb
	}
	rb.WriteOne(succeeded)
}

// SuccessRate returns the fraction of the last DefaultHistoryWindow
// recorded dispatches against tabID/handle that succeeded, or 0 with no
// prior history.
func (h *History) SuccessRate(tabID string, handle ports.DOMHandle) float64 {
	h.mu.Lock()
	rb, ok := h.rings[historyKey(tabID, handle)]
	h.mu.Unlock()
	if !ok {
		return 0
	}

	outcomes := rb.ReadAll()
	if len(outcomes) == 0 {
		return 0
	}
	wins := 0
	for _, succeeded := range outcomes {
		if succeeded {
			wins++
		}
	}
	return float64(wins) / float64(len(outcomes))
}

// HistoryFn adapts SuccessRate to EvidenceEvaluator.HistoryFn's signature.
func (h *History) HistoryFn(tabID string, handle ports.DOMHandle) float64 {
	return h.SuccessRate(tabID, handle)
}

func historyKey(tabID string, handle ports.DOMHandle) string {
	return tabID + "|" + handle.NodeID
}
