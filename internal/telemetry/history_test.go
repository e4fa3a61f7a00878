package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracewright/locatorcore/internal/ports"
)

func TestHistory_SuccessRate_NoPriorIsZero(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, 0.0, h.SuccessRate("tab1", ports.DOMHandle{NodeID: "n1"}))
}

func TestHistory_SuccessRate_TracksPerTabAndHandle(t *testing.T) {
	h := NewHistory()
	handle := ports.DOMHandle{NodeID: "n1"}

	h.Record("tab1", handle, true)
	h.Record("tab1", handle, true)
	h.Record("tab1", handle, false)

	assert.InDelta(t, 2.0/3.0, h.SuccessRate("tab1", handle), 0.0001)
	assert.Equal(t, 0.0, h.SuccessRate("tab2", handle), "history must not leak across tabs")
}

func TestHistory_HistoryFnAdapter(t *testing.T) {
	h := NewHistory()
	handle := ports.DOMHandle{NodeID: "n1"}
	h.Record("tab1", handle, true)

	assert.Equal(t, 1.0, h.HistoryFn("tab1", handle))
}
