package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time                  { return c.now }
func (c *stepClock) After(d time.Duration) <-chan time.Time { ch := make(chan time.Time, 1); ch <- c.now.Add(d); return ch }

func TestFilter_RejectsUntrustedEvent(t *testing.T) {
	f := NewFilter(nil)
	ok, reason := f.Accept(RawEvent{Trusted: false, Kind: EventClick, Chain: []CandidateNode{{TagName: "button", Visible: true}}})
	assert.False(t, ok)
	assert.Equal(t, "untrusted_event", reason)
}

func TestFilter_RejectsInvisibleTarget(t *testing.T) {
	f := NewFilter(nil)
	ok, reason := f.Accept(RawEvent{Trusted: true, Kind: EventClick, Chain: []CandidateNode{{TagName: "button", Visible: false}}})
	assert.False(t, ok)
	assert.Equal(t, "invisible_target", reason)
}

func TestFilter_RejectsBlockedSelector(t *testing.T) {
	f := NewFilter(nil)
	ok, reason := f.Accept(RawEvent{Trusted: true, Kind: EventClick, Chain: []CandidateNode{{TagName: "div", Classes: []string{"scrollbar-thumb"}, Visible: true}}})
	assert.False(t, ok)
	assert.Equal(t, "blocked_selector", reason)
}

func TestFilter_RejectsNonInteractiveClickWithoutPointerOrContainer(t *testing.T) {
	f := NewFilter(nil)
	ok, reason := f.Accept(RawEvent{Trusted: true, Kind: EventClick, Chain: []CandidateNode{{TagName: "div", Visible: true}}})
	assert.False(t, ok)
	assert.Equal(t, "non_interactive_click", reason)
}

func TestFilter_AcceptsClickWithCursorPointer(t *testing.T) {
	f := NewFilter(nil)
	ok, _ := f.Accept(RawEvent{Trusted: true, Kind: EventClick, Chain: []CandidateNode{{TagName: "div", Visible: true, CursorPointer: true}}})
	assert.True(t, ok)
}

func TestFilter_AcceptsClickInsideEditorContainer(t *testing.T) {
	f := NewFilter(nil)
	chain := []CandidateNode{
		{TagName: "span", Visible: true},
		{TagName: "div", Visible: true, Classes: []string{"monaco-editor"}},
	}
	ok, _ := f.Accept(RawEvent{Trusted: true, Kind: EventClick, Chain: chain})
	assert.True(t, ok)
}

func TestFilter_DebouncesDuplicateWithinWindow(t *testing.T) {
	clk := &stepClock{now: time.Unix(0, 0)}
	f := NewFilter(clk)

	ev := RawEvent{Trusted: true, Kind: EventClick, X: 10, Y: 10, Chain: []CandidateNode{{TagName: "button", Visible: true}}}
	ok1, _ := f.Accept(ev)
	clk.now = clk.now.Add(50 * time.Millisecond)
	ok2, reason2 := f.Accept(ev)

	assert.True(t, ok1)
	assert.False(t, ok2)
	assert.Equal(t, "debounced_duplicate", reason2)
}

func TestFilter_AllowsRepeatAfterDebounceWindow(t *testing.T) {
	clk := &stepClock{now: time.Unix(0, 0)}
	f := NewFilter(clk)

	ev := RawEvent{Trusted: true, Kind: EventClick, X: 10, Y: 10, Chain: []CandidateNode{{TagName: "button", Visible: true}}}
	f.Accept(ev)
	clk.now = clk.now.Add(DefaultDebounceMs*time.Millisecond + time.Millisecond)
	ok, _ := f.Accept(ev)
	assert.True(t, ok)
}
