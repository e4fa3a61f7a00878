// filter.go — EventFilter: rejects events that should never become an
// Action (spec.md §4.2 Filter).
package resolve

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tracewright/locatorcore/internal/ports"
)

// EventKind is the raw browser event kind Filter/Resolver operate on,
// distinct from types.ActionKind which names the higher-level Action a
// filtered-and-resolved event becomes.
type EventKind string

const (
	EventClick     EventKind = "click"
	EventInput     EventKind = "input"
	EventKeydown   EventKind = "keydown"
	EventChange    EventKind = "change"
)

// DefaultDebounceMs matches duplicate events within this window
// (spec.md §4.2 "duplicate events within debounceMs").
const DefaultDebounceMs = 250

// RawEvent is the event + ancestor chain the host bridge hands EventFilter.
type RawEvent struct {
	Trusted   bool            `json:"trusted"`
	Kind      EventKind       `json:"kind"`
	Chain     []CandidateNode `json:"chain"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Timestamp time.Time       `json:"timestamp"`
}

// blockedSelectorMarkers are substrings of tag name or class that mark an element
// as UI chrome never worth recording (spec.md §4.2 "scrollbars, resize
// handles, decorative aria-hidden").
var blockedSelectorMarkers = []string{"scrollbar", "resize-handle", "resizer"}

// Filter rejects synthetic events, blocked/invisible elements, and
// duplicates within a debounce window.
type Filter struct {
	mu          sync.Mutex
	debounce    time.Duration
	clock       ports.Clock
	lastKey     string
	lastAt      time.Time
}

// NewFilter constructs a Filter with the default debounce window.
func NewFilter(clock ports.Clock) *Filter {
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &Filter{debounce: DefaultDebounceMs * time.Millisecond, clock: clock}
}

// Accept reports whether ev should proceed to TargetResolver, and why not
// if it shouldn't (spec.md §4.2 Filter rules, evaluated in order).
func (f *Filter) Accept(ev RawEvent) (bool, string) {
	if !ev.Trusted {
		return false, "untrusted_event"
	}
	if len(ev.Chain) == 0 {
		return false, "no_target"
	}

	target := ev.Chain[0]

	if isBlocked(target) {
		return false, "blocked_selector"
	}
	if !target.Visible {
		return false, "invisible_target"
	}
	if target.AriaHidden {
		return false, "aria_hidden"
	}

	if ev.Kind == EventClick && !f.clickable(ev.Chain) {
		return false, "non_interactive_click"
	}

	if f.isDuplicate(ev) {
		return false, "debounced_duplicate"
	}

	return true, ""
}

// clickable reports whether a click target is interactive somewhere in its
// chain, or has cursor:pointer, or sits inside a terminal/editor container
// (spec.md §4.2 "rejects non-interactive elements unless they have
// cursor: pointer or lie inside a terminal/editor container").
func (f *Filter) clickable(chain []CandidateNode) bool {
	for _, n := range chain {
		if isInteractive(n) || n.CursorPointer {
			return true
		}
		lc := strings.ToLower(strings.Join(n.Classes, " "))
		if strings.Contains(lc, "terminal") || strings.Contains(lc, "xterm") ||
			strings.Contains(lc, "editor") || strings.Contains(lc, "monaco") || strings.Contains(lc, "cm-") {
			return true
		}
	}
	return false
}

func isBlocked(n CandidateNode) bool {
	lc := strings.ToLower(strings.Join(append([]string{n.TagName}, n.Classes...), " "))
	for _, marker := range blockedSelectorMarkers {
		if strings.Contains(lc, marker) {
			return true
		}
	}
	return false
}

// isDuplicate checks the debounce key (eventKind + tag + id + rounded
// coords) against the last accepted event (spec.md §4.2).
func (f *Filter) isDuplicate(ev RawEvent) bool {
	key := debounceKey(ev)

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	dup := key == f.lastKey && now.Sub(f.lastAt) < f.debounce
	f.lastKey = key
	f.lastAt = now
	return dup
}

func debounceKey(ev RawEvent) string {
	target := ev.Chain[0]
	return fmt.Sprintf("%s|%s|%s|%d|%d", ev.Kind, target.TagName, target.ID, int(ev.X/4), int(ev.Y/4))
}
