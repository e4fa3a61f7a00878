// action.go — Action: one recorded user interaction with its fallback chain.
package types

import "sort"

// ActionKind is the kind of user interaction recorded (spec.md §3).
type ActionKind string

const (
	ActionOpen     ActionKind = "open"
	ActionClick    ActionKind = "click"
	ActionInput    ActionKind = "input"
	ActionEnter    ActionKind = "enter"
	ActionKeypress ActionKind = "keypress"
)

// Action is one recorded user interaction, owning its fallback chain and
// evidence (spec.md §3 Action, Ownership).
type Action struct {
	StepNumber int        `json:"step_number"`
	TimestampMs int64      `json:"timestamp_ms"`
	Kind        ActionKind `json:"kind"`
	Value       string     `json:"value,omitempty"`

	LocatorBundle LocatorBundle `json:"locator_bundle,omitempty"`
	Evidence      Evidence      `json:"evidence,omitempty"`
	FallbackChain []Strategy    `json:"fallback_chain,omitempty"`
}

// PrimaryStrategy returns the chain's first (highest-confidence) entry.
// spec.md §3 invariant: fallbackChain[0] is the primary strategy.
func (a Action) PrimaryStrategy() (Strategy, bool) {
	if len(a.FallbackChain) == 0 {
		return Strategy{}, false
	}
	return a.FallbackChain[0], true
}

// ChainIsSorted reports whether FallbackChain is sorted strictly
// non-increasing by confidence (spec.md §8 universal invariant).
func (a Action) ChainIsSorted() bool {
	return sort.SliceIsSorted(a.FallbackChain, func(i, j int) bool {
		return a.FallbackChain[i].Confidence > a.FallbackChain[j].Confidence
	})
}

// ChainHasDuplicates reports whether any two chain entries share an
// identical (kind, metadata) pair (spec.md §3 invariant).
func (a Action) ChainHasDuplicates() bool {
	for i := 0; i < len(a.FallbackChain); i++ {
		for j := i + 1; j < len(a.FallbackChain); j++ {
			if a.FallbackChain[i].SameCandidate(a.FallbackChain[j]) {
				return true
			}
		}
	}
	return false
}

// RequiresFallbackChain reports whether this action kind must carry a
// non-empty chain. Every action except "open" navigations does.
func (k ActionKind) RequiresFallbackChain() bool {
	return k != ActionOpen
}
