// builder.go — StrategyChainBuilder: selects 5-7 scored candidates into a
// diversity-optimized, deduplicated, confidence-sorted FallbackChain
// (spec.md §4.4).
package chain

import (
	"sort"

	"github.com/tracewright/locatorcore/internal/types"
)

// MinChainLength and MaxChainLength bound the built chain (spec.md §4.4
// "selects 5-7 strategies").
const (
	MinChainLength = 5
	MaxChainLength = 7
)

// scoredCandidate pairs a raw candidate with its effective confidence.
type scoredCandidate struct {
	strategy types.Strategy
	effective float64
}

// Builder assembles a FallbackChain from scored candidates.
type Builder struct{}

// Build selects and orders the chain. primary, when non-empty, must end up
// as chain[0] (spec.md §3 invariant, resolving the capture-vs-chain[0]
// discrepancy open question: chain[0] is always forced to the primary
// strategy used at capture time).
func (Builder) Build(candidates []types.Strategy, scores map[int]float64, primary types.Strategy) []types.Strategy {
	scored := make([]scoredCandidate, 0, len(candidates))
	for i, c := range candidates {
		eff := scores[i]
		if eff <= 0 {
			continue
		}
		sc := c
		sc.Confidence = eff
		scored = append(scored, scoredCandidate{strategy: sc, effective: eff})
	}

	deduped := dedupe(scored)
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].effective != deduped[j].effective {
			return deduped[i].effective > deduped[j].effective
		}
		return deduped[i].strategy.Kind.Category().Rank() < deduped[j].strategy.Kind.Category().Rank()
	})

	selected := selectDiverse(deduped)

	chain := make([]types.Strategy, 0, len(selected))
	for _, s := range selected {
		chain = append(chain, s.strategy)
	}

	return enforcePrimaryFirst(chain, primary)
}

// dedupe drops any candidate that is a SameCandidate of one already kept,
// preferring the earlier (by scan order, pre-sort) occurrence — callers
// pass pre-score order so the highest-confidence instance of a kind
// naturally appears first once sorted; dedupe runs before the sort so it
// only removes literal duplicates, not near-misses.
func dedupe(scored []scoredCandidate) []scoredCandidate {
	out := make([]scoredCandidate, 0, len(scored))
	for _, c := range scored {
		dup := false
		for _, kept := range out {
			if kept.strategy.SameCandidate(c.strategy) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// selectDiverse picks up to MaxChainLength candidates off the
// confidence-sorted list, first taking the best candidate of each broad
// category present in the pool so every category is represented at least
// once, then filling the remaining slots by confidence (spec.md §4.4 "each
// broad category ... appears at least once"). The selection is re-sorted
// by confidence, so where a category lands in the chain is not fixed.
func selectDiverse(sorted []scoredCandidate) []scoredCandidate {
	if len(sorted) <= MaxChainLength {
		return sorted
	}

	seenCategory := map[types.Category]bool{}
	var selected []scoredCandidate
	var remainder []scoredCandidate

	for _, c := range sorted {
		cat := c.strategy.Kind.Category()
		if !seenCategory[cat] && len(selected) < MaxChainLength {
			selected = append(selected, c)
			seenCategory[cat] = true
		} else {
			remainder = append(remainder, c)
		}
	}

	for _, c := range remainder {
		if len(selected) >= MaxChainLength {
			break
		}
		selected = append(selected, c)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].effective > selected[j].effective
	})

	return selected
}

// enforcePrimaryFirst moves the capture-time primary strategy to index 0,
// inserting it if the scorer dropped it (spec.md §3 invariant: chain[0]
// must equal the primary strategy). A moved or inserted primary has its
// confidence raised to the chain's top confidence so the chain stays
// sorted in non-increasing order.
func enforcePrimaryFirst(chainStrategies []types.Strategy, primary types.Strategy) []types.Strategy {
	if primary.Kind == "" {
		return chainStrategies
	}

	var top float64
	if len(chainStrategies) > 0 {
		top = chainStrategies[0].Confidence
	}

	for i, s := range chainStrategies {
		if s.SameCandidate(primary) {
			if i == 0 {
				return chainStrategies
			}
			if s.Confidence < top {
				s.Confidence = top
			}
			reordered := make([]types.Strategy, 0, len(chainStrategies))
			reordered = append(reordered, s)
			reordered = append(reordered, chainStrategies[:i]...)
			reordered = append(reordered, chainStrategies[i+1:]...)
			return reordered
		}
	}

	if primary.Confidence < top {
		primary.Confidence = top
	}
	combined := append([]types.Strategy{primary}, chainStrategies...)
	if len(combined) > MaxChainLength {
		combined = combined[:MaxChainLength]
	}
	return combined
}
