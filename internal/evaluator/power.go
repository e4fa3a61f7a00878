// power.go — cdp_power evaluator: boolean predicates over text content,
// aria-label, placeholder, and test-id (spec.md §4.3). Alt and title are
// not matched.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracewright/locatorcore/internal/types"
)

// PowerEvaluator handles StrategyCDPPower.
type PowerEvaluator struct{}

func (PowerEvaluator) HandledKinds() []types.StrategyKind {
	return []types.StrategyKind{types.StrategyCDPPower}
}

func (e PowerEvaluator) Evaluate(ctx context.Context, ec EvaluationContext, action types.Action, strategy types.Strategy) Result {
	return timed(ec.Clock, func() Result {
		if ec.CDP == nil {
			return failClosed(types.ErrCDPNotAttached)
		}

		bundle := action.LocatorBundle
		exact, _ := strategy.Metadata["exact"].(bool)

		for _, predicate := range powerPredicates(bundle) {
			css := attributeSelector(bundle.TagName, predicate.attr, predicate.value, exact)
			handles, err := ec.CDP.QuerySelector(ctx, ec.TabID, css)
			if err != nil || len(handles) != 1 {
				continue
			}
			return Result{Found: true, Confidence: strategy.Confidence, Handle: handles[0], MatchCount: 1}
		}

		return failClosed(types.ErrElementNotFound)
	})
}

type powerPredicate struct {
	attr  string
	value string
}

// powerPredicates orders the boolean predicates cdp_power tries: text
// content, aria-label (the recorded accessible name), placeholder,
// test-id. No alt or title predicate is produced.
func powerPredicates(b types.LocatorBundle) []powerPredicate {
	var preds []powerPredicate
	if b.TextContent != "" {
		preds = append(preds, powerPredicate{"text", b.TextContent})
	}
	if b.AccessibleName != "" {
		preds = append(preds, powerPredicate{"aria-label", b.AccessibleName})
	}
	if b.Placeholder != "" {
		preds = append(preds, powerPredicate{"placeholder", b.Placeholder})
	}
	if b.TestID != "" {
		preds = append(preds, powerPredicate{"data-testid", b.TestID})
	}
	return preds
}

// attributeSelector renders a CSS attribute selector, or for "text" a
// :contains()-style pseudo that the CDPSession implementation resolves via
// a scripted expression rather than native CSS (spec.md §4.3 "evaluated by
// scripted expression in the page or by CSS attribute selectors").
func attributeSelector(tag, attr, value string, exact bool) string {
	op := "*="
	if exact {
		op = "="
	}
	if attr == "text" {
		return fmt.Sprintf("%s:contains(%s%q)", tag, op, value)
	}
	if exact {
		return fmt.Sprintf("%s[%s%s%q]", tag, attr, op, value)
	}
	return fmt.Sprintf("%s[%s%s%q i]", tag, attr, op, strings.ToLower(value))
}
