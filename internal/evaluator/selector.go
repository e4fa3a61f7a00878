// selector.go — dom_selector / css_selector evaluator: try id, then
// [data-testid], then [name], then a unique class set, then a CSS path,
// falling back to the recorded XPath last (spec.md §4.3).
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// SelectorEvaluator handles both StrategyDOMSelector and
// StrategyCSSSelector: the two differ only in which candidate selector
// they were built from at capture time, not in how they resolve.
type SelectorEvaluator struct{}

func (SelectorEvaluator) HandledKinds() []types.StrategyKind {
	return []types.StrategyKind{types.StrategyDOMSelector, types.StrategyCSSSelector}
}

func (e SelectorEvaluator) Evaluate(ctx context.Context, ec EvaluationContext, action types.Action, strategy types.Strategy) Result {
	return timed(ec.Clock, func() Result {
		if ec.CDP == nil {
			return failClosed(types.ErrCDPNotAttached)
		}

		bundle := action.LocatorBundle
		candidates := candidateSelectors(bundle)

		for _, css := range candidates {
			handles, err := ec.CDP.QuerySelector(ctx, ec.TabID, css)
			if err != nil {
				continue
			}
			if len(handles) == 1 {
				return Result{Found: true, Confidence: strategy.Confidence, Handle: handles[0], MatchCount: 1}
			}
			if len(handles) > 1 {
				// Non-unique candidates are demoted, not used outright
				// (spec.md §4.3 "non-unique candidates are demoted or dropped").
				continue
			}
		}

		// XPath is the last resort within this evaluator, using the
		// position-based path recorded at capture time.
		if xpath := action.Evidence.DOM; xpath != nil && xpath.XPath != "" {
			handles, err := ec.CDP.QueryXPath(ctx, ec.TabID, xpath.XPath)
			if err == nil && len(handles) == 1 {
				return Result{Found: true, Confidence: strategy.Confidence * 0.9, Handle: handles[0], MatchCount: 1}
			}
		}

		return failClosed(types.ErrElementNotFound)
	})
}

// candidateSelectors produces the ordered list of CSS selectors to try,
// each required to be uniquely resolving (spec.md §4.3 dom_selector rules).
func candidateSelectors(b types.LocatorBundle) []string {
	var out []string
	if b.ID != "" {
		out = append(out, "#"+cssEscape(b.ID))
	}
	if b.TestID != "" {
		out = append(out, fmt.Sprintf("[data-testid=%q]", b.TestID))
	}
	if b.Name != "" {
		out = append(out, fmt.Sprintf("%s[name=%q]", b.TagName, b.Name))
	}
	if len(b.ClassList) > 0 {
		out = append(out, b.TagName+"."+strings.Join(b.ClassList, "."))
	}
	out = append(out, buildCSSPath(b))
	return out
}

// buildCSSPath renders a minimal descendant path using the bundle's
// container hint, when one was recorded, else just the tag.
func buildCSSPath(b types.LocatorBundle) string {
	if b.Hints.NearestContainerCSS != "" {
		return b.Hints.NearestContainerCSS + " " + b.TagName
	}
	return b.TagName
}

func cssEscape(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r == ':' || r == '.' || r == '[' || r == ']' || r == '(' || r == ')':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
