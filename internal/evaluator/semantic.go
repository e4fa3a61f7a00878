// semantic.go — cdp_semantic evaluator: matches accessibility-tree nodes by
// role + accessible name (spec.md §4.3).
package evaluator

import (
	"context"
	"strings"

	"github.com/tracewright/locatorcore/internal/types"
)

// implicitRoleByTag is the fixed mapping used when the recorded bundle has
// no explicit role (spec.md §4.3 "fall back to implicit role from tag name
// using a fixed mapping").
var implicitRoleByTag = map[string]string{
	"button":   "button",
	"a":        "link",
	"input":    "textbox",
	"textarea": "textbox",
	"select":   "combobox",
	"summary":  "button",
	"option":   "option",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
}

// SemanticEvaluator handles StrategyCDPSemantic.
type SemanticEvaluator struct{}

func (SemanticEvaluator) HandledKinds() []types.StrategyKind {
	return []types.StrategyKind{types.StrategyCDPSemantic}
}

func (e SemanticEvaluator) Evaluate(ctx context.Context, ec EvaluationContext, action types.Action, strategy types.Strategy) Result {
	return timed(ec.Clock, func() Result {
		if ec.CDP == nil {
			return failClosed(types.ErrCDPNotAttached)
		}

		bundle := action.LocatorBundle
		role := bundle.Role
		if role == "" {
			role = implicitRoleByTag[strings.ToLower(bundle.TagName)]
		}
		name := bundle.AccessibleName
		exact, _ := strategy.Metadata["exact"].(bool)

		nodes, err := ec.CDP.QueryAXTree(ctx, ec.TabID)
		if err != nil {
			return failClosed(types.ErrCDPTimeout)
		}

		var matches []string
		for _, n := range nodes {
			if role != "" && !strings.EqualFold(n.Role, role) {
				continue
			}
			if !nameMatches(n.AccessibleName, name, exact) {
				continue
			}
			matches = append(matches, n.BackendDOMNode)
		}

		if len(matches) != 1 {
			return Result{Found: false, MatchCount: len(matches), ErrorKind: types.ErrElementNotFound}
		}

		handle, err := ec.CDP.ResolveAXNode(ctx, ec.TabID, matches[0])
		if err != nil {
			return failClosed(types.ErrElementNotFound)
		}
		return Result{Found: true, Confidence: strategy.Confidence, Handle: handle, MatchCount: 1}
	})
}

func nameMatches(candidate, recorded string, exact bool) bool {
	if recorded == "" {
		return true
	}
	if exact {
		return strings.EqualFold(candidate, recorded)
	}
	return strings.Contains(strings.ToLower(candidate), strings.ToLower(recorded))
}
