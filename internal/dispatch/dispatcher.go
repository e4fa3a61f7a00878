// dispatcher.go — ActionDispatcher: maps a recorded Action onto the
// host's InputSynthesisPort (spec.md §4.7, §6 ACTION_DISPATCH).
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// Dispatcher performs the primitive action on a resolved handle. The
// actual input synthesis — trusted mouse-event sequences, the
// prototype-level value-setter bypass for reactive frameworks, key-event
// sequences — is a host concern (spec.md §9 Design Notes); Dispatcher's
// job is choosing the right DispatchKind and value.
type Dispatcher struct {
	Port ports.InputSynthesisPort
}

// NewDispatcher constructs a Dispatcher bound to one InputSynthesisPort.
func NewDispatcher(port ports.InputSynthesisPort) *Dispatcher {
	return &Dispatcher{Port: port}
}

// Dispatch performs action against handle. When the resolved handle is a
// native <select> and the action is an input, it dispatches as select
// rather than type — per spec.md §4.7 "select: finds the native select by
// unwrapping dropdown widgets" — the unwrapping itself happens upstream in
// TargetResolver/evaluators; by the time a handle reaches Dispatch it
// already names the native element.
func (d *Dispatcher) Dispatch(ctx context.Context, tabID string, handle ports.DOMHandle, action types.Action) error {
	if d.Port == nil {
		return fmt.Errorf("dispatch: no InputSynthesisPort configured")
	}

	kind, err := dispatchKindFor(action, handle)
	if err != nil {
		return err
	}

	return d.Port.Dispatch(ctx, tabID, handle, kind, action.Value)
}

func dispatchKindFor(action types.Action, handle ports.DOMHandle) (ports.DispatchKind, error) {
	switch action.Kind {
	case types.ActionClick:
		return ports.DispatchClick, nil
	case types.ActionInput:
		if strings.EqualFold(handle.TagName, "select") {
			return ports.DispatchSelect, nil
		}
		return ports.DispatchType, nil
	case types.ActionEnter:
		return ports.DispatchEnter, nil
	case types.ActionKeypress:
		return ports.DispatchKeypress, nil
	default:
		return "", fmt.Errorf("dispatch: action kind %q has no primitive dispatch", action.Kind)
	}
}
