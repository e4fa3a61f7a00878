package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

type recordingPort struct {
	kind  ports.DispatchKind
	value string
	err   error
}

func (p *recordingPort) Dispatch(ctx context.Context, tabID string, handle ports.DOMHandle, kind ports.DispatchKind, value string) error {
	p.kind = kind
	p.value = value
	return p.err
}

func TestDispatcher_ClickMapsToDispatchClick(t *testing.T) {
	port := &recordingPort{}
	d := NewDispatcher(port)
	err := d.Dispatch(context.Background(), "tab", ports.DOMHandle{TagName: "button"}, types.Action{Kind: types.ActionClick})
	require.NoError(t, err)
	assert.Equal(t, ports.DispatchClick, port.kind)
}

func TestDispatcher_InputOnSelectDispatchesSelect(t *testing.T) {
	port := &recordingPort{}
	d := NewDispatcher(port)
	err := d.Dispatch(context.Background(), "tab", ports.DOMHandle{TagName: "select"}, types.Action{Kind: types.ActionInput, Value: "opt2"})
	require.NoError(t, err)
	assert.Equal(t, ports.DispatchSelect, port.kind)
	assert.Equal(t, "opt2", port.value)
}

func TestDispatcher_InputOnOtherTagDispatchesType(t *testing.T) {
	port := &recordingPort{}
	d := NewDispatcher(port)
	err := d.Dispatch(context.Background(), "tab", ports.DOMHandle{TagName: "input"}, types.Action{Kind: types.ActionInput, Value: "hi"})
	require.NoError(t, err)
	assert.Equal(t, ports.DispatchType, port.kind)
}

func TestDispatcher_EnterAndKeypress(t *testing.T) {
	port := &recordingPort{}
	d := NewDispatcher(port)

	require.NoError(t, d.Dispatch(context.Background(), "tab", ports.DOMHandle{}, types.Action{Kind: types.ActionEnter}))
	assert.Equal(t, ports.DispatchEnter, port.kind)

	require.NoError(t, d.Dispatch(context.Background(), "tab", ports.DOMHandle{}, types.Action{Kind: types.ActionKeypress}))
	assert.Equal(t, ports.DispatchKeypress, port.kind)
}

func TestDispatcher_UnsupportedKindErrors(t *testing.T) {
	d := NewDispatcher(&recordingPort{})
	err := d.Dispatch(context.Background(), "tab", ports.DOMHandle{}, types.Action{Kind: types.ActionOpen})
	assert.Error(t, err)
}

func TestDispatcher_NoPortErrors(t *testing.T) {
	d := NewDispatcher(nil)
	err := d.Dispatch(context.Background(), "tab", ports.DOMHandle{}, types.Action{Kind: types.ActionClick})
	assert.Error(t, err)
}
