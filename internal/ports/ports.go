// Package ports defines the boundary interfaces the core depends on but
// never implements: screenshot/OCR transport, the debugger protocol,
// input synthesis, and network interception (spec.md §1 Out of scope,
// §6 External interfaces, §9 Design Notes).
//
// The core never calls a browser or OS directly. Every side effect that
// crosses into "the page" or "the host extension" is expressed as a call
// on one of these interfaces, so the replay/capture logic in the rest of
// this module can be exercised in tests with fakes.
package ports

import (
	"context"
	"time"

	"github.com/tracewright/locatorcore/internal/types"
)

// Envelope is the message-oriented success/error wrapper every host RPC
// uses (spec.md §6): {ok: true, data} or {ok: false, errorKind, message}.
type Envelope struct {
	OK        bool          `json:"ok"`
	Data      any           `json:"data,omitempty"`
	ErrorKind types.ErrorKind `json:"error_kind,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// OK constructs a success envelope.
func OK(data any) Envelope { return Envelope{OK: true, Data: data} }

// Err constructs a failure envelope.
func Err(kind types.ErrorKind, message string) Envelope {
	return Envelope{OK: false, ErrorKind: kind, Message: message}
}

// Screenshot is the result of CAPTURE_SCREENSHOT.
type Screenshot struct {
	Format string // "png" | "jpeg"
	Base64 string
}

// OCRWord is one recognized word with its own bounding box, part of
// RUN_OCR's result (spec.md §6).
type OCRWord struct {
	Text       string
	Confidence int
	BBox       types.Rect
}

// OCRResult is the result of RUN_OCR.
type OCRResult struct {
	Text       string
	Confidence int // 0-100
	BBox       types.Rect
	Words      []OCRWord
}

// VisionPort captures screenshots and runs OCR. Owned by exactly one
// component per spec.md §5 Shared-resource policy; commands are serialized
// by the implementation.
type VisionPort interface {
	CaptureScreenshot(ctx context.Context, tabID string, format string, quality int) (Screenshot, error)
	RunOCR(ctx context.Context, image Screenshot, region *types.Rect, language string) (OCRResult, error)
}

// AXNode is one accessibility-tree node as seen through the debugger
// protocol, enough for cdp_semantic to match role + accessible name.
type AXNode struct {
	NodeID         string
	Role           string
	AccessibleName string
	BackendDOMNode string
}

// DOMHandle identifies a located element in the live page without
// exposing a concrete DOM type; evaluators/dispatcher treat it opaquely.
type DOMHandle struct {
	NodeID     string
	TagName    string
	Rect       types.Rect
	FrameChain []int
}

// CDPSession is the debugger-protocol connection for one tab. Commands to
// it are serialized FIFO by the implementation (spec.md §5).
type CDPSession interface {
	Attach(ctx context.Context, tabID string) error
	Detach(ctx context.Context, tabID string) error
	QueryAXTree(ctx context.Context, tabID string) ([]AXNode, error)
	QuerySelector(ctx context.Context, tabID, cssSelector string) ([]DOMHandle, error)
	QueryXPath(ctx context.Context, tabID, xpath string) ([]DOMHandle, error)
	ResolveAXNode(ctx context.Context, tabID string, backendDOMNode string) (DOMHandle, error)
	BoundingBox(ctx context.Context, tabID string, handle DOMHandle) (types.Rect, error)
	Actionable(ctx context.Context, tabID string, handle DOMHandle) (attached, visible, enabled, inViewport bool, err error)
}

// DispatchKind is the primitive action ActionDispatcher performs
// (spec.md §4.7).
type DispatchKind string

const (
	DispatchClick    DispatchKind = "click"
	DispatchType     DispatchKind = "type"
	DispatchEnter    DispatchKind = "enter"
	DispatchKeypress DispatchKind = "keypress"
	DispatchSelect   DispatchKind = "select"
)

// InputSynthesisPort performs a primitive input action on a resolved
// handle (spec.md §6 ACTION_DISPATCH, §4.7 ActionDispatcher, §9 Design
// Notes — prototype-level value-setter bypass is a host concern).
type InputSynthesisPort interface {
	Dispatch(ctx context.Context, tabID string, handle DOMHandle, kind DispatchKind, value string) error
}

// NetworkInterceptorPort hooks fetch/XHR to feed NetworkCapture
// (spec.md §4.1 NetworkCapture, §9 Design Notes).
type NetworkInterceptorPort interface {
	Start(ctx context.Context, tabID string) (<-chan types.NetworkRequestSample, error)
	Stop(ctx context.Context, tabID string) error
}

// Clock abstracts time.Now/time.After so evaluators and Actionability can
// be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock is the production Clock backed by the standard library.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
