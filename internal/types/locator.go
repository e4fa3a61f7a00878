// locator.go — LocatorBundle: the record-time element description.
package types

// Rect is a viewport-relative bounding rectangle, captured at record time
// or observed live during replay.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Point is a 2D viewport-relative coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScrollPosition is the page scroll offset at the moment of capture.
type ScrollPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Delta returns the offset between this scroll position and another,
// used for scroll-compensated distance (spec.md §4.3, §8).
func (s ScrollPosition) Delta(other ScrollPosition) (float64, float64) {
	return s.X - other.X, s.Y - other.Y
}

// FrameLocator names the path from the top frame down to the element's
// owning document/shadow root (spec.md §9 Design Notes).
type FrameLocator struct {
	IframeChain     []int    `json:"iframe_chain,omitempty"`
	ShadowHostChain []string `json:"shadow_host_chain,omitempty"`
}

// ContextHints are cheap booleans the DOM capture layer derives about the
// element's surrounding container, used by the evidence scorer's visual axis.
type ContextHints struct {
	IsTerminal         bool   `json:"is_terminal,omitempty"`
	IsEditor           bool   `json:"is_editor,omitempty"`
	IsChatLike         bool   `json:"is_chat_like,omitempty"`
	NearestContainerCSS string `json:"nearest_container_css,omitempty"`
}

// LocatorBundle is the element snapshot captured at record time. Most
// evaluators consume it to describe a foreign-DOM search (spec.md §3).
type LocatorBundle struct {
	TagName        string            `json:"tag_name"`
	ID             string            `json:"id,omitempty"`
	Name           string            `json:"name,omitempty"`
	TestID         string            `json:"test_id,omitempty"`
	ClassList      []string          `json:"class_list,omitempty"`
	Role           string            `json:"role,omitempty"`
	AccessibleName string            `json:"accessible_name,omitempty"`
	Placeholder    string            `json:"placeholder,omitempty"`
	DataAttributes map[string]string `json:"data_attributes,omitempty"`

	BoundingRect   Rect           `json:"bounding_rect"`
	ScrollPosition ScrollPosition `json:"scroll_position"`

	Frame FrameLocator `json:"frame,omitempty"`

	TextContent string `json:"text_content,omitempty"`

	Hints ContextHints `json:"hints,omitempty"`
}

// Label returns a short human-meaningful name for the bundle, used as one
// token in a SequencePattern's learned label window (spec.md §4.8):
// accessible name first, falling back to trimmed text content, then the
// tag name, so any non-empty bundle always yields a non-empty label.
func (b LocatorBundle) Label() string {
	switch {
	case b.AccessibleName != "":
		return b.AccessibleName
	case b.TextContent != "":
		return b.TextContent
	default:
		return b.TagName
	}
}
