// dom.go — DOMCapture: builds a LocatorBundle from raw element info handed
// up by the host bridge (spec.md §4.1 DOMCapture).
//
// The core never touches the page itself (ports.go doc comment); a host
// bridge walks the live DOM and hands this package a RawElementInfo, which
// DOMCapture reduces to a stable, selector-ready LocatorBundle the same way
// the teacher's rrweb-to-selector conversion reduces a recorded node tree
// to a single best selector (see other_examples' NodeRegistry.GetSelector).
package capture

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tracewright/locatorcore/internal/types"
)

// dynamicTokenPatterns match class/id fragments that are almost certainly
// generated per-build or per-render and so are useless as a stable selector
// (spec.md §4.1 "Filters dynamic classes and ids by regex (Emotion/
// styled-components patterns, hash suffixes, UUIDs, numeric-only, React-style
// :r...:)").
var dynamicTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^css-[a-z0-9]+$`),             // Emotion
	regexp.MustCompile(`^sc-[A-Za-z0-9]+$`),            // styled-components
	regexp.MustCompile(`^[a-zA-Z-]+-[a-f0-9]{6,}$`),    // trailing hash suffix
	regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`), // UUID
	regexp.MustCompile(`^[0-9]+$`),                     // numeric-only
	regexp.MustCompile(`^:r[a-z0-9]+:$`),               // React useId()
	regexp.MustCompile(`^r[0-9]+$`),
}

// RawNode is one element in the ancestor chain the host bridge extracts for
// a captured target, innermost first (index 0 is the target itself).
type RawNode struct {
	TagName        string            `json:"tag_name"`
	ID             string            `json:"id,omitempty"`
	Classes        []string          `json:"classes,omitempty"`
	Name           string            `json:"name,omitempty"`
	TestID         string            `json:"test_id,omitempty"`
	Role           string            `json:"role,omitempty"`
	AriaLabel      string            `json:"aria_label,omitempty"`
	AriaLabelledBy string            `json:"aria_labelled_by,omitempty"`
	LabelText      string            `json:"label_text,omitempty"` // resolved text of an associated label[for]
	Placeholder    string            `json:"placeholder,omitempty"`
	Alt            string            `json:"alt,omitempty"`
	Title          string            `json:"title,omitempty"`
	Text           string            `json:"text,omitempty"`
	SiblingIndex   int               `json:"sibling_index,omitempty"` // 1-based position among same-tag siblings, for XPath
	DataAttributes map[string]string `json:"data_attributes,omitempty"`
}

// RawElementInfo is everything the host bridge hands DOMCapture for one
// captured target (spec.md §4.1 DOMCapture inputs).
type RawElementInfo struct {
	Chain           []RawNode            `json:"chain"` // target first, ancestors after
	Rect            types.Rect           `json:"rect"`
	Scroll          types.ScrollPosition `json:"scroll"`
	IframeChain     []int                `json:"iframe_chain,omitempty"` // frameElement walk, outermost last
	CrossOrigin     bool                 `json:"cross_origin,omitempty"` // true if the walk hit a cross-origin boundary
	ShadowHostChain []string             `json:"shadow_host_chain,omitempty"`
}

// DOMCapture reduces RawElementInfo into a stable LocatorBundle.
type DOMCapture struct {
	maxCSSPathDepth int
}

// NewDOMCapture constructs a DOMCapture with the given maximum CSS-path
// depth (spec.md §4.1 "unique minimal CSS path (<= configurable depth)").
func NewDOMCapture(maxCSSPathDepth int) *DOMCapture {
	if maxCSSPathDepth <= 0 {
		maxCSSPathDepth = 4
	}
	return &DOMCapture{maxCSSPathDepth: maxCSSPathDepth}
}

// Snapshot builds the DOMEvidence (LocatorBundle + XPath) for one action.
func (d *DOMCapture) Snapshot(info RawElementInfo) types.DOMEvidence {
	if len(info.Chain) == 0 {
		return types.DOMEvidence{}
	}
	target := info.Chain[0]

	bundle := types.LocatorBundle{
		TagName:        strings.ToLower(target.TagName),
		ID:             target.ID,
		Name:           target.Name,
		TestID:         target.TestID,
		ClassList:      filterDynamicClasses(target.Classes),
		Role:           target.Role,
		AccessibleName: accessibleName(target),
		Placeholder:    target.Placeholder,
		DataAttributes: target.DataAttributes,
		BoundingRect:   info.Rect,
		ScrollPosition: info.Scroll,
		TextContent:    target.Text,
		Frame: types.FrameLocator{
			IframeChain:     info.IframeChain,
			ShadowHostChain: info.ShadowHostChain,
		},
	}

	if info.CrossOrigin {
		// Fail closed: a cross-origin frame chain cannot be resolved by the
		// debugger protocol without an explicit grant, so we record that the
		// frame is unreachable rather than guess at an index.
		bundle.Frame.IframeChain = nil
	}

	bundle.Hints = deriveHints(info)

	return types.DOMEvidence{
		Bundle: bundle,
		XPath:  buildXPath(info.Chain),
	}
}

// PrimarySelector picks one CSS selector by priority: data-testid, then
// #id (if not dynamic), then tag[name], then the tag joined with the
// bundle's class list, then the bare tag. The result is a single selector
// segment: no ancestor path is built, uniqueness in the page is not
// checked, and maxDepth is not used.
func PrimarySelector(b types.LocatorBundle, maxDepth int) string {
	if b.TestID != "" {
		return fmt.Sprintf("[data-testid=%q]", b.TestID)
	}
	if b.ID != "" && !isDynamicToken(b.ID) {
		return "#" + b.ID
	}
	if b.Name != "" {
		return fmt.Sprintf("%s[name=%q]", b.TagName, b.Name)
	}
	if len(b.ClassList) > 0 {
		return fmt.Sprintf("%s.%s", b.TagName, strings.Join(b.ClassList, "."))
	}
	return b.TagName
}

// filterDynamicClasses drops class tokens that match a dynamic-generation
// pattern, preserving order of the remainder.
func filterDynamicClasses(classes []string) []string {
	kept := make([]string, 0, len(classes))
	for _, c := range classes {
		if c == "" || isDynamicToken(c) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func isDynamicToken(token string) bool {
	for _, re := range dynamicTokenPatterns {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// accessibleName follows the fallback chain aria-label -> aria-labelledby ->
// associated label[for] -> placeholder -> alt -> element text (spec.md
// §4.1 DOMCapture).
func accessibleName(n RawNode) string {
	switch {
	case n.AriaLabel != "":
		return n.AriaLabel
	case n.AriaLabelledBy != "":
		return n.AriaLabelledBy
	case n.LabelText != "":
		return n.LabelText
	case n.Placeholder != "":
		return n.Placeholder
	case n.Alt != "":
		return n.Alt
	default:
		return truncate(n.Text, 80)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// buildXPath constructs a position-based XPath using 1-based sibling
// indices and tag-name segments, outermost ancestor first (spec.md §4.1
// "A position-based XPath fallback").
func buildXPath(chain []RawNode) string {
	segments := make([]string, len(chain))
	for i, n := range chain {
		tag := strings.ToLower(n.TagName)
		idx := n.SiblingIndex
		if idx <= 0 {
			idx = 1
		}
		segments[len(chain)-1-i] = fmt.Sprintf("%s[%d]", tag, idx)
	}
	return "/" + strings.Join(segments, "/")
}

// deriveHints produces the context hints evidence_scoring and actionability
// use to bias candidate scoring (spec.md §4.2 Resolver special cases).
func deriveHints(info RawElementInfo) types.ContextHints {
	hints := types.ContextHints{}
	for _, n := range info.Chain {
		lower := strings.ToLower(n.TagName)
		classStr := strings.ToLower(strings.Join(n.Classes, " "))
		if lower == "textarea" || strings.Contains(classStr, "editor") || strings.Contains(classStr, "monaco") || strings.Contains(classStr, "cm-") {
			hints.IsEditor = true
		}
		if strings.Contains(classStr, "terminal") || strings.Contains(classStr, "xterm") {
			hints.IsTerminal = true
		}
		if strings.Contains(classStr, "chat") || strings.Contains(classStr, "message") {
			hints.IsChatLike = true
		}
		if hints.NearestContainerCSS == "" && (n.ID != "" || len(n.Classes) > 0) {
			hints.NearestContainerCSS = PrimarySelector(types.LocatorBundle{
				TagName:   lower,
				ID:        n.ID,
				ClassList: filterDynamicClasses(n.Classes),
			}, 1)
		}
	}
	return hints
}
