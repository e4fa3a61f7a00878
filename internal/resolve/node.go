// node.go — CandidateNode: the ancestor-chain element shape Filter and
// Resolver both operate on.
package resolve

import "strings"

// CandidateNode is one element in a target's ancestor chain, as extracted
// by the host bridge. Index 0 of a chain is always the raw event target;
// later entries walk up toward the document root.
type CandidateNode struct {
	TagName           string   `json:"tag_name"`
	ID                string   `json:"id,omitempty"`
	Classes           []string `json:"classes,omitempty"`
	Role              string   `json:"role,omitempty"`
	Visible           bool     `json:"visible"`        // computed style says this element renders
	CursorPointer     bool     `json:"cursor_pointer"` // computed style cursor === 'pointer'
	HasOnClick        bool     `json:"has_on_click"`
	HasTabIndex       bool     `json:"has_tab_index"`
	ContentEditable   bool     `json:"content_editable"`
	AriaHidden        bool     `json:"aria_hidden"`
	IsSVGShape        bool     `json:"is_svg_shape"` // <path>/<g> inside an <svg>
	IsSelect2Wrapper  bool     `json:"is_select2_wrapper"`
	PairedSelectID    string   `json:"paired_select_id,omitempty"` // native <select> id a Select2 wrapper decorates
	HasAccessibleName bool     `json:"has_accessible_name"`
}

var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true, "textarea": true,
	"option": true, "summary": true, "details": true, "label": true,
}

var interactiveRoles = map[string]bool{
	"button": true, "link": true, "checkbox": true, "radio": true, "tab": true,
	"menuitem": true, "switch": true, "textbox": true, "combobox": true, "slider": true,
}

var iconClassMarkers = []string{"codicon", "material-icon", "material-icons", "fa-", "icon-", "glyphicon"}

func isInteractive(n CandidateNode) bool {
	if interactiveTags[strings.ToLower(n.TagName)] {
		return true
	}
	if interactiveRoles[strings.ToLower(n.Role)] {
		return true
	}
	return n.HasOnClick || n.HasTabIndex || n.ContentEditable
}

func hasIconClass(n CandidateNode) bool {
	for _, c := range n.Classes {
		lc := strings.ToLower(c)
		for _, marker := range iconClassMarkers {
			if strings.Contains(lc, marker) {
				return true
			}
		}
	}
	return false
}
