// resolver.go — TargetResolver: walks a non-interactive target up to the
// element that should actually be captured (spec.md §4.2 Resolver).
package resolve

// Resolve returns the index into chain of the element that should be
// captured. chain[0] is the raw event target; later entries are ancestors.
//
// Checks in order (spec.md §4.2): a Select2-style wrapper resolves to its
// paired native <select>; an interactive target resolves to itself; any
// other target, SVG shapes and icon-class elements included, walks to its
// nearest interactive ancestor; failing that, an unlabeled target walks to
// the nearest ancestor that has an accessible name.
func Resolve(chain []CandidateNode) int {
	if len(chain) == 0 {
		return -1
	}

	target := chain[0]

	if target.IsSelect2Wrapper && target.PairedSelectID != "" {
		// The paired <select> isn't necessarily in the ancestor chain; the
		// caller substitutes it by ID. Signal this by returning 0 with the
		// wrapper's PairedSelectID left for DOMCapture to prefer over the
		// wrapper's own attributes.
		return 0
	}

	if isInteractive(target) {
		return 0
	}

	if target.IsSVGShape || hasIconClass(target) {
		if idx := nearestInteractiveAncestor(chain); idx >= 0 {
			return idx
		}
	}

	if idx := nearestInteractiveAncestor(chain); idx >= 0 {
		return idx
	}

	if !target.HasAccessibleName {
		if idx := nearestLabeledAncestor(chain); idx >= 0 {
			return idx
		}
	}

	// No interactive ancestor found; fall back to the original target
	// rather than dropping the action.
	return 0
}

func nearestInteractiveAncestor(chain []CandidateNode) int {
	for i := 1; i < len(chain); i++ {
		if isInteractive(chain[i]) {
			return i
		}
	}
	return -1
}

func nearestLabeledAncestor(chain []CandidateNode) int {
	for i := 1; i < len(chain); i++ {
		if chain[i].HasAccessibleName {
			return i
		}
	}
	return -1
}
