// sequence.go — SequencePattern: a learned n-gram of step labels (spec.md §3, §4.8).
package types

// SequencePattern is a page-URL-pattern-scoped n-gram of step labels with a
// derived confidence. Patterns persist across sessions.
type SequencePattern struct {
	URLPattern  string   `json:"url_pattern"` // numeric path segments wildcarded
	Labels      []string `json:"labels"`      // window of 2-4 labels
	Occurrences int      `json:"occurrences"`
	Confidence  float64  `json:"confidence"`
}

// SequencePatternsVersion is the MAJOR.MINOR export-blob version
// (spec.md §4.8 SequencePatternAnalyzer). MAJOR mismatches on load are
// rejected; MINOR differences are accepted.
type SequencePatternsVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// CurrentPatternsVersion is the version new exports are stamped with.
var CurrentPatternsVersion = SequencePatternsVersion{Major: 1, Minor: 2}

// Compatible reports whether a loaded version can be accepted by the
// current analyzer: MAJOR must match exactly.
func (v SequencePatternsVersion) Compatible(current SequencePatternsVersion) bool {
	return v.Major == current.Major
}

// SequencePatternsExport is the persisted blob handed to the repository
// port (spec.md §6 Persisted objects).
type SequencePatternsExport struct {
	Version    SequencePatternsVersion `json:"version"`
	ExportedAt string                  `json:"exported_at"`
	Patterns   []SequencePattern       `json:"patterns"`
}
