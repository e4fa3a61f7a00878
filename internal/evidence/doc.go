// Package evidence implements the two learned-state trackers the
// evidence_scoring evaluator draws its spatial and sequence axes from
// (spec.md §4.8 MouseTrailTracker, SequencePatternAnalyzer).
//
// Only the sequence patterns persist across sessions, through the
// repository port: they are loaded at startup (best-effort, non-fatal) and
// auto-saved on a dirty-flagged debounce. MouseTrailTracker holds no
// learned state: the mouse trail itself is capture-session state owned by
// internal/capture, and the *scoring* of a trail against a candidate
// element is a pure function kept here so it can be shared between
// capture-time chain generation and replay-time evidence_scoring
// evaluation.
package evidence
