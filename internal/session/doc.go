// Package session makes the owners named in spec.md §9 Design Notes
// explicit: one RecordingSession per tab owns its four CaptureLayer
// instances and the ActionEmitter; one ReplaySession per tab owns the
// DecisionEngine. Process-wide state (the telemetry store, the learned
// SequencePatterns) lives above both, with explicit init/teardown.
package session
