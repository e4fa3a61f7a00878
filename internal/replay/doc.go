// Package replay implements the DecisionEngine: the replay orchestrator
// that walks an Action's fallback chain in confidence order, gated by
// Actionability, dispatching through ActionDispatcher and emitting
// per-attempt telemetry (spec.md §4.5).
package replay
