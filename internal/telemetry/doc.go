// Package telemetry implements the TelemetryStore owner named in
// spec.md §5 Shared-resource policy: the sole serializer of Attempt
// writes/reads, plus the win/loss history lookups the evidence_scoring
// evaluator's history axis depends on (spec.md §4.3, §7 Observable
// behavior).
package telemetry
