// Package actionability implements the auto-waiting gate: a polling state
// machine that holds before dispatch until a resolved element is attached,
// visible, stable, enabled, and in viewport (spec.md §4.6).
package actionability
