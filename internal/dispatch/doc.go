// Package dispatch implements ActionDispatcher: translating a resolved
// Action into the concrete primitive input synthesis the host performs on
// the live page (spec.md §4.7).
package dispatch
