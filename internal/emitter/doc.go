// Package emitter implements ActionEmitter: the final recording-pipeline
// stage that deduplicates and finishes a captured Action — assigning its
// monotone stepNumber, attaching the generated fallback chain, and
// handing the result to the repository (spec.md §2 ActionEmitter).
package emitter
