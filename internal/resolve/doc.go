// Package resolve implements EventFilter and TargetResolver, the gate and
// the aiming logic that run between a raw browser event and a capture-
// worthy Action (spec.md §4.2).
//
// Like internal/capture, this package never touches the live DOM directly:
// the host bridge extracts a candidate ancestor chain and event metadata;
// Filter decides whether the event is worth recording at all, and Resolver
// walks that chain to the element that should actually be captured.
package resolve
