// Package capture implements the four parallel CaptureLayers that run
// during recording: DOM, Vision, Mouse, Network (spec.md §4.1).
//
// Each layer exposes Start/Stop/Snapshot and is independently optional: a
// capture exception degrades that layer's evidence field only, never the
// Action being built (spec.md §4.1 Failure semantics).
//
// MouseCapture and NetworkCapture keep bounded ring buffers
// (internal/buffers.RingBuffer) rather than unbounded history, matching
// the memory-tiered eviction discipline the rest of this codebase uses
// for telemetry and recordings.
package capture
