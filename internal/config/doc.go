// Package config loads the fixed-but-inspectable thresholds named in
// spec.md §9 Open Questions (OCR confidence, evidence_scoring score
// buckets) from an optional locatorcore.toml, falling back to the spec's
// defaults when no file is present (SPEC_FULL.md AMBIENT STACK).
package config
