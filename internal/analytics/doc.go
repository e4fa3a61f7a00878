// Package analytics serves GET_ANALYTICS over a loopback HTTP server
// (spec.md §6), computing strategy win-rate and attempt histograms from
// the telemetry store (SPEC_FULL.md DOMAIN STACK).
package analytics
