// Package repository implements the ports.Repository and ports.Migrator
// contracts on top of a single-file bbolt store, guarded by a flock lock
// so two host processes never open the same store concurrently
// (spec.md §6 Persisted objects, SPEC_FULL.md DOMAIN STACK).
package repository
