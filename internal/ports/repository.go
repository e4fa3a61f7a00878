// repository.go — The persistence port the core depends on (spec.md §1
// "Persistence... the core uses a simple repository interface", §6
// Persisted objects, Schema migration contract).
package ports

import "github.com/tracewright/locatorcore/internal/types"

// Repository is the storage boundary for Recordings, TelemetryEvents, and
// SequencePatterns. internal/repository provides a bbolt-backed
// implementation; the core (chain/replay/evidence packages) only ever
// depends on this interface.
type Repository interface {
	SaveRecording(r types.Recording) error
	LoadRecording(id string) (types.Recording, error)
	DeleteRecording(id string) error
	ListRecordings() ([]types.Recording, error)

	AppendTelemetry(events ...types.TelemetryEvent) error
	QueryTelemetry(runID string) ([]types.TelemetryEvent, error)
	TelemetrySince(days int) ([]types.TelemetryEvent, error)

	SaveSequencePatterns(export types.SequencePatternsExport) error
	LoadSequencePatterns() (types.SequencePatternsExport, bool, error)
}

// Migrator brings any Recording payload up to the current schema version.
// migrate() is idempotent; step IDs and order are preserved; defaults for
// missing fields are filled in (spec.md §6 Schema migration contract,
// §8 testable property).
type Migrator interface {
	Migrate(payload types.Recording) types.Recording
	NeedsMigration(payload types.Recording) bool
}
