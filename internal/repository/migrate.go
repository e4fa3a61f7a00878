// migrate.go — SchemaMigrator: idempotent upgrade of a Recording payload to
// types.CurrentSchemaVersion (spec.md §6 Schema migration contract, §8
// "migrate(migrate(payload)) == migrate(payload)").
package repository

import "github.com/tracewright/locatorcore/internal/types"

// defaultRecordedVia is filled in for payloads that predate the
// recordedVia field.
const defaultRecordedVia = "dom"

// SchemaMigrator fills in defaults introduced by later schema versions
// without touching step IDs or their order (spec.md §6).
type SchemaMigrator struct{}

// NeedsMigration reports whether payload is behind types.CurrentSchemaVersion
// or is missing a required field migrate() would fill in (spec.md §8
// "recordingNeedsMigration(payload) == true iff at least one missing
// required field or stale schemaVersion < current").
func (SchemaMigrator) NeedsMigration(payload types.Recording) bool {
	return payload.SchemaVersion < types.CurrentSchemaVersion || payload.RecordedVia == ""
}

// Migrate brings payload up to types.CurrentSchemaVersion. Step order and
// every Action's StepNumber are preserved exactly; only missing top-level
// fields are defaulted. Calling Migrate on an already-current payload is a
// no-op copy, so Migrate is idempotent.
func (m SchemaMigrator) Migrate(payload types.Recording) types.Recording {
	if payload.RecordedVia == "" {
		payload.RecordedVia = defaultRecordedVia
	}
	// GlobalDelayMs's zero value is already the correct default (no
	// injected delay), so there is nothing to fill in beyond Go's
	// zero-initialization.
	payload.SchemaVersion = types.CurrentSchemaVersion
	return payload
}
