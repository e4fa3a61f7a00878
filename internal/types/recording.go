// recording.go — Recording entity and persisted-object shapes (spec.md §3, §6).
package types

// CurrentSchemaVersion is the schema version new recordings are written at.
// The migration contract (internal/repository) brings any older payload up
// to this version (spec.md §6 Schema migration contract).
const CurrentSchemaVersion = 3

// Recording is the top-level persisted object: an ordered set of Actions
// exclusively owned by the recording (spec.md §3 Ownership, §6 Persisted objects).
type Recording struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ProjectID     string   `json:"project_id,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	SchemaVersion int      `json:"schema_version"`
	Actions       []Action `json:"actions"`

	// CSVData/FieldMapping are owned by the host's CSV-substitution decorator
	// (out of scope, §1); the core only threads them through persistence.
	CSVData      []map[string]string `json:"csv_data,omitempty"`
	FieldMapping map[string]string   `json:"field_mapping,omitempty"`

	// RecordedVia and GlobalDelayMs are schema defaults filled in by migrate()
	// when absent from an older payload (spec.md §6).
	RecordedVia   string `json:"recorded_via,omitempty"`
	GlobalDelayMs int64  `json:"global_delay_ms,omitempty"`
}

// StepNumbersContiguous reports whether Actions carry step numbers 1..N
// with no gaps, in order (spec.md §8 universal invariant).
func (r Recording) StepNumbersContiguous() bool {
	for i, a := range r.Actions {
		if a.StepNumber != i+1 {
			return false
		}
	}
	return true
}
