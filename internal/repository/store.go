// store.go — bbolt-backed Repository implementation (grounded on
// _examples/evalgo-org-eve/db/bolt/bolt.go's Open/PutJSON/GetJSON/ForEach
// shape) guarded by a gofrs/flock lock on the database file (grounded on
// _examples/five82-spindle/internal/daemon/daemon.go's TryLock/Unlock
// pattern), per SPEC_FULL.md DOMAIN STACK.
package repository

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

const (
	bucketRecordings       = "recordings"
	bucketTelemetry        = "telemetry"
	bucketSequencePatterns = "sequence_patterns"

	sequencePatternsKey = "export"

	lockSuffix = ".lock"
)

// Store is a single-file bbolt-backed ports.Repository. The zero value is
// not usable; construct with Open.
type Store struct {
	db       *bolt.DB
	lock     *flock.Flock
	migrator ports.Migrator
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Migrator = SchemaMigrator{}

// Open acquires an exclusive file lock on path+".lock" and opens (creating
// if absent) the bbolt database at path, with all three buckets present.
// Open fails fast if another process already holds the lock, rather than
// blocking (spec.md §5 "Shared-resource policy": one writer owns the store).
func Open(path string) (*Store, error) {
	lock := flock.New(path + lockSuffix)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("repository: acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("repository: store at %s is locked by another process", path)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("repository: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketRecordings, bucketTelemetry, bucketSequencePatterns} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return &Store{db: db, lock: lock, migrator: SchemaMigrator{}}, nil
}

// Close releases the bbolt database and the file lock.
func (s *Store) Close() error {
	dbErr := s.db.Close()
	lockErr := s.lock.Unlock()
	if dbErr != nil {
		return dbErr
	}
	return lockErr
}

// SaveRecording upserts r under its ID, stamping SchemaVersion at the
// current version (spec.md §6 Persisted objects).
func (s *Store) SaveRecording(r types.Recording) error {
	if r.ID == "" {
		return fmt.Errorf("repository: recording ID must not be empty")
	}
	r.SchemaVersion = types.CurrentSchemaVersion
	return s.putJSON(bucketRecordings, r.ID, r)
}

// LoadRecording fetches the Recording with id, transparently migrating it
// to the current schema version if it was persisted under an older one
// (spec.md §6 Schema migration contract). The migrated copy is written
// back so subsequent loads skip the migration.
func (s *Store) LoadRecording(id string) (types.Recording, error) {
	var r types.Recording
	if err := s.getJSON(bucketRecordings, id, &r); err != nil {
		return types.Recording{}, err
	}
	if s.migrator != nil && s.migrator.NeedsMigration(r) {
		r = s.migrator.Migrate(r)
		if err := s.putJSON(bucketRecordings, id, r); err != nil {
			return types.Recording{}, fmt.Errorf("repository: write back migrated recording: %w", err)
		}
	}
	return r, nil
}

// DeleteRecording removes the Recording with id. Deleting an absent ID is
// not an error (idempotent delete).
func (s *Store) DeleteRecording(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRecordings)).Delete([]byte(id))
	})
}

// ListRecordings returns every stored Recording, migrating any still on an
// older schema version as it reads them, ordered by ID.
func (s *Store) ListRecordings() ([]types.Recording, error) {
	var out []types.Recording
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRecordings))
		return b.ForEach(func(k, v []byte) error {
			var r types.Recording
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("repository: unmarshal recording %s: %w", k, err)
			}
			if s.migrator != nil && s.migrator.NeedsMigration(r) {
				r = s.migrator.Migrate(r)
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AppendTelemetry writes each event under a monotone bucket sequence key,
// preserving insertion order for QueryTelemetry/TelemetrySince scans
// (spec.md §7 Observable behavior: telemetry is append-only).
func (s *Store) AppendTelemetry(events ...types.TelemetryEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTelemetry))
		for _, event := range events {
			seq, err := b.NextSequence()
			if err != nil {
				return fmt.Errorf("repository: next telemetry sequence: %w", err)
			}
			data, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("repository: marshal telemetry event: %w", err)
			}
			if err := b.Put(sequenceKey(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// QueryTelemetry returns every TelemetryEvent logged for runID, in the
// order they were appended.
func (s *Store) QueryTelemetry(runID string) ([]types.TelemetryEvent, error) {
	var out []types.TelemetryEvent
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTelemetry))
		return b.ForEach(func(k, v []byte) error {
			var event types.TelemetryEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return fmt.Errorf("repository: unmarshal telemetry event: %w", err)
			}
			if event.RunID == runID {
				out = append(out, event)
			}
			return nil
		})
	})
	return out, err
}

// TelemetrySince returns every TelemetryEvent logged within the last days
// days, for GET_ANALYTICS (spec.md §6).
func (s *Store) TelemetrySince(days int) ([]types.TelemetryEvent, error) {
	cutoff := time.Now().AddDate(0, 0, -days).Unix()
	var out []types.TelemetryEvent
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTelemetry))
		return b.ForEach(func(k, v []byte) error {
			var event types.TelemetryEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return fmt.Errorf("repository: unmarshal telemetry event: %w", err)
			}
			if event.TimestampUnix >= cutoff {
				out = append(out, event)
			}
			return nil
		})
	})
	return out, err
}

// SaveSequencePatterns overwrites the single persisted SequencePatterns
// export blob (spec.md §4.8 SequencePatternAnalyzer).
func (s *Store) SaveSequencePatterns(export types.SequencePatternsExport) error {
	return s.putJSON(bucketSequencePatterns, sequencePatternsKey, export)
}

// LoadSequencePatterns returns the persisted export blob, or ok=false if
// nothing has been saved yet.
func (s *Store) LoadSequencePatterns() (types.SequencePatternsExport, bool, error) {
	var export types.SequencePatternsExport
	err := s.getJSON(bucketSequencePatterns, sequencePatternsKey, &export)
	if err == errKeyNotFound {
		return types.SequencePatternsExport{}, false, nil
	}
	if err != nil {
		return types.SequencePatternsExport{}, false, err
	}
	return export, true, nil
}

func (s *Store) putJSON(bucket, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("repository: marshal %s/%s: %w", bucket, key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

func (s *Store) getJSON(bucket, key string, value any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if data == nil {
			return errKeyNotFound
		}
		return json.Unmarshal(data, value)
	})
}

var errKeyNotFound = fmt.Errorf("repository: key not found")

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// NewID generates a correlation token for recordings and runs
// (spec.md §3; SPEC_FULL.md DOMAIN STACK "IDs").
func NewID() string {
	return uuid.NewString()
}
