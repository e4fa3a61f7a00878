// store.go — TelemetryStore: the sole owner of telemetry reads/writes
// (spec.md §5 "the telemetry store... owned by exactly one component...
// commands serialized by that owner; concurrent callers are queued
// FIFO"). A mutex serializes callers the same way internal/emitter
// serializes stepNumber assignment.
package telemetry

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// Store serializes every read/write against its backing ports.Repository.
type Store struct {
	mu   sync.Mutex
	repo ports.Repository
	log  *logrus.Entry
}

// NewStore constructs a Store backed by repo.
func NewStore(repo ports.Repository, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{repo: repo, log: log}
}

// Append writes events in the order the DecisionEngine produced them
// (spec.md §7 Observable behavior "every Attempt is logged").
func (s *Store) Append(events ...types.TelemetryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.AppendTelemetry(events...)
}

// AppendTelemetry satisfies replay.TelemetrySink.
func (s *Store) AppendTelemetry(events ...types.TelemetryEvent) error {
	return s.Append(events...)
}

// Query returns every Attempt logged for runID.
func (s *Store) Query(runID string) ([]types.TelemetryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.QueryTelemetry(runID)
}

// Since returns every Attempt logged within the last days days, for
// GET_ANALYTICS.
func (s *Store) Since(days int) ([]types.TelemetryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.TelemetrySince(days)
}

// Badge summarizes one step's outcome into the UI marker spec.md §7
// describes: "a badge or marker on each Action in the UI surface reflects
// which strategy succeeded (semantic / vision / coordinates)".
func Badge(winningKind types.StrategyKind, succeeded bool) string {
	if !succeeded {
		return "failed"
	}
	switch winningKind.Category() {
	case types.CategorySemantic:
		return "semantic"
	case types.CategoryVision:
		return "vision"
	case types.CategoryCoordinates:
		return "coordinates"
	case types.CategoryDOM:
		return "dom"
	case types.CategoryEvidence:
		return "evidence"
	default:
		return "unknown"
	}
}
