// server.go — a chi-routed loopback HTTP server exposing GET_ANALYTICS
// (grounded on _examples/hazyhaar-chrc/horos47/core/chassis/server.go's
// chi.NewRouter + middleware.Logger/Recoverer wiring), per SPEC_FULL.md
// DOMAIN STACK "Local analytics surface".
package analytics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/types"
	"github.com/tracewright/locatorcore/internal/util"
)

// TelemetrySource is the read side of ports.Repository this server needs.
type TelemetrySource interface {
	TelemetrySince(days int) ([]types.TelemetryEvent, error)
}

// DefaultWindowDays is used when the request omits ?days.
const DefaultWindowDays = 7

// StrategyStats is one StrategyKind's aggregate over the requested window.
type StrategyStats struct {
	Kind     types.StrategyKind `json:"kind"`
	Attempts int                `json:"attempts"`
	Wins     int                `json:"wins"`
	WinRate  float64            `json:"win_rate"`
}

// Report is the GET_ANALYTICS response body (spec.md §6).
type Report struct {
	Days       int             `json:"days"`
	Attempts   int             `json:"attempts"`
	Strategies []StrategyStats `json:"strategies"`
}

// NewRouter builds the chi router serving GET /analytics and GET /health.
// /health backs internal/bridge.IsServerRunning/WaitForServer's liveness
// probe of this loopback daemon.
func NewRouter(source TelemetrySource, log *logrus.Entry) *chi.Mux {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/analytics", handleAnalytics(source, log))
	r.Get("/health", handleHealth)
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	util.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("analytics request")
			next.ServeHTTP(w, r)
		})
	}
}

func handleAnalytics(source TelemetrySource, log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := DefaultWindowDays
		if raw := r.URL.Query().Get("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				util.JSONResponse(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
				return
			}
			days = parsed
		}

		events, err := source.TelemetrySince(days)
		if err != nil {
			log.WithError(err).Warn("analytics: telemetry query failed")
			util.JSONResponse(w, http.StatusInternalServerError, map[string]string{"error": "telemetry query failed"})
			return
		}

		util.JSONResponse(w, http.StatusOK, Summarize(days, events))
	}
}

// Summarize reduces a window's TelemetryEvents into per-strategy win-rate
// stats, ordered by StrategyKind's semantic-to-coordinates category rank
// (spec.md §4.4 category ordering).
func Summarize(days int, events []types.TelemetryEvent) Report {
	counts := map[types.StrategyKind]*StrategyStats{}
	for _, e := range events {
		s, ok := counts[e.StrategyKind]
		if !ok {
			s = &StrategyStats{Kind: e.StrategyKind}
			counts[e.StrategyKind] = s
		}
		s.Attempts++
		if e.Succeeded {
			s.Wins++
		}
	}

	report := Report{Days: days, Attempts: len(events)}
	for _, kind := range orderedKinds(counts) {
		s := counts[kind]
		if s.Attempts > 0 {
			s.WinRate = float64(s.Wins) / float64(s.Attempts)
		}
		report.Strategies = append(report.Strategies, *s)
	}
	return report
}

func orderedKinds(counts map[types.StrategyKind]*StrategyStats) []types.StrategyKind {
	kinds := make([]types.StrategyKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	for i := 1; i < len(kinds); i++ {
		for j := i; j > 0 && kinds[j].Category().Rank() < kinds[j-1].Category().Rank(); j-- {
			kinds[j], kinds[j-1] = kinds[j-1], kinds[j]
		}
	}
	return kinds
}
