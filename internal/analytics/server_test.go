package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/types"
)

type fakeSource struct {
	events []types.TelemetryEvent
	err    error
}

func (f fakeSource) TelemetrySince(days int) ([]types.TelemetryEvent, error) {
	return f.events, f.err
}

func TestSummarize_ComputesWinRatePerStrategy(t *testing.T) {
	events := []types.TelemetryEvent{
		{StrategyKind: types.StrategyDOMSelector, Succeeded: true},
		{StrategyKind: types.StrategyDOMSelector, Succeeded: false},
		{StrategyKind: types.StrategyVisionOCR, Succeeded: true},
	}
	report := Summarize(7, events)
	assert.Equal(t, 3, report.Attempts)
	require.Len(t, report.Strategies, 2)
	assert.Equal(t, types.StrategyDOMSelector, report.Strategies[0].Kind, "dom_selector is more semantic than vision_ocr")
	assert.Equal(t, 0.5, report.Strategies[0].WinRate)
	assert.Equal(t, 1.0, report.Strategies[1].WinRate)
}

func TestHandleAnalytics_DefaultsWindowAndReturnsJSON(t *testing.T) {
	source := fakeSource{events: []types.TelemetryEvent{{StrategyKind: types.StrategyCDPSemantic, Succeeded: true}}}
	router := NewRouter(source, nil)

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, DefaultWindowDays, report.Days)
	assert.Equal(t, 1, report.Attempts)
}

func TestHandleAnalytics_RejectsInvalidDays(t *testing.T) {
	router := NewRouter(fakeSource{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/analytics?days=-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalytics_PropagatesRepositoryError(t *testing.T) {
	router := NewRouter(fakeSource{err: assert.AnError}, nil)

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleHealth_ReturnsOK(t *testing.T) {
	router := NewRouter(fakeSource{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
