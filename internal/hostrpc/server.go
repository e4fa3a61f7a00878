// Package hostrpc implements the stdio transport for the "Host RPC
// (requests the core serves)" contract (spec.md §6): START_RECORDING,
// STOP_RECORDING, EXECUTE_STEP, STOP_EXECUTION, GET_ANALYTICS, plus
// RECORD_EVENT — this server's one addition to the fixed method list,
// since spec.md §6 never says how a captured browser event reaches
// RecordingSession and §4.2's EventFilter/TargetResolver need a concrete
// transport to run against. Framing is
// internal/bridge.ReadStdioMessage (line-delimited or Content-Length); each
// request/response is a ports.Envelope. The server owns no browser/CDP
// connection itself — those ports are supplied by the host and injected
// through Server.NewRecording/NewReplay, matching spec.md §9's "Singletons
// for layers, stores, trackers → make owners explicit".
package hostrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/analytics"
	"github.com/tracewright/locatorcore/internal/bridge"
	"github.com/tracewright/locatorcore/internal/capture"
	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/repository"
	"github.com/tracewright/locatorcore/internal/resolve"
	"github.com/tracewright/locatorcore/internal/session"
	"github.com/tracewright/locatorcore/internal/types"
)

// maxBodySize bounds a single Content-Length-framed request.
const maxBodySize = 64 << 20 // 64MiB, generous for a LocatorBundle+evidence payload.

// Request is one Host RPC call (spec.md §6 methods).
type Request struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response wraps ports.Envelope with the request ID it answers.
type Response struct {
	ID any `json:"id"`
	ports.Envelope
}

// Repository is the persistence + analytics read side the server needs.
type Repository interface {
	ports.Repository
	analytics.TelemetrySource
}

// Server dispatches Host RPC requests to RecordingSession/ReplaySession
// instances it owns per tab, one of each per spec.md §9.
type Server struct {
	Repo Repository
	Log  *logrus.Entry

	// NewRecording constructs a RecordingSession for a tab when
	// START_RECORDING is served; the host supplies the vision/clock ports.
	NewRecording func(tabID, name string) *session.RecordingSession

	// NewReplay constructs a ReplaySession for a tab when the first
	// EXECUTE_STEP for a run arrives.
	NewReplay func(tabID string) *session.ReplaySession

	mu         sync.Mutex
	recordings map[string]*session.RecordingSession
	replays    map[string]*session.ReplaySession
	cancels    map[string]context.CancelFunc
}

// NewServer constructs a Server. Repo must not be nil.
func NewServer(repo Repository, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		Repo:       repo,
		Log:        log,
		recordings: make(map[string]*session.RecordingSession),
		replays:    make(map[string]*session.ReplaySession),
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Serve reads Host RPC requests from r and writes line-delimited
// Responses to w until r is exhausted or ctx is cancelled. Each request is
// handled synchronously in arrival order (spec.md §5 "single-threaded
// cooperative" scheduling model — there is one loop, not a goroutine per
// request).
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		raw, err := bridge.ReadStdioMessage(reader, maxBodySize)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("hostrpc: read request: %w", err)
		}

		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			s.writeResponse(w, Response{Envelope: ports.Err(types.ErrInvalidMessage, err.Error())})
			continue
		}

		reqCtx, cancel := context.WithTimeout(ctx, bridge.RPCMethodTimeout(req.Method))
		env := s.dispatch(reqCtx, req)
		cancel()

		s.writeResponse(w, Response{ID: req.ID, Envelope: env})
	}
}

func (s *Server) writeResponse(w io.Writer, resp Response) {
	line, err := json.Marshal(resp)
	if err != nil {
		s.Log.WithError(err).Error("hostrpc: marshal response")
		return
	}
	line = append(line, '\n')
	if _, err := w.Write(line); err != nil {
		s.Log.WithError(err).Warn("hostrpc: write response")
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) ports.Envelope {
	switch req.Method {
	case "START_RECORDING":
		return s.startRecording(req.Params)
	case "STOP_RECORDING":
		return s.stopRecording(ctx, req.Params)
	case "RECORD_EVENT":
		return s.recordEvent(ctx, req.Params)
	case "EXECUTE_STEP":
		return s.executeStep(ctx, req.Params)
	case "STOP_EXECUTION":
		return s.stopExecution(req.Params)
	case "GET_ANALYTICS":
		return s.getAnalytics(req.Params)
	default:
		return ports.Err(types.ErrInvalidMessage, fmt.Sprintf("unknown method %q", req.Method))
	}
}

type startRecordingParams struct {
	TabID string `json:"tab_id"`
	Name  string `json:"name"`
}

func (s *Server) startRecording(raw json.RawMessage) ports.Envelope {
	var p startRecordingParams
	if err := json.Unmarshal(raw, &p); err != nil || p.TabID == "" {
		return ports.Err(types.ErrStepValidationFailed, "tab_id is required")
	}
	if s.NewRecording == nil {
		return ports.Err(types.ErrPermissionDenied, "recording not supported by this host")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings[p.TabID] = s.NewRecording(p.TabID, p.Name)
	s.recordings[p.TabID].Start()
	return ports.OK(map[string]string{"tab_id": p.TabID})
}

// recordEventParams carries one raw browser event plus the element info
// the host bridge extracted for it (spec.md §4.2 EventFilter/Resolver
// inputs). Kind == "open" is a navigation: Event/Element are ignored and
// Value carries the new URL.
type recordEventParams struct {
	TabID   string                 `json:"tab_id"`
	Kind    string                 `json:"kind"`
	Value   string                 `json:"value"`
	Event   resolve.RawEvent       `json:"event"`
	Element capture.RawElementInfo `json:"element"`
}

func (s *Server) recordEvent(ctx context.Context, raw json.RawMessage) ports.Envelope {
	var p recordEventParams
	if err := json.Unmarshal(raw, &p); err != nil || p.TabID == "" {
		return ports.Err(types.ErrStepValidationFailed, "tab_id is required")
	}

	s.mu.Lock()
	rec, ok := s.recordings[p.TabID]
	s.mu.Unlock()
	if !ok {
		return ports.Err(types.ErrTabNotFound, fmt.Sprintf("no active recording for tab %q", p.TabID))
	}

	kind := types.ActionKind(p.Kind)
	if kind == types.ActionOpen {
		action, emitted, err := rec.RecordOpen(ctx, p.Value)
		return recordEventEnvelope(action, emitted, err)
	}

	action, emitted, err := rec.HandleRawEvent(ctx, p.Event, p.Element, kind, p.Value)
	return recordEventEnvelope(action, emitted, err)
}

func recordEventEnvelope(action types.Action, emitted bool, err error) ports.Envelope {
	if err != nil {
		return ports.Err(types.ErrStepValidationFailed, err.Error())
	}
	return ports.OK(map[string]any{"emitted": emitted, "action": action})
}

type stopRecordingParams struct {
	TabID string `json:"tab_id"`
}

func (s *Server) stopRecording(ctx context.Context, raw json.RawMessage) ports.Envelope {
	var p stopRecordingParams
	if err := json.Unmarshal(raw, &p); err != nil || p.TabID == "" {
		return ports.Err(types.ErrStepValidationFailed, "tab_id is required")
	}

	s.mu.Lock()
	rec, ok := s.recordings[p.TabID]
	delete(s.recordings, p.TabID)
	s.mu.Unlock()
	if !ok {
		return ports.Err(types.ErrTabNotFound, fmt.Sprintf("no active recording for tab %q", p.TabID))
	}

	recording, err := rec.Stop(ctx)
	if err != nil {
		return ports.Err(types.ErrStepValidationFailed, err.Error())
	}
	return ports.OK(recording)
}

type executeStepParams struct {
	TabID  string       `json:"tab_id"`
	Action types.Action `json:"action"`
	RunID  string       `json:"run_id"`
}

func (s *Server) executeStep(ctx context.Context, raw json.RawMessage) ports.Envelope {
	var p executeStepParams
	if err := json.Unmarshal(raw, &p); err != nil || p.TabID == "" {
		return ports.Err(types.ErrStepValidationFailed, "tab_id is required")
	}
	if s.NewReplay == nil {
		return ports.Err(types.ErrPermissionDenied, "replay not supported by this host")
	}

	runID := p.RunID
	if runID == "" {
		runID = repository.NewID()
	}

	replaySession := s.replaySessionFor(p.TabID)
	stepCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancels[runID] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, runID)
		s.mu.Unlock()
		cancel()
	}()

	outcome := replaySession.RunStep(stepCtx, runID, p.Action)
	if !outcome.Succeeded {
		return ports.Err(outcome.ErrorKind, fmt.Sprintf("step %d failed after %d attempts", outcome.StepNumber, len(outcome.Attempts)))
	}
	return ports.OK(outcome)
}

func (s *Server) replaySessionFor(tabID string) *session.ReplaySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rs, ok := s.replays[tabID]; ok {
		return rs
	}
	rs := s.NewReplay(tabID)
	s.replays[tabID] = rs
	return rs
}

type stopExecutionParams struct {
	RunID string `json:"run_id"`
}

func (s *Server) stopExecution(raw json.RawMessage) ports.Envelope {
	var p stopExecutionParams
	if err := json.Unmarshal(raw, &p); err != nil || p.RunID == "" {
		return ports.Err(types.ErrStepValidationFailed, "run_id is required")
	}

	s.mu.Lock()
	cancel, ok := s.cancels[p.RunID]
	s.mu.Unlock()
	if !ok {
		return ports.Err(types.ErrExecutionTimeout, fmt.Sprintf("no in-flight run %q", p.RunID))
	}
	cancel()
	return ports.OK(map[string]string{"run_id": p.RunID, "status": "cancelled"})
}

type analyticsParams struct {
	Days int `json:"days"`
}

func (s *Server) getAnalytics(raw json.RawMessage) ports.Envelope {
	days := analytics.DefaultWindowDays
	if len(raw) > 0 {
		var p analyticsParams
		if err := json.Unmarshal(raw, &p); err == nil && p.Days > 0 {
			days = p.Days
		}
	}

	events, err := s.Repo.TelemetrySince(days)
	if err != nil {
		return ports.Err(types.ErrStepValidationFailed, err.Error())
	}
	return ports.OK(analytics.Summarize(days, events))
}
