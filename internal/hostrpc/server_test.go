package hostrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/session"
	"github.com/tracewright/locatorcore/internal/types"
)

type fakeRepo struct {
	telemetry []types.TelemetryEvent
}

func (f *fakeRepo) SaveRecording(types.Recording) error              { return nil }
func (f *fakeRepo) LoadRecording(string) (types.Recording, error)    { return types.Recording{}, nil }
func (f *fakeRepo) DeleteRecording(string) error                     { return nil }
func (f *fakeRepo) ListRecordings() ([]types.Recording, error)       { return nil, nil }
func (f *fakeRepo) AppendTelemetry(events ...types.TelemetryEvent) error {
	f.telemetry = append(f.telemetry, events...)
	return nil
}
func (f *fakeRepo) QueryTelemetry(string) ([]types.TelemetryEvent, error) { return nil, nil }
func (f *fakeRepo) TelemetrySince(days int) ([]types.TelemetryEvent, error) {
	return f.telemetry, nil
}
func (f *fakeRepo) SaveSequencePatterns(types.SequencePatternsExport) error { return nil }
func (f *fakeRepo) LoadSequencePatterns() (types.SequencePatternsExport, bool, error) {
	return types.SequencePatternsExport{}, false, nil
}

func readOneResponse(t *testing.T, out *bytes.Buffer) Response {
	t.Helper()
	line, err := out.ReadString('\n')
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	return resp
}

func TestServer_UnknownMethodReturnsInvalidMessage(t *testing.T) {
	repo := &fakeRepo{}
	s := NewServer(repo, nil)

	in := strings.NewReader(`{"id":1,"method":"NOT_A_METHOD"}` + "\n")
	var out bytes.Buffer
	err := s.Serve(context.Background(), in, &out)
	require.NoError(t, err)

	resp := readOneResponse(t, &out)
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrInvalidMessage, resp.ErrorKind)
	assert.EqualValues(t, 1, resp.ID)
}

func TestServer_StartRecordingWithoutSupportIsPermissionDenied(t *testing.T) {
	repo := &fakeRepo{}
	s := NewServer(repo, nil)

	in := strings.NewReader(`{"id":"a","method":"START_RECORDING","params":{"tab_id":"t1","name":"flow"}}` + "\n")
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	resp := readOneResponse(t, &out)
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrPermissionDenied, resp.ErrorKind)
}

func TestServer_RecordEventAppendsActionToStoppedRecording(t *testing.T) {
	repo := &fakeRepo{}
	s := NewServer(repo, nil)
	s.NewRecording = func(tabID, name string) *session.RecordingSession {
		return session.NewRecordingSession(tabID, name, nil, nil, repo, nil, nil)
	}

	in := strings.NewReader(
		`{"id":1,"method":"START_RECORDING","params":{"tab_id":"t1","name":"flow"}}` + "\n" +
			`{"id":2,"method":"RECORD_EVENT","params":{"tab_id":"t1","kind":"click","event":{"trusted":true,"kind":"click","chain":[{"tag_name":"button","id":"submit","visible":true}]},"element":{"chain":[{"tag_name":"button","id":"submit","test_id":"submit-btn","role":"button","text":"Submit"}],"rect":{"x":10,"y":10,"width":40,"height":20}}}}` + "\n" +
			`{"id":3,"method":"STOP_RECORDING","params":{"tab_id":"t1"}}` + "\n",
	)
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	readOneResponse(t, &out) // START_RECORDING

	recordResp := readOneResponse(t, &out)
	require.True(t, recordResp.OK)
	recordData, err := json.Marshal(recordResp.Data)
	require.NoError(t, err)
	assert.Contains(t, string(recordData), `"emitted":true`)

	stopResp := readOneResponse(t, &out)
	require.True(t, stopResp.OK)
	stopData, err := json.Marshal(stopResp.Data)
	require.NoError(t, err)
	assert.Contains(t, string(stopData), `"step_number":1`)
}

func TestServer_RecordEventWithoutActiveRecordingIsTabNotFound(t *testing.T) {
	s := NewServer(&fakeRepo{}, nil)

	in := strings.NewReader(`{"id":1,"method":"RECORD_EVENT","params":{"tab_id":"t1","kind":"click"}}` + "\n")
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	resp := readOneResponse(t, &out)
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrTabNotFound, resp.ErrorKind)
}

func TestServer_GetAnalyticsSummarizesTelemetry(t *testing.T) {
	repo := &fakeRepo{telemetry: []types.TelemetryEvent{
		{StrategyKind: types.StrategyCDPSemantic, Succeeded: true},
	}}
	s := NewServer(repo, nil)

	in := strings.NewReader(`{"id":2,"method":"GET_ANALYTICS","params":{"days":3}}` + "\n")
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	resp := readOneResponse(t, &out)
	require.True(t, resp.OK)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"days":3`)
}

func TestServer_StopExecutionWithoutRunIsExecutionTimeout(t *testing.T) {
	s := NewServer(&fakeRepo{}, nil)

	in := strings.NewReader(`{"id":3,"method":"STOP_EXECUTION","params":{"run_id":"missing"}}` + "\n")
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	resp := readOneResponse(t, &out)
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrExecutionTimeout, resp.ErrorKind)
}

func TestServer_MalformedJSONReturnsInvalidMessage(t *testing.T) {
	s := NewServer(&fakeRepo{}, nil)

	in := strings.NewReader("{not json}\n")
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	resp := readOneResponse(t, &out)
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrInvalidMessage, resp.ErrorKind)
}

var _ ports.Repository = (*fakeRepo)(nil)
