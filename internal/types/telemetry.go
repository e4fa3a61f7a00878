// telemetry.go — TelemetryEvent: an append-only per-attempt row (spec.md §3, §7).
package types

// ErrorKind is one of the fixed wire-level error envelope kinds
// (spec.md §6 Error envelope kinds).
type ErrorKind string

const (
	ErrElementNotFound     ErrorKind = "ELEMENT_NOT_FOUND"
	ErrAllStrategiesFailed ErrorKind = "ALL_STRATEGIES_FAILED"
	ErrExecutionTimeout    ErrorKind = "EXECUTION_TIMEOUT"
	ErrStepValidationFailed ErrorKind = "STEP_VALIDATION_FAILED"
	ErrCDPNotAttached      ErrorKind = "CDP_NOT_ATTACHED"
	ErrCDPAttachFailed     ErrorKind = "CDP_ATTACH_FAILED"
	ErrCDPTimeout          ErrorKind = "CDP_TIMEOUT"
	ErrVisionInitFailed    ErrorKind = "VISION_INIT_FAILED"
	ErrVisionOCRFailed     ErrorKind = "VISION_OCR_FAILED"
	ErrVisionConfidenceLow ErrorKind = "VISION_CONFIDENCE_LOW"
	ErrTabNotFound         ErrorKind = "TAB_NOT_FOUND"
	ErrPermissionDenied    ErrorKind = "PERMISSION_DENIED"
	ErrInvalidMessage      ErrorKind = "INVALID_MESSAGE"
	ErrTimeout             ErrorKind = "timeout" // evaluator-local deadline exceeded
)

// TelemetryEvent is one append-only attempt row emitted by the
// DecisionEngine (spec.md §3, §7 Observable behavior).
type TelemetryEvent struct {
	RunID         string    `json:"run_id"`
	StepNumber    int       `json:"step_number"`
	StrategyKind  StrategyKind `json:"strategy_kind"`
	AttemptIndex  int       `json:"attempt_index"`
	Succeeded     bool      `json:"succeeded"`
	Confidence    float64   `json:"confidence"`
	DurationMs    int64     `json:"duration_ms"`
	ErrorKind     ErrorKind `json:"error_kind,omitempty"`
	TimestampUnix int64     `json:"timestamp_unix"`
}
