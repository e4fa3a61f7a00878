// timeout.go — Per-request timeout tiers for the Host RPC methods the core
// serves (spec.md §6 "Host RPC (requests the core serves)").
package bridge

import "time"

// Timeout tiers for Host RPC requests.
const (
	FastTimeout  = 10 * time.Second
	SlowTimeout  = 35 * time.Second
	BlockingPoll = 65 * time.Second
)

// RPCMethodTimeout returns the per-request timeout budget for one of the
// Host RPC methods the core serves. START_RECORDING/STOP_RECORDING and
// GET_ANALYTICS are fast local calls against the repository; EXECUTE_STEP
// walks a fallback chain against a live page (including evidence_scoring's
// hard 5s ceiling and vision's OCR round-trip, spec.md §5) and gets the
// slow budget. STOP_EXECUTION is a cancellation signal and must never
// itself block on the run it is cancelling, so it always gets the fast tier.
func RPCMethodTimeout(method string) time.Duration {
	switch method {
	case "EXECUTE_STEP":
		return SlowTimeout
	case "STOP_EXECUTION", "START_RECORDING", "STOP_RECORDING", "GET_ANALYTICS":
		return FastTimeout
	default:
		return FastTimeout
	}
}
