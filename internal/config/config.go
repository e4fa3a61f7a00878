// config.go — Config: fixed-but-inspectable thresholds loaded from an
// optional TOML file (grounded on
// _examples/five82-spindle/internal/config/config.go's Default/Load/
// resolveConfigPath shape), per SPEC_FULL.md AMBIENT STACK.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/tracewright/locatorcore/internal/evaluator"
	"github.com/tracewright/locatorcore/internal/state"
)

// Config holds the thresholds spec.md §9 leaves as fixed defaults but
// SPEC_FULL.md's AMBIENT STACK resolves to "documented, not user-tunable
// per-call" — inspectable and overridable in a locatorcore.toml, never
// exposed as a per-request RPC parameter.
type Config struct {
	// OCRConfidenceThreshold rejects vision_ocr matches below this OCR
	// engine confidence percentage (spec.md §4.3).
	OCRConfidenceThreshold float64 `toml:"ocr_confidence_threshold"`

	// BucketAutoApply/BucketApplyWithFlag/BucketReject are the
	// evidence_scoring total-score thresholds (spec.md §4.3).
	BucketAutoApply     float64 `toml:"bucket_auto_apply"`
	BucketApplyWithFlag float64 `toml:"bucket_apply_with_flag"`
	BucketReject        float64 `toml:"bucket_reject"`

	// ActionabilityPollIntervalMs/DefaultTimeoutMs tune the Actionability
	// gate (spec.md §4.6).
	ActionabilityPollIntervalMs int `toml:"actionability_poll_interval_ms"`
	ActionabilityTimeoutMs      int `toml:"actionability_timeout_ms"`

	// StepDeadlineMs bounds one DecisionEngine step (spec.md §4.5).
	StepDeadlineMs int `toml:"step_deadline_ms"`
}

// Default returns the spec's fixed thresholds.
func Default() Config {
	return Config{
		OCRConfidenceThreshold:       evaluator.DefaultOCRConfidenceThreshold,
		BucketAutoApply:              evaluator.BucketAutoApply,
		BucketApplyWithFlag:          evaluator.BucketApplyWithFlag,
		BucketReject:                 evaluator.BucketReject,
		ActionabilityPollIntervalMs:  100,
		ActionabilityTimeoutMs:       5000,
		StepDeadlineMs:               30000,
	}
}

// Load reads path (if non-empty and present) over the defaults. An empty
// path, or a named path that does not exist, is not an error — the spec's
// fixed defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfigPath returns the conventional locatorcore.toml location: a
// project-local file if one exists in the working directory (mirroring
// spindle's project-local config file convention), otherwise the file
// under the XDG-style state root resolved by internal/state.
func DefaultConfigPath() (string, error) {
	if local, err := filepath.Abs("locatorcore.toml"); err == nil {
		if _, statErr := os.Stat(local); statErr == nil {
			return local, nil
		}
	}
	return state.InRoot("locatorcore.toml")
}
